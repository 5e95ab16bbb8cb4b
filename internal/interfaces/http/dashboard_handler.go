package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturio-api/internal/application/analytics"
)

// DashboardHandler gère les endpoints du tableau de bord de revenus.
// Toutes les routes acceptent un paramètre ?year= facultatif ; sans lui,
// l'agrégat couvre toutes les années.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

// NewDashboardHandler construit le handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Totals GET /api/dashboard/totals
func (h *DashboardHandler) Totals(c *fiber.Ctx) error {
	totaux, err := h.uc.Totaux(c.Context(), GetUserID(c), c.QueryInt("year", 0))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(totaux)
}

// Monthly GET /api/dashboard/monthly
func (h *DashboardHandler) Monthly(c *fiber.Ctx) error {
	stats, err := h.uc.StatsMensuelles(c.Context(), GetUserID(c), c.QueryInt("year", 0))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(stats)
}

// Annual GET /api/dashboard/annual
func (h *DashboardHandler) Annual(c *fiber.Ctx) error {
	stats, err := h.uc.StatsAnnuelles(c.Context(), GetUserID(c), c.QueryInt("year", 0))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(stats)
}

// TopClients GET /api/dashboard/top-clients
func (h *DashboardHandler) TopClients(c *fiber.Ctx) error {
	clients, err := h.uc.TopClients(c.Context(), GetUserID(c), c.QueryInt("year", 0))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(clients)
}
