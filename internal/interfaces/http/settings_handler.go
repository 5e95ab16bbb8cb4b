package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/application/usecase"
)

// SettingsHandler gère les requêtes HTTP des paramètres (protégé).
type SettingsHandler struct {
	uc *usecase.SettingsUseCase
}

// NewSettingsHandler construit le handler.
func NewSettingsHandler(uc *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// GetBusinessInfo GET /api/business-info
func (h *SettingsHandler) GetBusinessInfo(c *fiber.Ctx) error {
	info, err := h.uc.GetBusinessInfo(c.Context(), GetUserID(c))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(info)
}

// UpdateBusinessInfo PUT /api/business-info
func (h *SettingsHandler) UpdateBusinessInfo(c *fiber.Ctx) error {
	var in dto.BusinessInfoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	info, err := h.uc.ModifierBusinessInfo(c.Context(), GetUserID(c), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(info)
}

// GetInvoiceSettings GET /api/invoice-settings
func (h *SettingsHandler) GetInvoiceSettings(c *fiber.Ctx) error {
	settings, err := h.uc.GetInvoiceSettings(c.Context(), GetUserID(c))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(settings)
}

// UpdateInvoiceSettings PUT /api/invoice-settings
func (h *SettingsHandler) UpdateInvoiceSettings(c *fiber.Ctx) error {
	var in dto.InvoiceSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	settings, err := h.uc.ModifierInvoiceSettings(c.Context(), GetUserID(c), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(settings)
}
