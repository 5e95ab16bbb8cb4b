package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/application/prestation"
)

// PrestationHandler gère les requêtes HTTP des prestations (protégé).
type PrestationHandler struct {
	uc *prestation.UseCase
}

// NewPrestationHandler construit le handler.
func NewPrestationHandler(uc *prestation.UseCase) *PrestationHandler {
	return &PrestationHandler{uc: uc}
}

// Create POST /api/prestations
func (h *PrestationHandler) Create(c *fiber.Ctx) error {
	var in dto.PrestationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	p, err := h.uc.CreerPrestation(c.Context(), GetUserID(c), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// List GET /api/prestations?year=2026&month=3
func (h *PrestationHandler) List(c *fiber.Ctx) error {
	year, _ := strconv.Atoi(c.Query("year", "0"))
	month, _ := strconv.Atoi(c.Query("month", "0"))
	prestations, err := h.uc.ListPrestations(c.Context(), GetUserID(c), year, month)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(prestations)
}

// GetByID GET /api/prestations/:id
func (h *PrestationHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetPrestation(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(p)
}

// Update PUT /api/prestations/:id
func (h *PrestationHandler) Update(c *fiber.Ctx) error {
	var in dto.PrestationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	p, err := h.uc.ModifierPrestation(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(p)
}

// Delete DELETE /api/prestations/:id
func (h *PrestationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SupprimerPrestation(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return erreurHTTP(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
