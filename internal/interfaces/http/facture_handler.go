package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

// FactureHandler gère les requêtes HTTP des factures (protégé).
type FactureHandler struct {
	uc *billing.FactureUseCase
}

// NewFactureHandler construit le handler.
func NewFactureHandler(uc *billing.FactureUseCase) *FactureHandler {
	return &FactureHandler{uc: uc}
}

// Create génère la facture mensuelle d'un client.
// POST /api/factures
func (h *FactureHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFactureRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	facture, err := h.uc.CreerFacture(c.Context(), GetUserID(c), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(facture)
}

// Preview calcule la facture du mois sans persister et retourne le PDF.
// POST /api/factures/preview
func (h *FactureHandler) Preview(c *fiber.Ctx) error {
	var in dto.CreateFactureRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	data, err := h.uc.PreviewFacture(c.Context(), GetUserID(c), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}

// List GET /api/factures?year=&month=&clientId=&status=
func (h *FactureHandler) List(c *fiber.Ctx) error {
	year, _ := strconv.Atoi(c.Query("year", "0"))
	month, _ := strconv.Atoi(c.Query("month", "0"))
	filter := repository.FactureFilter{
		Year:     year,
		Month:    month,
		ClientID: c.Query("clientId"),
		Status:   entity.StatutPaiement(c.Query("status")),
	}
	factures, err := h.uc.ListFactures(c.Context(), GetUserID(c), filter)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(factures)
}

// LastNumber GET /api/factures/last-number
func (h *FactureHandler) LastNumber(c *fiber.Ctx) error {
	n, err := h.uc.DernierNumero(c.Context(), GetUserID(c))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(dto.LastNumberResponse{LastInvoiceNumber: n})
}

// GetByID GET /api/factures/:id
func (h *FactureHandler) GetByID(c *fiber.Ctx) error {
	facture, err := h.uc.GetFacture(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(facture)
}

// Delete supprime un brouillon jamais envoyé.
// DELETE /api/factures/:id
func (h *FactureHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SupprimerFacture(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return erreurHTTP(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF télécharge le PDF de la facture.
// GET /api/factures/:id/pdf
func (h *FactureHandler) PDF(c *fiber.Ctx) error {
	facture, err := h.uc.GetFacture(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	data, err := h.uc.FacturePDF(c.Context(), GetUserID(c), facture.ID)
	if err != nil {
		return erreurHTTP(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="facture_%d.pdf"`, facture.InvoiceNumber))
	return c.Send(data)
}

// Paiement enregistre le paiement de la facture.
// POST /api/factures/:id/paiement
func (h *FactureHandler) Paiement(c *fiber.Ctx) error {
	var in dto.PaiementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	facture, err := h.uc.MarquerPayee(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(facture)
}

// Rectify émet une facture rectificative et verrouille l'origine.
// POST /api/factures/:id/rectify
func (h *FactureHandler) Rectify(c *fiber.Ctx) error {
	var in dto.RectifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	facture, err := h.uc.RectifierFacture(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(facture)
}

// Avoir émet une note de crédit sur une facture payée.
// POST /api/factures/:id/avoir
func (h *FactureHandler) Avoir(c *fiber.Ctx) error {
	var in dto.AvoirRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	facture, err := h.uc.CreerAvoir(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(facture)
}

// AvoirPDF télécharge le PDF de l'avoir.
// GET /api/factures/:id/avoir/pdf
func (h *FactureHandler) AvoirPDF(c *fiber.Ctx) error {
	data, err := h.uc.AvoirPDF(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}

// Annulation annule une facture non payée.
// POST /api/factures/:id/annulation
func (h *FactureHandler) Annulation(c *fiber.Ctx) error {
	var in dto.AnnulationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	facture, err := h.uc.Annuler(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(facture)
}

// Envoi marque la facture comme envoyée au client.
// POST /api/factures/:id/envoi
func (h *FactureHandler) Envoi(c *fiber.Ctx) error {
	facture, err := h.uc.MarquerEnvoyee(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(facture)
}

// Duplicate crée un nouveau brouillon à partir d'une facture existante.
// POST /api/factures/:id/duplicate
func (h *FactureHandler) Duplicate(c *fiber.Ctx) error {
	facture, err := h.uc.Dupliquer(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(facture)
}

// Chaine retourne la lignée de rectification complète.
// GET /api/factures/:id/chaine
func (h *FactureHandler) Chaine(c *fiber.Ctx) error {
	chaine, err := h.uc.ChaineRectification(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(chaine)
}

// Prestations retourne les prestations rattachées à la facture.
// GET /api/factures/:id/prestations
func (h *FactureHandler) Prestations(c *fiber.Ctx) error {
	prestations, err := h.uc.PrestationsDeFacture(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return erreurHTTP(c, err)
	}
	return c.JSON(prestations)
}
