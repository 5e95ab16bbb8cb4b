package dto

import (
	"github.com/shopspring/decimal"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

// CreateFactureRequest : génération de la facture mensuelle d'un client.
type CreateFactureRequest struct {
	ClientID string `json:"clientId"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

// RectifyRequest : rectification légale d'une facture.
type RectifyRequest struct {
	MotifLegal  string           `json:"motifLegal"`
	MotifDetail string           `json:"motifDetail,omitempty"`
	Prestations []PrestationSpec `json:"prestations"`
}

// PaiementRequest : enregistrement d'un paiement.
type PaiementRequest struct {
	MethodePaiement string `json:"methodePaiement"`
	Commentaire     string `json:"commentaire,omitempty"`
}

// AnnulationRequest : annulation d'une facture non payée.
type AnnulationRequest struct {
	Motif       string `json:"motif"`
	Commentaire string `json:"commentaire,omitempty"`
}

// AvoirRequest : émission d'un avoir sur une facture payée.
type AvoirRequest struct {
	Motif           string          `json:"motif"`
	Montant         decimal.Decimal `json:"montant"`
	Remboursement   bool            `json:"remboursement"`
	MethodePaiement string          `json:"methodePaiement,omitempty"`
}

// ChaineResponse : lignée complète d'une facture rectifiée.
type ChaineResponse struct {
	Ancetres    []*entity.Facture `json:"ancetres"`
	Descendants []*entity.Facture `json:"descendants"`
}

// LastNumberResponse : dernier numéro de facture émis.
type LastNumberResponse struct {
	LastInvoiceNumber int `json:"lastInvoiceNumber"`
}
