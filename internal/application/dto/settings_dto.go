package dto

import (
	"github.com/shopspring/decimal"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

// InvoiceSettingsResponse : paramètres de numérotation exposés par l'API.
type InvoiceSettingsResponse struct {
	InvoiceTitle         string `json:"invoiceTitle"`
	InvoiceNumberStart   int    `json:"invoiceNumberStart"`
	CurrentInvoiceNumber int    `json:"currentInvoiceNumber"`
}

// BusinessInfoRequest : mise à jour des informations de l'entreprise.
// Les pointeurs distinguent "absent" de "zéro" pour les champs numériques
// et les sous-blocs optionnels.
type BusinessInfoRequest struct {
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	City        string `json:"city,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Siret       string `json:"siret,omitempty"`
	CompanyType string `json:"companyType,omitempty"`

	TaxeURSSAF   *decimal.Decimal `json:"taxeURSSAF,omitempty"`
	TauxTVA      *decimal.Decimal `json:"tauxTVA,omitempty"`
	PrefixeAvoir *string          `json:"prefixeAvoir,omitempty"`
	MentionTVA   *string          `json:"mentionTVA,omitempty"`

	InvoiceStatus      *entity.FeatureInvoiceStatus `json:"invoiceStatus,omitempty"`
	AutomaticReminders *entity.FeatureReminders     `json:"automaticReminders,omitempty"`
	Display            *entity.DisplayOptions       `json:"displayOptions,omitempty"`
}

// InvoiceSettingsRequest : mise à jour des paramètres de numérotation.
// Les pointeurs distinguent "absent" de "zéro".
type InvoiceSettingsRequest struct {
	InvoiceTitle       *string `json:"invoiceTitle,omitempty"`
	InvoiceNumberStart *int    `json:"invoiceNumberStart,omitempty"`
}
