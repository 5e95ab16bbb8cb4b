package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrestationRequest : création ou modification d'une prestation.
// Total n'est jamais accepté en entrée : il est recalculé côté serveur.
type PrestationRequest struct {
	ClientID     string          `json:"clientId"`
	Description  string          `json:"description"`
	BillingType  string          `json:"billingType"` // hourly | fixed | daily
	Hours        decimal.Decimal `json:"hours"`
	Minutes      decimal.Decimal `json:"minutes"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	FixedPrice   decimal.Decimal `json:"fixedPrice"`
	Quantity     int             `json:"quantity"`
	Duration     int             `json:"duration"`
	DurationUnit string          `json:"durationUnit"`
	Date         *time.Time      `json:"date,omitempty"`
}

// PrestationSpec : ligne fournie lors d'une rectification. Un ID vide ou
// préfixé "temp-" désigne une prestation nouvelle ; sinon la prestation
// existante est clonée, les champs non nil remplaçant ceux de l'original.
type PrestationSpec struct {
	ID           string           `json:"id,omitempty"`
	Description  *string          `json:"description,omitempty"`
	BillingType  *string          `json:"billingType,omitempty"`
	Hours        *decimal.Decimal `json:"hours,omitempty"`
	HourlyRate   *decimal.Decimal `json:"hourlyRate,omitempty"`
	FixedPrice   *decimal.Decimal `json:"fixedPrice,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Duration     *int             `json:"duration,omitempty"`
	DurationUnit *string          `json:"durationUnit,omitempty"`
	Date         *time.Time       `json:"date,omitempty"`
}
