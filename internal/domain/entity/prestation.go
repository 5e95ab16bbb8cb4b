package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Types de facturation d'une prestation.
const (
	BillingHourly = "hourly" // heures × taux horaire
	BillingFixed  = "fixed"  // forfait × quantité
	BillingDaily  = "daily"  // journées (durée en minutes / 1440) × forfait
)

// Unités de durée.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
)

const minutesParJour = 1440

// Prestation représente une unité de travail facturable.
// Total est toujours recalculé depuis les champs du type de facturation,
// jamais accepté tel quel en entrée.
type Prestation struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	ClientID    string          `json:"clientId"`
	Description string          `json:"description"`
	BillingType string          `json:"billingType"`

	// Facturation horaire
	Hours      decimal.Decimal `json:"hours"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`

	// Facturation forfaitaire et journalière
	FixedPrice decimal.Decimal `json:"fixedPrice"`
	Quantity   int             `json:"quantity"`

	// Durée en minutes (canonique), avec l'unité d'origine pour l'affichage
	Duration     int    `json:"duration"`
	DurationUnit string `json:"durationUnit"`

	Total decimal.Decimal `json:"total"`
	Date  time.Time       `json:"date"`

	// Rattachement à une facture + miroir de son état (filtrage rapide)
	InvoiceID             string `json:"invoiceId,omitempty"`
	InvoiceStatus         string `json:"invoiceStatus,omitempty"`
	InvoiceIsSentToClient bool   `json:"invoiceIsSentToClient"`
	InvoiceLocked         bool   `json:"invoiceLocked"`
	InvoicePaid           bool   `json:"invoicePaid"`

	// Suivi de rectification : l'original n'est jamais muté ni supprimé,
	// il est marqué remplacé et pointe vers son clone.
	IsReplaced             bool   `json:"isReplaced"`
	ReplacedByPrestationID string `json:"replacedByPrestationId,omitempty"`
	OriginalPrestationID   string `json:"originalPrestationId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CalculerTotal recalcule Total et canonicalise Duration selon le type de
// facturation. À appeler à chaque création ou modification.
func (p *Prestation) CalculerTotal() {
	switch p.BillingType {
	case BillingHourly:
		p.Total = p.Hours.Mul(p.HourlyRate).Round(2)
		p.Duration = int(p.Hours.Mul(decimal.NewFromInt(60)).IntPart())
		p.DurationUnit = UnitMinutes
	case BillingFixed:
		q := p.Quantity
		if q < 1 {
			q = 1
			p.Quantity = 1
		}
		p.Total = p.FixedPrice.Mul(decimal.NewFromInt(int64(q))).Round(2)
	case BillingDaily:
		// Duration représente des journées exprimées en minutes (1 jour = 1440)
		jours := decimal.NewFromInt(int64(p.Duration)).Div(decimal.NewFromInt(minutesParJour))
		p.Total = jours.Mul(p.FixedPrice).Round(2)
		p.DurationUnit = UnitDays
	}
}

// HeuresEquivalentes convertit la durée en heures, toujours minutes/60.
func (p *Prestation) HeuresEquivalentes() decimal.Decimal {
	return decimal.NewFromInt(int64(p.Duration)).Div(decimal.NewFromInt(60))
}

// EstVerrouillee indique si la prestation est figée : rattachée à une
// facture payée, verrouillée ou déjà envoyée au client.
func (p *Prestation) EstVerrouillee() bool {
	return p.InvoicePaid || p.InvoiceLocked || p.InvoiceIsSentToClient
}

// Cloner retourne une copie indépendante destinée à une rectification ou à
// une duplication : nouvel ID à attribuer par l'appelant, rattachement et
// miroir remis à zéro, lien vers l'original conservé.
func (p *Prestation) Cloner() *Prestation {
	clone := *p
	clone.ID = ""
	clone.InvoiceID = ""
	clone.InvoiceStatus = ""
	clone.InvoiceIsSentToClient = false
	clone.InvoiceLocked = false
	clone.InvoicePaid = false
	clone.IsReplaced = false
	clone.ReplacedByPrestationID = ""
	clone.OriginalPrestationID = p.ID
	return &clone
}
