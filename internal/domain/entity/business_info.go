package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Taux par défaut quand la configuration ne les précise pas.
var (
	TauxURSSAFDefaut = decimal.RequireFromString("0.246")
)

// Délai de paiement par défaut en jours.
const DelaiPaiementDefaut = 30

// Préfixe d'avoir par défaut.
const PrefixeAvoirDefaut = "AV-"

// FeatureInvoiceStatus : suivi de statut et délai de paiement.
type FeatureInvoiceStatus struct {
	Enabled      bool `json:"enabled"`
	PaymentDelay int  `json:"paymentDelay"` // jours
}

// FeatureReminders : relances automatiques, seuils en jours après échéance.
type FeatureReminders struct {
	Enabled        bool `json:"enabled"`
	FirstReminder  int  `json:"firstReminder"`
	SecondReminder int  `json:"secondReminder"`
	ThirdReminder  int  `json:"thirdReminder"`
}

// DisplayOptions : options d'affichage sur les documents.
type DisplayOptions struct {
	ShowDueDateOnInvoice bool `json:"showDueDateOnInvoice"`
	ShowDueDateInHistory bool `json:"showDueDateInHistory"`
	ShowTvaComment       bool `json:"showTvaComment"`
}

// BusinessInfo : paramètres de facturation d'un utilisateur (un document
// par utilisateur). Entrée en lecture seule des calculateurs ; modifié
// uniquement par les écrans de paramètres — et par le séquenceur de
// numérotation pour CurrentInvoiceNumber.
type BusinessInfo struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Siret       string `json:"siret"`
	CompanyType string `json:"companyType"`

	InvoiceTitle string `json:"invoiceTitle"`

	// Taux de cotisation URSSAF (0.246 si zéro) et taux de TVA
	// (zéro = TVA non applicable, art. 293B du CGI).
	TaxeURSSAF decimal.Decimal `json:"taxeURSSAF"`
	TauxTVA    decimal.Decimal `json:"tauxTVA"`

	// Numérotation : valeur de départ configurable et compteur courant,
	// incrémenté atomiquement dans la transaction de création.
	InvoiceNumberStart   int `json:"invoiceNumberStart"`
	CurrentInvoiceNumber int `json:"currentInvoiceNumber"`

	PrefixeAvoir string `json:"prefixeAvoir"`

	InvoiceStatus      FeatureInvoiceStatus `json:"invoiceStatus"`
	AutomaticReminders FeatureReminders     `json:"automaticReminders"`
	Display            DisplayOptions       `json:"displayOptions"`

	// Mentions légales affichées sur les documents
	MentionTVA string `json:"mentionTVA"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TauxURSSAFEffectif retourne le taux configuré ou 0.246 par défaut.
func (b *BusinessInfo) TauxURSSAFEffectif() decimal.Decimal {
	if b == nil || b.TaxeURSSAF.IsZero() {
		return TauxURSSAFDefaut
	}
	return b.TaxeURSSAF
}

// TauxTVAEffectif retourne le taux de TVA, zéro quand non applicable.
func (b *BusinessInfo) TauxTVAEffectif() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return b.TauxTVA
}

// DelaiPaiement retourne le délai de paiement en jours, 30 par défaut.
func (b *BusinessInfo) DelaiPaiement() int {
	if b == nil || b.InvoiceStatus.PaymentDelay <= 0 {
		return DelaiPaiementDefaut
	}
	return b.InvoiceStatus.PaymentDelay
}

// PrefixeAvoirEffectif retourne le préfixe d'avoir, "AV-" par défaut.
func (b *BusinessInfo) PrefixeAvoirEffectif() string {
	if b == nil || b.PrefixeAvoir == "" {
		return PrefixeAvoirDefaut
	}
	return b.PrefixeAvoir
}
