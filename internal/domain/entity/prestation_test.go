package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// CalculerTotal : un calcul par type de facturation, arrondi à 2 décimales.
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculerTotal_Horaire(t *testing.T) {
	p := &entity.Prestation{
		BillingType: entity.BillingHourly,
		Hours:       dec("2.5"),
		HourlyRate:  dec("60"),
	}
	p.CalculerTotal()
	assert.True(t, p.Total.Equal(dec("150")), "2.5 h × 60 € = 150 €, obtenu %s", p.Total)
	assert.Equal(t, 150, p.Duration, "durée canonique en minutes")
	assert.Equal(t, entity.UnitMinutes, p.DurationUnit)
}

func TestCalculerTotal_HoraireArrondi(t *testing.T) {
	p := &entity.Prestation{
		BillingType: entity.BillingHourly,
		Hours:       dec("1.333"),
		HourlyRate:  dec("45.50"),
	}
	p.CalculerTotal()
	assert.True(t, p.Total.Equal(dec("60.65")), "1.333 × 45.50 = 60.6515 arrondi à 60.65, obtenu %s", p.Total)
}

func TestCalculerTotal_Forfait(t *testing.T) {
	p := &entity.Prestation{
		BillingType: entity.BillingFixed,
		FixedPrice:  dec("500"),
		Quantity:    3,
	}
	p.CalculerTotal()
	assert.True(t, p.Total.Equal(dec("1500")))
}

func TestCalculerTotal_ForfaitQuantiteZero(t *testing.T) {
	// Quantité absente ou nulle : normalisée à 1, jamais un total à zéro.
	p := &entity.Prestation{
		BillingType: entity.BillingFixed,
		FixedPrice:  dec("500"),
	}
	p.CalculerTotal()
	assert.True(t, p.Total.Equal(dec("500")))
	assert.Equal(t, 1, p.Quantity)
}

func TestCalculerTotal_Journalier(t *testing.T) {
	// 2160 minutes = 1,5 jour × 400 € = 600 €
	p := &entity.Prestation{
		BillingType: entity.BillingDaily,
		FixedPrice:  dec("400"),
		Duration:    2160,
	}
	p.CalculerTotal()
	assert.True(t, p.Total.Equal(dec("600")), "obtenu %s", p.Total)
	assert.Equal(t, entity.UnitDays, p.DurationUnit)
}

func TestHeuresEquivalentes(t *testing.T) {
	p := &entity.Prestation{Duration: 90}
	assert.True(t, p.HeuresEquivalentes().Equal(dec("1.5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Verrouillage et clonage.
// ──────────────────────────────────────────────────────────────────────────────

func TestEstVerrouillee(t *testing.T) {
	assert.False(t, (&entity.Prestation{}).EstVerrouillee())
	assert.True(t, (&entity.Prestation{InvoicePaid: true}).EstVerrouillee())
	assert.True(t, (&entity.Prestation{InvoiceLocked: true}).EstVerrouillee())
	assert.True(t, (&entity.Prestation{InvoiceIsSentToClient: true}).EstVerrouillee())
}

func TestCloner_RemetLeRattachementAZero(t *testing.T) {
	p := &entity.Prestation{
		ID:                    "p1",
		Description:           "développement",
		InvoiceID:             "f1",
		InvoiceStatus:         "paid",
		InvoicePaid:           true,
		InvoiceLocked:         true,
		InvoiceIsSentToClient: true,
		IsReplaced:            true,
	}
	clone := p.Cloner()

	assert.Empty(t, clone.ID, "l'ID du clone est attribué par l'appelant")
	assert.Empty(t, clone.InvoiceID)
	assert.Empty(t, clone.InvoiceStatus)
	assert.False(t, clone.InvoicePaid)
	assert.False(t, clone.InvoiceLocked)
	assert.False(t, clone.InvoiceIsSentToClient)
	assert.False(t, clone.IsReplaced)
	assert.Equal(t, "p1", clone.OriginalPrestationID, "le clone pointe vers son original")
	assert.Equal(t, "développement", clone.Description)

	// L'original n'est pas touché par le clonage.
	assert.Equal(t, "f1", p.InvoiceID)
	assert.True(t, p.IsReplaced)
}
