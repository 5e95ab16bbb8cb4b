package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// CalculerTotaux : fonction pure, tous les arrondis sont posés ici.
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculerTotaux_TauxParDefaut(t *testing.T) {
	prestations := []*entity.Prestation{
		{Total: dec("100"), Duration: 120},
		{Total: dec("50"), Duration: 60},
	}
	info := &entity.BusinessInfo{} // taux URSSAF zéro -> 0.246 par défaut

	tot := billing.CalculerTotaux(prestations, info)

	assert.True(t, tot.MontantHT.Equal(dec("150")), "HT obtenu %s", tot.MontantHT)
	assert.True(t, tot.TaxeURSSAF.Equal(dec("36.90")), "150 × 0.246 = 36.90, obtenu %s", tot.TaxeURSSAF)
	assert.True(t, tot.MontantNet.Equal(dec("113.10")), "net obtenu %s", tot.MontantNet)
	assert.True(t, tot.MontantTVA.Equal(dec("0")), "TVA non applicable par défaut")
	assert.True(t, tot.MontantTTC.Equal(dec("150")), "TTC = HT sans TVA")
	assert.True(t, tot.NombreHeures.Equal(dec("3")), "heures obtenues %s", tot.NombreHeures)
}

func TestCalculerTotaux_AvecTVA(t *testing.T) {
	prestations := []*entity.Prestation{{Total: dec("1000")}}
	info := &entity.BusinessInfo{
		TaxeURSSAF: dec("0.22"),
		TauxTVA:    dec("0.20"),
	}

	tot := billing.CalculerTotaux(prestations, info)

	assert.True(t, tot.TaxeURSSAF.Equal(dec("220")))
	assert.True(t, tot.MontantNet.Equal(dec("780")))
	assert.True(t, tot.MontantTVA.Equal(dec("200")))
	assert.True(t, tot.MontantTTC.Equal(dec("1200")))
}

func TestCalculerTotaux_ArrondisDeuxDecimales(t *testing.T) {
	prestations := []*entity.Prestation{{Total: dec("33.33")}}
	info := &entity.BusinessInfo{}

	tot := billing.CalculerTotaux(prestations, info)

	// 33.33 × 0.246 = 8.19918 -> 8.20
	assert.True(t, tot.TaxeURSSAF.Equal(dec("8.20")), "obtenu %s", tot.TaxeURSSAF)
	assert.True(t, tot.MontantNet.Equal(dec("25.13")), "obtenu %s", tot.MontantNet)
}

func TestCalculerTotaux_SansPrestations(t *testing.T) {
	tot := billing.CalculerTotaux(nil, &entity.BusinessInfo{})
	assert.True(t, tot.MontantHT.IsZero())
	assert.True(t, tot.MontantTTC.IsZero())
}

func TestAppliquerTotaux(t *testing.T) {
	f := &entity.Facture{}
	billing.AppliquerTotaux(f, billing.Totaux{
		MontantHT:  dec("150"),
		TaxeURSSAF: dec("36.90"),
		MontantNet: dec("113.10"),
		MontantTTC: dec("150"),
	})
	assert.True(t, f.MontantHT.Equal(dec("150")))
	assert.True(t, f.MontantNet.Equal(dec("113.10")))
}
