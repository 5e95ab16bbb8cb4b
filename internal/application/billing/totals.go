package billing

import (
	"github.com/shopspring/decimal"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

// Totaux : résultat du calcul monétaire d'une facture.
type Totaux struct {
	MontantHT    decimal.Decimal
	TaxeURSSAF   decimal.Decimal
	MontantNet   decimal.Decimal
	MontantTVA   decimal.Decimal
	MontantTTC   decimal.Decimal
	NombreHeures decimal.Decimal
}

// CalculerTotaux est une fonction pure : elle recalcule tous les totaux
// depuis l'ensemble courant des prestations et la configuration en vigueur.
//
//	montantHT  = Σ total des prestations (déjà calculés par type)
//	taxeURSSAF = round2(montantHT × taux URSSAF)   (0.246 par défaut)
//	montantNet = round2(montantHT − taxeURSSAF)
//	montantTVA = round2(montantHT × taux TVA)      (0 si TVA non applicable)
//	montantTTC = round2(montantHT + montantTVA)
//
// Les arrondis (2 décimales) sont posés ici et nulle part en aval. Tout
// changement de l'ensemble des prestations d'une facture doit être suivi
// d'un nouvel appel : un total en cache périmé est un bug de cohérence.
func CalculerTotaux(prestations []*entity.Prestation, info *entity.BusinessInfo) Totaux {
	var montantHT decimal.Decimal
	var heures decimal.Decimal
	for _, p := range prestations {
		montantHT = montantHT.Add(p.Total)
		// Conversion canonique minutes → heures, quel que soit le type
		heures = heures.Add(p.HeuresEquivalentes())
	}
	montantHT = montantHT.Round(2)

	taxe := montantHT.Mul(info.TauxURSSAFEffectif()).Round(2)
	net := montantHT.Sub(taxe).Round(2)
	tva := montantHT.Mul(info.TauxTVAEffectif()).Round(2)
	ttc := montantHT.Add(tva).Round(2)

	return Totaux{
		MontantHT:    montantHT,
		TaxeURSSAF:   taxe,
		MontantNet:   net,
		MontantTVA:   tva,
		MontantTTC:   ttc,
		NombreHeures: heures.Round(2),
	}
}

// AppliquerTotaux écrase les totaux en cache de la facture.
func AppliquerTotaux(f *entity.Facture, t Totaux) {
	f.MontantHT = t.MontantHT
	f.TaxeURSSAF = t.TaxeURSSAF
	f.MontantNet = t.MontantNet
	f.MontantTVA = t.MontantTVA
	f.MontantTTC = t.MontantTTC
	f.NombreHeures = t.NombreHeures
}
