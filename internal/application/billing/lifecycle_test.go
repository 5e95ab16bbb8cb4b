package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Paiement.
// ──────────────────────────────────────────────────────────────────────────────

func TestMarquerPayee(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)

	paye, err := e.uc.MarquerPayee(context.Background(), testUserID, f.ID, dto.PaiementRequest{
		MethodePaiement: "virement",
		Commentaire:     "reçu le 3",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatutPayee, paye.Status)
	assert.NotNil(t, paye.DatePaiement)
	assert.Equal(t, "virement", paye.MethodePaiement)

	// Le journal des paiements enregistre le montant HT (régime micro-BNC).
	require.Len(t, paye.HistoriquePaiements, 1)
	assert.True(t, paye.HistoriquePaiements[0].Montant.Equal(dec("150")))

	// Miroir propagé sur les prestations.
	assert.True(t, e.prestations.items["p1"].InvoicePaid)
	assert.Equal(t, string(entity.StatutPayee), e.prestations.items["p1"].InvoiceStatus)
}

func TestMarquerPayee_DejaPayee(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)
	_, err := e.uc.MarquerPayee(context.Background(), testUserID, f.ID, dto.PaiementRequest{MethodePaiement: "virement"})
	require.NoError(t, err)

	_, err = e.uc.MarquerPayee(context.Background(), testUserID, f.ID, dto.PaiementRequest{MethodePaiement: "cheque"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMarquerPayee_Introuvable(t *testing.T) {
	e := newEnv()
	_, err := e.uc.MarquerPayee(context.Background(), testUserID, "inconnue", dto.PaiementRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Envoi.
// ──────────────────────────────────────────────────────────────────────────────

func TestMarquerEnvoyee_PromeutLeBrouillon(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)
	require.Equal(t, entity.StatutBrouillon, f.Status)

	envoyee, err := e.uc.MarquerEnvoyee(context.Background(), testUserID, f.ID)
	require.NoError(t, err)

	assert.True(t, envoyee.IsSentToClient)
	assert.NotNil(t, envoyee.DateSent)
	assert.Equal(t, entity.StatutImpayee, envoyee.Status, "un brouillon envoyé devient impayé")
	assert.True(t, e.prestations.items["p1"].InvoiceIsSentToClient)
}

func TestMarquerEnvoyee_DejaEnvoyee(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)
	_, err := e.uc.MarquerEnvoyee(context.Background(), testUserID, f.ID)
	require.NoError(t, err)

	_, err = e.uc.MarquerEnvoyee(context.Background(), testUserID, f.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Annulation.
// ──────────────────────────────────────────────────────────────────────────────

func TestAnnuler(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)

	annulee, err := e.uc.Annuler(context.Background(), testUserID, f.ID, dto.AnnulationRequest{
		Motif: "commande abandonnée",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatutAnnulee, annulee.Status)
	assert.Equal(t, entity.LegalAnnulee, annulee.Statut)
	assert.True(t, annulee.Locked, "ANNULEE implique Locked")
	require.NotNil(t, annulee.Annulation)
	assert.Equal(t, "commande abandonnée", annulee.Annulation.Motif)
	assert.Equal(t, testUserID, annulee.Annulation.UserID)
	assert.True(t, e.prestations.items["p1"].InvoiceLocked)
}

func TestAnnuler_SansMotif(t *testing.T) {
	e := newEnv()
	_, err := e.uc.Annuler(context.Background(), testUserID, "f1", dto.AnnulationRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAnnuler_PayeeRefusee(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)
	_, err := e.uc.MarquerPayee(context.Background(), testUserID, f.ID, dto.PaiementRequest{MethodePaiement: "virement"})
	require.NoError(t, err)

	_, err = e.uc.Annuler(context.Background(), testUserID, f.ID, dto.AnnulationRequest{Motif: "erreur"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestAnnuler_RectificativeActiveEnAvalBloque(t *testing.T) {
	e := newEnv()
	a := facturePourRectification(t, e)
	_, err := e.uc.RectifierFacture(context.Background(), testUserID, a.ID, dto.RectifyRequest{
		MotifLegal:  entity.MotifErreurMontant,
		Prestations: []dto.PrestationSpec{{ID: "p1", HourlyRate: decPtr("120")}, {ID: "p2"}},
	})
	require.NoError(t, err)

	// A est verrouillée (rectifiée) : la garde Locked bloque déjà.
	_, err = e.uc.Annuler(context.Background(), testUserID, a.ID, dto.AnnulationRequest{Motif: "erreur"})
	assert.ErrorIs(t, err, domain.ErrLocked)
}

func TestAnnuler_MilieuDeChaineBloque(t *testing.T) {
	e := newEnv()
	a := facturePourRectification(t, e)
	b, err := e.uc.RectifierFacture(context.Background(), testUserID, a.ID, dto.RectifyRequest{
		MotifLegal:  entity.MotifErreurMontant,
		Prestations: []dto.PrestationSpec{{ID: "p1", HourlyRate: decPtr("120")}, {ID: "p2"}},
	})
	require.NoError(t, err)

	lignes, err := e.prestations.ListByInvoice(b.ID)
	require.NoError(t, err)
	var specs []dto.PrestationSpec
	for _, p := range lignes {
		specs = append(specs, dto.PrestationSpec{ID: p.ID})
	}
	specs[0].HourlyRate = decPtr("130")
	_, err = e.uc.RectifierFacture(context.Background(), testUserID, b.ID, dto.RectifyRequest{
		MotifLegal:  entity.MotifErreurMontant,
		Prestations: specs,
	})
	require.NoError(t, err)

	// B a une rectificative active en aval, donc B est verrouillée.
	_, err = e.uc.Annuler(context.Background(), testUserID, b.ID, dto.AnnulationRequest{Motif: "erreur"})
	assert.ErrorIs(t, err, domain.ErrLocked)
}

func TestAnnuler_RectificativeRendSaValiditeALOrigine(t *testing.T) {
	e := newEnv()
	a := facturePourRectification(t, e)
	b, err := e.uc.RectifierFacture(context.Background(), testUserID, a.ID, dto.RectifyRequest{
		MotifLegal:  entity.MotifErreurMontant,
		Prestations: []dto.PrestationSpec{{ID: "p1", HourlyRate: decPtr("120")}, {ID: "p2"}},
	})
	require.NoError(t, err)
	require.Equal(t, entity.LegalRectifiee, e.factures.items[a.ID].Statut)

	_, err = e.uc.Annuler(context.Background(), testUserID, b.ID, dto.AnnulationRequest{Motif: "rectification erronée"})
	require.NoError(t, err)

	origine := e.factures.items[a.ID]
	assert.Equal(t, entity.LegalValide, origine.Statut, "plus aucune rectificative active")
	assert.False(t, origine.Locked)
}

// ──────────────────────────────────────────────────────────────────────────────
// Duplication.
// ──────────────────────────────────────────────────────────────────────────────

func TestDupliquer(t *testing.T) {
	e := newEnv()
	source := facturePourRectification(t, e)

	copie, err := e.uc.Dupliquer(context.Background(), testUserID, source.ID)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, copie.ID)
	assert.Equal(t, source.InvoiceNumber+1, copie.InvoiceNumber)
	assert.Equal(t, entity.StatutBrouillon, copie.Status)
	assert.True(t, copie.MontantHT.Equal(source.MontantHT))
	assert.Equal(t, source.Year, copie.Year, "la copie garde la période de la source")
	assert.Equal(t, source.Month, copie.Month)
	assert.Len(t, copie.PrestationIDs, 2)

	// Les clones sont détachés de tout historique de rectification.
	for _, id := range copie.PrestationIDs {
		clone := e.prestations.items[id]
		assert.Empty(t, clone.OriginalPrestationID)
		assert.Equal(t, copie.ID, clone.InvoiceID)
	}

	// Les prestations d'origine restent rattachées à la source.
	assert.Equal(t, source.ID, e.prestations.items["p1"].InvoiceID)
}
