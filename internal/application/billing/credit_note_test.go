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

// facturePayee crée et règle une facture de 150 € HT.
func facturePayee(t *testing.T, e *env) *entity.Facture {
	t.Helper()
	f := facturePourRectification(t, e)
	paye, err := e.uc.MarquerPayee(context.Background(), testUserID, f.ID, dto.PaiementRequest{MethodePaiement: "virement"})
	require.NoError(t, err)
	return paye
}

func TestCreerAvoir(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)

	avec, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{
		Motif:   "remise commerciale",
		Montant: dec("40"),
	})
	require.NoError(t, err)

	avoir := avec.Avoir
	require.NotNil(t, avoir)
	assert.Equal(t, "AV-1", avoir.Numero, "préfixe par défaut + numéro de la facture")
	assert.True(t, avoir.Montant.Equal(dec("40")))
	assert.False(t, avoir.Remboursement)
	assert.Nil(t, avoir.DateRemboursement, "à valoir : pas de remboursement daté")
	assert.NotEmpty(t, avoir.PDFPath)

	// La facture reste payée : l'avoir ne rouvre pas le cycle de paiement.
	assert.Equal(t, entity.StatutPayee, avec.Status)
}

func TestCreerAvoir_AvecRemboursement(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)

	avec, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{
		Motif:           "prestation non conforme",
		Montant:         dec("150"),
		Remboursement:   true,
		MethodePaiement: "virement",
	})
	require.NoError(t, err)

	assert.True(t, avec.Avoir.Remboursement)
	assert.Equal(t, "virement", avec.Avoir.MethodePaiement)
	assert.NotNil(t, avec.Avoir.DateRemboursement)
}

func TestCreerAvoir_NonPayeeRefusee(t *testing.T) {
	e := newEnv()
	f := facturePourRectification(t, e)

	_, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{
		Motif:   "remise",
		Montant: dec("40"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "un avoir ne s'émet que sur une facture payée")
}

func TestCreerAvoir_UnSeulParFacture(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)
	_, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{Motif: "remise", Montant: dec("40")})
	require.NoError(t, err)

	_, err = e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{Motif: "encore", Montant: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "le second avoir est un état illégal, pas un doublon")
}

func TestCreerAvoir_MontantPlafonneAuHT(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)

	_, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{
		Motif:   "remise",
		Montant: dec("150.01"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreerAvoir_MontantPositifRequis(t *testing.T) {
	e := newEnv()
	_, err := e.uc.CreerAvoir(context.Background(), testUserID, "f1", dto.AvoirRequest{
		Motif:   "remise",
		Montant: dec("0"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreerAvoir_PrefixeConfigurable(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)
	e.infos.items[testUserID].PrefixeAvoir = "AVOIR-2026-"

	avec, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{
		Motif:   "remise",
		Montant: dec("40"),
	})
	require.NoError(t, err)
	assert.Equal(t, "AVOIR-2026-1", avec.Avoir.Numero)
}

func TestAvoirPDF_SansAvoir(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)

	_, err := e.uc.AvoirPDF(context.Background(), testUserID, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAvoirPDF(t *testing.T) {
	e := newEnv()
	f := facturePayee(t, e)
	_, err := e.uc.CreerAvoir(context.Background(), testUserID, f.ID, dto.AvoirRequest{Motif: "remise", Montant: dec("40")})
	require.NoError(t, err)

	data, err := e.uc.AvoirPDF(context.Background(), testUserID, f.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
