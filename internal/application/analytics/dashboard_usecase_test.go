package analytics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio-api/internal/application/analytics"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Double en mémoire.
// ──────────────────────────────────────────────────────────────────────────────

type memAnalytics struct {
	totaux     repository.TotauxResult
	mensuelles []repository.StatsPeriodeResult
	annuelles  []repository.StatsPeriodeResult
	clients    []repository.TopClientResult

	annee  int
	limite int
}

func (r *memAnalytics) Totaux(userID string, year int) (repository.TotauxResult, error) {
	r.annee = year
	return r.totaux, nil
}

func (r *memAnalytics) StatsMensuelles(userID string, year int) ([]repository.StatsPeriodeResult, error) {
	r.annee = year
	return r.mensuelles, nil
}

func (r *memAnalytics) StatsAnnuelles(userID string, year int) ([]repository.StatsPeriodeResult, error) {
	r.annee = year
	return r.annuelles, nil
}

func (r *memAnalytics) TopClients(userID string, year, limit int) ([]repository.TopClientResult, error) {
	r.annee = year
	r.limite = limit
	return r.clients, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests.
// ──────────────────────────────────────────────────────────────────────────────

func TestTotaux(t *testing.T) {
	repo := &memAnalytics{totaux: repository.TotauxResult{
		TotalBrut:   dec("1500.00"),
		TotalNet:    dec("1131.00"),
		TotalTTC:    dec("1500.00"),
		TotalURSSAF: dec("369.00"),
	}}
	uc := analytics.NewDashboardUseCase(repo)

	totaux, err := uc.Totaux(context.Background(), "u1", 2026)
	require.NoError(t, err)

	assert.Equal(t, 2026, repo.annee)
	assert.True(t, totaux.TotalBrut.Equal(dec("1500.00")))
	assert.True(t, totaux.TotalURSSAF.Equal(dec("369.00")))
}

func TestTotaux_SansAnnee(t *testing.T) {
	repo := &memAnalytics{}
	uc := analytics.NewDashboardUseCase(repo)

	_, err := uc.Totaux(context.Background(), "u1", 0)
	require.NoError(t, err, "0 signifie toutes années confondues")
	assert.Equal(t, 0, repo.annee)
}

func TestTotaux_AnneeHorsLimites(t *testing.T) {
	uc := analytics.NewDashboardUseCase(&memAnalytics{})

	_, err := uc.Totaux(context.Background(), "u1", 1867)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStatsMensuelles(t *testing.T) {
	repo := &memAnalytics{mensuelles: []repository.StatsPeriodeResult{
		{Year: 2026, Month: 1, TotalFactures: 2, TotalBrut: dec("300")},
		{Year: 2026, Month: 2, TotalFactures: 1, TotalBrut: dec("150")},
	}}
	uc := analytics.NewDashboardUseCase(repo)

	stats, err := uc.StatsMensuelles(context.Background(), "u1", 2026)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Month)
	assert.Equal(t, 2, stats[0].TotalFactures)
	assert.True(t, stats[1].TotalBrut.Equal(dec("150")))
}

func TestStatsAnnuelles_ListeVide(t *testing.T) {
	uc := analytics.NewDashboardUseCase(&memAnalytics{})

	stats, err := uc.StatsAnnuelles(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.NotNil(t, stats, "une liste vide plutôt que null en JSON")
	assert.Empty(t, stats)
}

func TestTopClients_LimiteDuWidget(t *testing.T) {
	repo := &memAnalytics{clients: []repository.TopClientResult{
		{ClientID: "c1", ClientName: "Studio Lumière", TotalBrut: dec("900"), Count: 6},
		{ClientID: "c2", ClientName: "Atelier Nord", TotalBrut: dec("450"), Count: 3},
	}}
	uc := analytics.NewDashboardUseCase(repo)

	clients, err := uc.TopClients(context.Background(), "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, 5, repo.limite)
	require.Len(t, clients, 2)
	assert.Equal(t, "Studio Lumière", clients[0].ClientName)
	assert.Equal(t, 6, clients[0].Count)
}
