// Package analytics contient les consultations du tableau de bord de revenus.
package analytics

import (
	"context"
	"fmt"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

const topClientsLimit = 5 // nombre de clients dans le widget du tableau de bord

// DashboardUseCase agrège le chiffre d'affaires encaissé : cumuls, ventilation
// mensuelle et annuelle, principaux clients. Seules les factures payées
// comptent — une facture émise mais impayée n'est pas du revenu.
//
// Ne touche jamais à la table des factures directement ; tout passe par
// AnalyticsRepository (lecture seule).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewDashboardUseCase construit le cas d'usage.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo}
}

// Totaux retourne les cumuls encaissés, limités à une année si year > 0.
func (uc *DashboardUseCase) Totaux(ctx context.Context, userID string, year int) (*dto.DashboardTotauxDTO, error) {
	if err := validerAnnee(year); err != nil {
		return nil, err
	}
	t, err := uc.analyticsRepo.Totaux(userID, year)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardTotauxDTO{
		TotalBrut:   t.TotalBrut,
		TotalNet:    t.TotalNet,
		TotalTTC:    t.TotalTTC,
		TotalURSSAF: t.TotalURSSAF,
	}, nil
}

// StatsMensuelles retourne la ventilation mois par mois, du plus ancien au
// plus récent.
func (uc *DashboardUseCase) StatsMensuelles(ctx context.Context, userID string, year int) ([]dto.DashboardPeriodeDTO, error) {
	if err := validerAnnee(year); err != nil {
		return nil, err
	}
	stats, err := uc.analyticsRepo.StatsMensuelles(userID, year)
	if err != nil {
		return nil, err
	}
	return versPeriodes(stats), nil
}

// StatsAnnuelles retourne la ventilation année par année.
func (uc *DashboardUseCase) StatsAnnuelles(ctx context.Context, userID string, year int) ([]dto.DashboardPeriodeDTO, error) {
	if err := validerAnnee(year); err != nil {
		return nil, err
	}
	stats, err := uc.analyticsRepo.StatsAnnuelles(userID, year)
	if err != nil {
		return nil, err
	}
	return versPeriodes(stats), nil
}

// TopClients retourne les principaux clients par chiffre d'affaires encaissé.
func (uc *DashboardUseCase) TopClients(ctx context.Context, userID string, year int) ([]dto.TopClientDTO, error) {
	if err := validerAnnee(year); err != nil {
		return nil, err
	}
	clients, err := uc.analyticsRepo.TopClients(userID, year, topClientsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopClientDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, dto.TopClientDTO{
			ClientID:   c.ClientID,
			ClientName: c.ClientName,
			TotalBrut:  c.TotalBrut,
			Count:      c.Count,
		})
	}
	return out, nil
}

// validerAnnee accepte 0 (toutes années) ou une année plausible.
func validerAnnee(year int) error {
	if year != 0 && (year < 2000 || year > 2200) {
		return fmt.Errorf("%w: année %d hors limites", domain.ErrValidation, year)
	}
	return nil
}

func versPeriodes(stats []repository.StatsPeriodeResult) []dto.DashboardPeriodeDTO {
	out := make([]dto.DashboardPeriodeDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, dto.DashboardPeriodeDTO{
			Year:          s.Year,
			Month:         s.Month,
			TotalFactures: s.TotalFactures,
			TotalBrut:     s.TotalBrut,
			TotalNet:      s.TotalNet,
			TotalTTC:      s.TotalTTC,
			TotalURSSAF:   s.TotalURSSAF,
		})
	}
	return out
}
