package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturio-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultations en lecture seule du tableau de bord.
// Tous les agrégats portent exclusivement sur les factures payées ; la
// période de facturation (colonnes year/month) sert de base temporelle.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construit l'adaptateur.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// Totaux retourne les cumuls encaissés de l'utilisateur, toutes années
// confondues ou limités à une année. COALESCE renvoie zéro en l'absence de
// facture payée.
func (r *AnalyticsRepo) Totaux(userID string, year int) (repository.TotauxResult, error) {
	const query = `
		SELECT
		    COALESCE(SUM(montant_ht),  0) AS total_brut,
		    COALESCE(SUM(montant_net), 0) AS total_net,
		    COALESCE(SUM(montant_ttc), 0) AS total_ttc,
		    COALESCE(SUM(taxe_urssaf), 0) AS total_urssaf
		FROM factures
		WHERE user_id = $1
		  AND status = 'paid'
		  AND ($2 = 0 OR year = $2)`

	var t repository.TotauxResult
	err := r.q.QueryRow(context.Background(), query, userID, year).
		Scan(&t.TotalBrut, &t.TotalNet, &t.TotalTTC, &t.TotalURSSAF)
	if err != nil {
		return repository.TotauxResult{}, fmt.Errorf("analytics totaux: %w", err)
	}
	return t, nil
}

// StatsMensuelles agrège les factures payées par période de facturation,
// du mois le plus ancien au plus récent.
func (r *AnalyticsRepo) StatsMensuelles(userID string, year int) ([]repository.StatsPeriodeResult, error) {
	const query = `
		SELECT
		    year,
		    month,
		    COUNT(*)         AS total_factures,
		    SUM(montant_ht)  AS total_brut,
		    SUM(montant_net) AS total_net,
		    SUM(montant_ttc) AS total_ttc,
		    SUM(taxe_urssaf) AS total_urssaf
		FROM factures
		WHERE user_id = $1
		  AND status = 'paid'
		  AND ($2 = 0 OR year = $2)
		GROUP BY year, month
		ORDER BY year, month`

	rows, err := r.q.Query(context.Background(), query, userID, year)
	if err != nil {
		return nil, fmt.Errorf("analytics stats mensuelles: %w", err)
	}
	defer rows.Close()

	var stats []repository.StatsPeriodeResult
	for rows.Next() {
		var s repository.StatsPeriodeResult
		if err := rows.Scan(
			&s.Year, &s.Month, &s.TotalFactures,
			&s.TotalBrut, &s.TotalNet, &s.TotalTTC, &s.TotalURSSAF,
		); err != nil {
			return nil, fmt.Errorf("analytics stats mensuelles scan: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// StatsAnnuelles agrège les factures payées par année.
func (r *AnalyticsRepo) StatsAnnuelles(userID string, year int) ([]repository.StatsPeriodeResult, error) {
	const query = `
		SELECT
		    year,
		    COUNT(*)         AS total_factures,
		    SUM(montant_ht)  AS total_brut,
		    SUM(montant_net) AS total_net,
		    SUM(montant_ttc) AS total_ttc,
		    SUM(taxe_urssaf) AS total_urssaf
		FROM factures
		WHERE user_id = $1
		  AND status = 'paid'
		  AND ($2 = 0 OR year = $2)
		GROUP BY year
		ORDER BY year`

	rows, err := r.q.Query(context.Background(), query, userID, year)
	if err != nil {
		return nil, fmt.Errorf("analytics stats annuelles: %w", err)
	}
	defer rows.Close()

	var stats []repository.StatsPeriodeResult
	for rows.Next() {
		var s repository.StatsPeriodeResult
		if err := rows.Scan(
			&s.Year, &s.TotalFactures,
			&s.TotalBrut, &s.TotalNet, &s.TotalTTC, &s.TotalURSSAF,
		); err != nil {
			return nil, fmt.Errorf("analytics stats annuelles scan: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// TopClients retourne les `limit` clients au plus fort chiffre d'affaires
// encaissé sur la période.
func (r *AnalyticsRepo) TopClients(userID string, year, limit int) ([]repository.TopClientResult, error) {
	const query = `
		SELECT
		    c.id                AS client_id,
		    c.name              AS client_name,
		    SUM(f.montant_ht)   AS total_brut,
		    COUNT(*)            AS count
		FROM factures f
		JOIN clients c ON c.id = f.client_id
		WHERE f.user_id = $1
		  AND f.status = 'paid'
		  AND ($2 = 0 OR f.year = $2)
		GROUP BY c.id, c.name
		ORDER BY total_brut DESC
		LIMIT $3`

	rows, err := r.q.Query(context.Background(), query, userID, year, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics top clients: %w", err)
	}
	defer rows.Close()

	var clients []repository.TopClientResult
	for rows.Next() {
		var c repository.TopClientResult
		if err := rows.Scan(&c.ClientID, &c.ClientName, &c.TotalBrut, &c.Count); err != nil {
			return nil, fmt.Errorf("analytics top clients scan: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
