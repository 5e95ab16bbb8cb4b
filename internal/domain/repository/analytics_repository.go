package repository

import "github.com/shopspring/decimal"

// TotauxResult : agrégat global des factures payées d'un utilisateur.
type TotauxResult struct {
	TotalBrut   decimal.Decimal
	TotalNet    decimal.Decimal
	TotalTTC    decimal.Decimal
	TotalURSSAF decimal.Decimal
}

// StatsPeriodeResult : agrégat des factures payées d'une période de
// facturation. Month vaut 0 pour l'agrégat annuel.
type StatsPeriodeResult struct {
	Year          int
	Month         int
	TotalFactures int
	TotalBrut     decimal.Decimal
	TotalNet      decimal.Decimal
	TotalTTC      decimal.Decimal
	TotalURSSAF   decimal.Decimal
}

// TopClientResult : chiffre d'affaires encaissé par client.
type TopClientResult struct {
	ClientID   string
	ClientName string
	TotalBrut  decimal.Decimal
	Count      int
}

// AnalyticsRepository définit les consultations en lecture seule du tableau
// de bord. Seules les factures payées entrent dans les agrégats ; year = 0
// signifie toutes années confondues.
type AnalyticsRepository interface {
	Totaux(userID string, year int) (TotauxResult, error)
	StatsMensuelles(userID string, year int) ([]StatsPeriodeResult, error)
	StatsAnnuelles(userID string, year int) ([]StatsPeriodeResult, error)
	TopClients(userID string, year, limit int) ([]TopClientResult, error)
}
