package dto

import "github.com/shopspring/decimal"

// DashboardTotauxDTO : cumuls encaissés, toutes périodes ou une année.
type DashboardTotauxDTO struct {
	TotalBrut   decimal.Decimal `json:"totalBrut"`
	TotalNet    decimal.Decimal `json:"totalNet"`
	TotalTTC    decimal.Decimal `json:"totalTTC"`
	TotalURSSAF decimal.Decimal `json:"totalURSSAF"`
}

// DashboardPeriodeDTO : agrégat d'un mois ou d'une année de facturation.
// Month est omis dans la vue annuelle.
type DashboardPeriodeDTO struct {
	Year          int             `json:"year"`
	Month         int             `json:"month,omitempty"`
	TotalFactures int             `json:"totalFactures"`
	TotalBrut     decimal.Decimal `json:"totalBrut"`
	TotalNet      decimal.Decimal `json:"totalNet"`
	TotalTTC      decimal.Decimal `json:"totalTTC"`
	TotalURSSAF   decimal.Decimal `json:"totalURSSAF"`
}

// TopClientDTO : chiffre d'affaires encaissé par client.
type TopClientDTO struct {
	ClientID   string          `json:"clientId"`
	ClientName string          `json:"clientName"`
	TotalBrut  decimal.Decimal `json:"totalBrut"`
	Count      int             `json:"count"`
}
