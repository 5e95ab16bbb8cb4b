package repository

import (
	"time"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

// FactureFilter : critères de listing des factures.
type FactureFilter struct {
	Year     int
	Month    int
	ClientID string
	Status   entity.StatutPaiement
}

// FactureRepository définit le port de persistance des factures.
type FactureRepository interface {
	Create(facture *entity.Facture) error
	GetByID(id string) (*entity.Facture, error)
	GetByClientAndPeriod(userID, clientID string, year, month int) (*entity.Facture, error)
	Update(facture *entity.Facture) error
	Delete(id string) error
	List(userID string, filter FactureFilter) ([]*entity.Facture, error)
	// LastInvoiceNumber retourne le plus grand numéro émis pour l'utilisateur,
	// 0 si aucune facture.
	LastInvoiceNumber(userID string) (int, error)
	// ListByChainMember retourne les factures rectificatives dont la chaîne
	// d'ancêtres contient l'ID donné, du plus ancien numéro au plus récent.
	ListByChainMember(userID, factureID string) ([]*entity.Facture, error)
	// ListRectificationsOf retourne les rectificatives directes d'une origine.
	ListRectificationsOf(userID, originalID string) ([]*entity.Facture, error)
	// ListUnpaidDue retourne les factures impayées ou en retard dont
	// l'échéance est passée, tous utilisateurs confondus (job de relance).
	ListUnpaidDue(now time.Time) ([]*entity.Facture, error)
}
