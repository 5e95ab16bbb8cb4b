package repository

import "github.com/facturio/facturio-api/internal/domain/entity"

// BusinessInfoRepository définit le port de persistance des paramètres de
// facturation (un document par utilisateur).
type BusinessInfoRepository interface {
	GetByUser(userID string) (*entity.BusinessInfo, error)
	Save(info *entity.BusinessInfo) error
	// NextInvoiceNumber réserve atomiquement le prochain numéro de facture
	// de l'utilisateur : max(valeur de départ, compteur courant + 1). Doit
	// être appelé dans la transaction qui crée la facture.
	NextInvoiceNumber(userID string) (int, error)
}
