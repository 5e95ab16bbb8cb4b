package repository

import "github.com/facturio/facturio-api/internal/domain/entity"

// ClientRepository définit le port de persistance des clients.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	GetByUserAndEmail(userID, email string) (*entity.Client, error)
	ListByUser(userID string) ([]*entity.Client, error)
	Update(client *entity.Client) error
	Delete(id string) error
}
