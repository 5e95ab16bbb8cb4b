package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

// ClientUseCase gère le carnet de clients d'un utilisateur.
type ClientUseCase struct {
	clientRepo repository.ClientRepository
}

func NewClientUseCase(clientRepo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{clientRepo: clientRepo}
}

// CreerClient enregistre un client. L'email est unique par utilisateur.
func (uc *ClientUseCase) CreerClient(ctx context.Context, userID string, in dto.ClientRequest) (*entity.Client, error) {
	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: nom et email requis", domain.ErrValidation)
	}
	existant, err := uc.clientRepo.GetByUserAndEmail(userID, in.Email)
	if err != nil {
		return nil, err
	}
	if existant != nil {
		return nil, fmt.Errorf("%w: un client utilise déjà cet email", domain.ErrEmailAlreadyUsed)
	}

	now := time.Now()
	client := &entity.Client{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       in.Name,
		Email:      in.Email,
		Street:     in.Street,
		PostalCode: in.PostalCode,
		City:       in.City,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.clientRepo.Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient retourne un client de l'utilisateur.
func (uc *ClientUseCase) GetClient(ctx context.Context, userID, id string) (*entity.Client, error) {
	client, err := uc.clientRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil || client.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

// ListClients liste les clients de l'utilisateur.
func (uc *ClientUseCase) ListClients(ctx context.Context, userID string) ([]*entity.Client, error) {
	return uc.clientRepo.ListByUser(userID)
}

// ModifierClient met à jour un client.
func (uc *ClientUseCase) ModifierClient(ctx context.Context, userID, id string, in dto.ClientRequest) (*entity.Client, error) {
	client, err := uc.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Email != "" && in.Email != client.Email {
		existant, err := uc.clientRepo.GetByUserAndEmail(userID, in.Email)
		if err != nil {
			return nil, err
		}
		if existant != nil {
			return nil, fmt.Errorf("%w: un client utilise déjà cet email", domain.ErrEmailAlreadyUsed)
		}
		client.Email = in.Email
	}
	if in.Name != "" {
		client.Name = in.Name
	}
	client.Street = in.Street
	client.PostalCode = in.PostalCode
	client.City = in.City
	client.UpdatedAt = time.Now()

	if err := uc.clientRepo.Update(client); err != nil {
		return nil, err
	}
	return client, nil
}

// SupprimerClient supprime un client de l'utilisateur.
func (uc *ClientUseCase) SupprimerClient(ctx context.Context, userID, id string) error {
	if _, err := uc.GetClient(ctx, userID, id); err != nil {
		return err
	}
	return uc.clientRepo.Delete(id)
}
