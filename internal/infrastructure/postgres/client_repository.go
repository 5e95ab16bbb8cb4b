package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implémentation de ClientRepository (utilisable avec pool ou tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un client.
func (r *ClientRepo) Create(client *entity.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	query := `
		INSERT INTO clients (id, user_id, name, email, street, postal_code, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		client.ID, client.UserID, client.Name, client.Email,
		nullIfEmpty(client.Street), nullIfEmpty(client.PostalCode), nullIfEmpty(client.City),
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client email already exists: %w", err)
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID retourne un client par ID, nil si absent.
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	query := `
		SELECT id, user_id, name, email, street, postal_code, city, created_at, updated_at
		FROM clients WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByUserAndEmail retourne le client d'un utilisateur par email, nil si absent.
func (r *ClientRepo) GetByUserAndEmail(userID, email string) (*entity.Client, error) {
	query := `
		SELECT id, user_id, name, email, street, postal_code, city, created_at, updated_at
		FROM clients WHERE user_id = $1 AND email = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, userID, email))
}

// ListByUser liste les clients d'un utilisateur, triés par nom.
func (r *ClientRepo) ListByUser(userID string) ([]*entity.Client, error) {
	query := `
		SELECT id, user_id, name, email, street, postal_code, city, created_at, updated_at
		FROM clients WHERE user_id = $1 ORDER BY name`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update met à jour un client.
func (r *ClientRepo) Update(client *entity.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, street = $4, postal_code = $5, city = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		client.ID, client.Name, client.Email,
		nullIfEmpty(client.Street), nullIfEmpty(client.PostalCode), nullIfEmpty(client.City),
		client.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client email already exists: %w", err)
		}
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// Delete supprime un client.
func (r *ClientRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (r *ClientRepo) scanOne(row pgx.Row) (*entity.Client, error) {
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	var street, postalCode, city *string
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email,
		&street, &postalCode, &city,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}
	c.Street = deref(street)
	c.PostalCode = deref(postalCode)
	c.City = deref(city)
	return &c, nil
}
