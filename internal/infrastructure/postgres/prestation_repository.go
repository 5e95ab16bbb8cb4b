package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var _ repository.PrestationRepository = (*PrestationRepo)(nil)

const prestationColumns = `id, user_id, client_id, description, billing_type,
	hours, hourly_rate, fixed_price, quantity, duration, duration_unit, total, date,
	invoice_id, invoice_status, invoice_is_sent_to_client, invoice_locked, invoice_paid,
	is_replaced, replaced_by_prestation_id, original_prestation_id,
	created_at, updated_at`

// PrestationRepo implémentation de PrestationRepository (pool ou tx).
type PrestationRepo struct {
	q Querier
}

// NewPrestationRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewPrestationRepository(q Querier) *PrestationRepo {
	return &PrestationRepo{q: q}
}

// Create persiste une prestation.
func (r *PrestationRepo) Create(p *entity.Prestation) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO prestations (id, user_id, client_id, description, billing_type,
			hours, hourly_rate, fixed_price, quantity, duration, duration_unit, total, date,
			invoice_id, invoice_status, invoice_is_sent_to_client, invoice_locked, invoice_paid,
			is_replaced, replaced_by_prestation_id, original_prestation_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.UserID, p.ClientID, p.Description, p.BillingType,
		p.Hours, p.HourlyRate, p.FixedPrice, p.Quantity, p.Duration, p.DurationUnit, p.Total, p.Date,
		nullIfEmpty(p.InvoiceID), nullIfEmpty(p.InvoiceStatus), p.InvoiceIsSentToClient, p.InvoiceLocked, p.InvoicePaid,
		p.IsReplaced, nullIfEmpty(p.ReplacedByPrestationID), nullIfEmpty(p.OriginalPrestationID),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prestation: %w", err)
	}
	return nil
}

// GetByID retourne une prestation, nil si absente.
func (r *PrestationRepo) GetByID(id string) (*entity.Prestation, error) {
	query := `SELECT ` + prestationColumns + ` FROM prestations WHERE id = $1`
	p, err := scanPrestation(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Update met à jour tous les champs mutables d'une prestation.
func (r *PrestationRepo) Update(p *entity.Prestation) error {
	query := `
		UPDATE prestations
		SET description = $2, billing_type = $3, hours = $4, hourly_rate = $5,
		    fixed_price = $6, quantity = $7, duration = $8, duration_unit = $9,
		    total = $10, date = $11,
		    invoice_id = $12, invoice_status = $13, invoice_is_sent_to_client = $14,
		    invoice_locked = $15, invoice_paid = $16,
		    is_replaced = $17, replaced_by_prestation_id = $18, original_prestation_id = $19,
		    updated_at = $20
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Description, p.BillingType, p.Hours, p.HourlyRate,
		p.FixedPrice, p.Quantity, p.Duration, p.DurationUnit,
		p.Total, p.Date,
		nullIfEmpty(p.InvoiceID), nullIfEmpty(p.InvoiceStatus), p.InvoiceIsSentToClient,
		p.InvoiceLocked, p.InvoicePaid,
		p.IsReplaced, nullIfEmpty(p.ReplacedByPrestationID), nullIfEmpty(p.OriginalPrestationID),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update prestation: %w", err)
	}
	return nil
}

// Delete supprime une prestation.
func (r *PrestationRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM prestations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prestation: %w", err)
	}
	return nil
}

// ListByUser liste les prestations d'un utilisateur, filtrées par période si
// year/month sont renseignés, triées par date décroissante.
func (r *PrestationRepo) ListByUser(userID string, year, month int) ([]*entity.Prestation, error) {
	query := `SELECT ` + prestationColumns + ` FROM prestations WHERE user_id = $1`
	args := []any{userID}
	if year > 0 {
		query += fmt.Sprintf(` AND EXTRACT(YEAR FROM date) = $%d`, len(args)+1)
		args = append(args, year)
	}
	if month > 0 {
		query += fmt.Sprintf(` AND EXTRACT(MONTH FROM date) = $%d`, len(args)+1)
		args = append(args, month)
	}
	query += ` ORDER BY date DESC`
	return r.list(query, args...)
}

// ListUnattachedForPeriod retourne les prestations facturables du client sur
// la période : non rattachées et non remplacées.
func (r *PrestationRepo) ListUnattachedForPeriod(userID, clientID string, start, end time.Time) ([]*entity.Prestation, error) {
	query := `SELECT ` + prestationColumns + `
		FROM prestations
		WHERE user_id = $1 AND client_id = $2
		  AND invoice_id IS NULL AND is_replaced = false
		  AND date >= $3 AND date <= $4
		ORDER BY date`
	return r.list(query, userID, clientID, start, end)
}

// ListByInvoice retourne les prestations d'une facture, triées par date.
func (r *PrestationRepo) ListByInvoice(invoiceID string) ([]*entity.Prestation, error) {
	query := `SELECT ` + prestationColumns + ` FROM prestations WHERE invoice_id = $1 ORDER BY date`
	return r.list(query, invoiceID)
}

// AttachToInvoice rattache les prestations à la facture et initialise leur
// miroir d'état.
func (r *PrestationRepo) AttachToInvoice(ids []string, invoiceID string, mirror repository.MirrorUpdate) error {
	query := `
		UPDATE prestations
		SET invoice_id = $2, invoice_status = $3, invoice_is_sent_to_client = $4,
		    invoice_locked = $5, invoice_paid = $6, updated_at = now()
		WHERE id = ANY($1)`
	_, err := r.q.Exec(context.Background(), query,
		ids, invoiceID, string(mirror.InvoiceStatus),
		mirror.InvoiceIsSentToClient, mirror.InvoiceLocked, mirror.InvoicePaid,
	)
	if err != nil {
		return fmt.Errorf("attach prestations: %w", err)
	}
	return nil
}

// DetachFromInvoice détache toutes les prestations de la facture et remet
// leur miroir à zéro.
func (r *PrestationRepo) DetachFromInvoice(invoiceID string) error {
	query := `
		UPDATE prestations
		SET invoice_id = NULL, invoice_status = NULL, invoice_is_sent_to_client = false,
		    invoice_locked = false, invoice_paid = false, updated_at = now()
		WHERE invoice_id = $1`
	_, err := r.q.Exec(context.Background(), query, invoiceID)
	if err != nil {
		return fmt.Errorf("detach prestations: %w", err)
	}
	return nil
}

// SyncMirror propage l'état de la facture sur ses prestations.
func (r *PrestationRepo) SyncMirror(invoiceID string, mirror repository.MirrorUpdate) error {
	query := `
		UPDATE prestations
		SET invoice_status = $2, invoice_is_sent_to_client = $3,
		    invoice_locked = $4, invoice_paid = $5, updated_at = now()
		WHERE invoice_id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoiceID, string(mirror.InvoiceStatus),
		mirror.InvoiceIsSentToClient, mirror.InvoiceLocked, mirror.InvoicePaid,
	)
	if err != nil {
		return fmt.Errorf("sync prestation mirror: %w", err)
	}
	return nil
}

func (r *PrestationRepo) list(query string, args ...any) ([]*entity.Prestation, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prestations: %w", err)
	}
	defer rows.Close()

	var prestations []*entity.Prestation
	for rows.Next() {
		p, err := scanPrestation(rows)
		if err != nil {
			return nil, err
		}
		prestations = append(prestations, p)
	}
	return prestations, rows.Err()
}

func scanPrestation(row pgx.Row) (*entity.Prestation, error) {
	var p entity.Prestation
	var invoiceID, invoiceStatus, replacedBy, originalID *string
	err := row.Scan(
		&p.ID, &p.UserID, &p.ClientID, &p.Description, &p.BillingType,
		&p.Hours, &p.HourlyRate, &p.FixedPrice, &p.Quantity, &p.Duration, &p.DurationUnit,
		&p.Total, &p.Date,
		&invoiceID, &invoiceStatus, &p.InvoiceIsSentToClient, &p.InvoiceLocked, &p.InvoicePaid,
		&p.IsReplaced, &replacedBy, &originalID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan prestation: %w", err)
	}
	p.InvoiceID = deref(invoiceID)
	p.InvoiceStatus = deref(invoiceStatus)
	p.ReplacedByPrestationID = deref(replacedBy)
	p.OriginalPrestationID = deref(originalID)
	return &p, nil
}
