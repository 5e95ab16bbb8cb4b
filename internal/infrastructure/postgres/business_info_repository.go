package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var _ repository.BusinessInfoRepository = (*BusinessInfoRepo)(nil)

// BusinessInfoRepo implémentation de BusinessInfoRepository (pool ou tx).
// Les blocs de fonctionnalités (statut, relances, affichage) sont stockés
// en JSONB.
type BusinessInfoRepo struct {
	q Querier
}

// NewBusinessInfoRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewBusinessInfoRepository(q Querier) *BusinessInfoRepo {
	return &BusinessInfoRepo{q: q}
}

// GetByUser retourne les paramètres d'un utilisateur, nil si absents.
func (r *BusinessInfoRepo) GetByUser(userID string) (*entity.BusinessInfo, error) {
	query := `
		SELECT id, user_id, name, address, postal_code, city, phone, email, siret, company_type,
		       invoice_title, taxe_urssaf, taux_tva, invoice_number_start, current_invoice_number,
		       prefixe_avoir, invoice_status, automatic_reminders, display_options, mention_tva,
		       created_at, updated_at
		FROM business_info WHERE user_id = $1`
	var b entity.BusinessInfo
	var invoiceStatus, reminders, display []byte
	err := r.q.QueryRow(context.Background(), query, userID).Scan(
		&b.ID, &b.UserID, &b.Name, &b.Address, &b.PostalCode, &b.City, &b.Phone, &b.Email,
		&b.Siret, &b.CompanyType,
		&b.InvoiceTitle, &b.TaxeURSSAF, &b.TauxTVA, &b.InvoiceNumberStart, &b.CurrentInvoiceNumber,
		&b.PrefixeAvoir, &invoiceStatus, &reminders, &display, &b.MentionTVA,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business info: %w", err)
	}
	if err := json.Unmarshal(invoiceStatus, &b.InvoiceStatus); err != nil {
		return nil, fmt.Errorf("decode invoice_status: %w", err)
	}
	if err := json.Unmarshal(reminders, &b.AutomaticReminders); err != nil {
		return nil, fmt.Errorf("decode automatic_reminders: %w", err)
	}
	if err := json.Unmarshal(display, &b.Display); err != nil {
		return nil, fmt.Errorf("decode display_options: %w", err)
	}
	return &b, nil
}

// Save crée ou met à jour les paramètres (un document par utilisateur).
func (r *BusinessInfoRepo) Save(info *entity.BusinessInfo) error {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	invoiceStatus, err := json.Marshal(info.InvoiceStatus)
	if err != nil {
		return fmt.Errorf("encode invoice_status: %w", err)
	}
	reminders, err := json.Marshal(info.AutomaticReminders)
	if err != nil {
		return fmt.Errorf("encode automatic_reminders: %w", err)
	}
	display, err := json.Marshal(info.Display)
	if err != nil {
		return fmt.Errorf("encode display_options: %w", err)
	}

	query := `
		INSERT INTO business_info (id, user_id, name, address, postal_code, city, phone, email,
			siret, company_type, invoice_title, taxe_urssaf, taux_tva,
			invoice_number_start, current_invoice_number, prefixe_avoir,
			invoice_status, automatic_reminders, display_options, mention_tva,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address, postal_code = EXCLUDED.postal_code,
		    city = EXCLUDED.city, phone = EXCLUDED.phone, email = EXCLUDED.email,
		    siret = EXCLUDED.siret, company_type = EXCLUDED.company_type,
		    invoice_title = EXCLUDED.invoice_title, taxe_urssaf = EXCLUDED.taxe_urssaf,
		    taux_tva = EXCLUDED.taux_tva, invoice_number_start = EXCLUDED.invoice_number_start,
		    prefixe_avoir = EXCLUDED.prefixe_avoir, invoice_status = EXCLUDED.invoice_status,
		    automatic_reminders = EXCLUDED.automatic_reminders,
		    display_options = EXCLUDED.display_options, mention_tva = EXCLUDED.mention_tva,
		    updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(context.Background(), query,
		info.ID, info.UserID, info.Name, info.Address, info.PostalCode, info.City,
		info.Phone, info.Email, info.Siret, info.CompanyType,
		info.InvoiceTitle, info.TaxeURSSAF, info.TauxTVA,
		info.InvoiceNumberStart, info.CurrentInvoiceNumber, info.PrefixeAvoir,
		invoiceStatus, reminders, display, info.MentionTVA,
		info.CreatedAt, info.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save business info: %w", err)
	}
	return nil
}

// NextInvoiceNumber réserve atomiquement le prochain numéro de facture :
// max(valeur de départ, compteur courant + 1). L'UPDATE verrouille la ligne
// jusqu'au commit, deux créations concurrentes ne peuvent donc pas obtenir
// le même numéro.
func (r *BusinessInfoRepo) NextInvoiceNumber(userID string) (int, error) {
	query := `
		UPDATE business_info
		SET current_invoice_number = GREATEST(invoice_number_start, current_invoice_number + 1),
		    updated_at = now()
		WHERE user_id = $1
		RETURNING current_invoice_number`
	var n int
	err := r.q.QueryRow(context.Background(), query, userID).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("business info not found for user %s", userID)
		}
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return n, nil
}
