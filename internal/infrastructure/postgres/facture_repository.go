package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var _ repository.FactureRepository = (*FactureRepo)(nil)

const factureColumns = `id, user_id, client_id, date_facture, date_echeance,
	invoice_number, year, month,
	montant_ht, taxe_urssaf, montant_net, montant_tva, montant_ttc, nombre_heures,
	status, statut, locked, is_sent_to_client, date_sent, pdf_path,
	methode_paiement, commentaire_paiement, date_paiement,
	historique_paiements, rappels, versions, rectifications,
	is_rectification, rectification_info, avoir, annulation,
	created_at, updated_at`

// FactureRepo implémentation de FactureRepository (pool ou tx). Les journaux
// append-only et les blocs rectification/avoir/annulation sont stockés en
// JSONB : lus et réécrits avec la facture, jamais requêtés ligne à ligne.
type FactureRepo struct {
	q Querier
}

// NewFactureRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewFactureRepository(q Querier) *FactureRepo {
	return &FactureRepo{q: q}
}

// Create persiste une facture.
func (r *FactureRepo) Create(f *entity.Facture) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	js, err := factureJSON(f)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO factures (id, user_id, client_id, date_facture, date_echeance,
			invoice_number, year, month,
			montant_ht, taxe_urssaf, montant_net, montant_tva, montant_ttc, nombre_heures,
			status, statut, locked, is_sent_to_client, date_sent, pdf_path,
			methode_paiement, commentaire_paiement, date_paiement,
			historique_paiements, rappels, versions, rectifications,
			is_rectification, rectification_info, avoir, annulation,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27, $28, $29, $30, $31, $32, $33)`
	_, err = r.q.Exec(context.Background(), query,
		f.ID, f.UserID, f.ClientID, f.DateFacture, f.DateEcheance,
		f.InvoiceNumber, f.Year, f.Month,
		f.MontantHT, f.TaxeURSSAF, f.MontantNet, f.MontantTVA, f.MontantTTC, f.NombreHeures,
		string(f.Status), string(f.Statut), f.Locked, f.IsSentToClient, f.DateSent, nullIfEmpty(f.PDFPath),
		nullIfEmpty(f.MethodePaiement), nullIfEmpty(f.CommentairePaiement), f.DatePaiement,
		js.paiements, js.rappels, js.versions, js.rectifications,
		f.IsRectification, js.rectificationInfo, js.avoir, js.annulation,
		f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert facture: %w", err)
	}
	return nil
}

// Update réécrit tous les champs mutables et les journaux de la facture.
func (r *FactureRepo) Update(f *entity.Facture) error {
	js, err := factureJSON(f)
	if err != nil {
		return err
	}
	query := `
		UPDATE factures
		SET client_id = $2, date_facture = $3, date_echeance = $4,
		    montant_ht = $5, taxe_urssaf = $6, montant_net = $7, montant_tva = $8,
		    montant_ttc = $9, nombre_heures = $10,
		    status = $11, statut = $12, locked = $13,
		    is_sent_to_client = $14, date_sent = $15, pdf_path = $16,
		    methode_paiement = $17, commentaire_paiement = $18, date_paiement = $19,
		    historique_paiements = $20, rappels = $21, versions = $22, rectifications = $23,
		    rectification_info = $24, avoir = $25, annulation = $26,
		    updated_at = $27
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		f.ID, f.ClientID, f.DateFacture, f.DateEcheance,
		f.MontantHT, f.TaxeURSSAF, f.MontantNet, f.MontantTVA, f.MontantTTC, f.NombreHeures,
		string(f.Status), string(f.Statut), f.Locked,
		f.IsSentToClient, f.DateSent, nullIfEmpty(f.PDFPath),
		nullIfEmpty(f.MethodePaiement), nullIfEmpty(f.CommentairePaiement), f.DatePaiement,
		js.paiements, js.rappels, js.versions, js.rectifications,
		js.rectificationInfo, js.avoir, js.annulation,
		f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update facture: %w", err)
	}
	return nil
}

// Delete supprime une facture.
func (r *FactureRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM factures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete facture: %w", err)
	}
	return nil
}

// GetByID retourne une facture complète, nil si absente.
func (r *FactureRepo) GetByID(id string) (*entity.Facture, error) {
	query := `SELECT ` + factureColumns + ` FROM factures WHERE id = $1`
	f, err := r.scanFacture(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.chargerPrestationIDs(f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetByClientAndPeriod retourne la facture active (non annulée) d'un client
// pour une période, nil si absente.
func (r *FactureRepo) GetByClientAndPeriod(userID, clientID string, year, month int) (*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures
		WHERE user_id = $1 AND client_id = $2 AND year = $3 AND month = $4
		  AND statut <> 'ANNULEE' AND is_rectification = false
		LIMIT 1`
	f, err := r.scanFacture(r.q.QueryRow(context.Background(), query, userID, clientID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.chargerPrestationIDs(f); err != nil {
		return nil, err
	}
	return f, nil
}

// List retourne les factures d'un utilisateur, filtres optionnels, numéro
// décroissant.
func (r *FactureRepo) List(userID string, filter repository.FactureFilter) ([]*entity.Facture, error) {
	query := `SELECT ` + factureColumns + ` FROM factures WHERE user_id = $1`
	args := []any{userID}
	if filter.Year > 0 {
		query += fmt.Sprintf(` AND year = $%d`, len(args)+1)
		args = append(args, filter.Year)
	}
	if filter.Month > 0 {
		query += fmt.Sprintf(` AND month = $%d`, len(args)+1)
		args = append(args, filter.Month)
	}
	if filter.ClientID != "" {
		query += fmt.Sprintf(` AND client_id = $%d`, len(args)+1)
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, len(args)+1)
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY invoice_number DESC`
	return r.listQuery(query, args...)
}

// LastInvoiceNumber retourne le plus grand numéro émis, 0 si aucune facture.
func (r *FactureRepo) LastInvoiceNumber(userID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(invoice_number), 0) FROM factures WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("last invoice number: %w", err)
	}
	return n, nil
}

// ListByChainMember retourne les rectificatives dont la chaîne d'ancêtres
// contient la facture donnée, numéro croissant.
func (r *FactureRepo) ListByChainMember(userID, factureID string) ([]*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures
		WHERE user_id = $1 AND is_rectification = true
		  AND rectification_info->'chaine' @> to_jsonb($2::text)
		ORDER BY invoice_number`
	return r.listQuery(query, userID, factureID)
}

// ListRectificationsOf retourne les rectificatives directes d'une origine.
func (r *FactureRepo) ListRectificationsOf(userID, originalID string) ([]*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures
		WHERE user_id = $1 AND is_rectification = true
		  AND rectification_info->>'originalFactureId' = $2
		ORDER BY invoice_number`
	return r.listQuery(query, userID, originalID)
}

// ListUnpaidDue retourne les factures impayées ou en retard dont l'échéance
// est passée, tous utilisateurs confondus.
func (r *FactureRepo) ListUnpaidDue(now time.Time) ([]*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures
		WHERE status IN ('unpaid', 'overdue') AND locked = false AND date_echeance < $1
		ORDER BY date_echeance`
	return r.listQuery(query, now)
}

func (r *FactureRepo) listQuery(query string, args ...any) ([]*entity.Facture, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list factures: %w", err)
	}
	defer rows.Close()

	var factures []*entity.Facture
	for rows.Next() {
		f, err := r.scanFacture(rows)
		if err != nil {
			return nil, err
		}
		factures = append(factures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Chargé après la fermeture du curseur : une même connexion (tx) ne
	// supporte pas deux requêtes simultanées.
	for _, f := range factures {
		if err := r.chargerPrestationIDs(f); err != nil {
			return nil, err
		}
	}
	return factures, nil
}

// factureJSONB : colonnes JSONB sérialisées d'une facture.
type factureJSONB struct {
	paiements         []byte
	rappels           []byte
	versions          []byte
	rectifications    []byte
	rectificationInfo []byte
	avoir             []byte
	annulation        []byte
}

func factureJSON(f *entity.Facture) (*factureJSONB, error) {
	var js factureJSONB
	var err error
	if js.paiements, err = json.Marshal(f.HistoriquePaiements); err != nil {
		return nil, fmt.Errorf("encode historique_paiements: %w", err)
	}
	if js.rappels, err = json.Marshal(f.Rappels); err != nil {
		return nil, fmt.Errorf("encode rappels: %w", err)
	}
	if js.versions, err = json.Marshal(f.Versions); err != nil {
		return nil, fmt.Errorf("encode versions: %w", err)
	}
	if js.rectifications, err = json.Marshal(f.Rectifications); err != nil {
		return nil, fmt.Errorf("encode rectifications: %w", err)
	}
	if f.RectificationInfo != nil {
		if js.rectificationInfo, err = json.Marshal(f.RectificationInfo); err != nil {
			return nil, fmt.Errorf("encode rectification_info: %w", err)
		}
	}
	if f.Avoir != nil {
		if js.avoir, err = json.Marshal(f.Avoir); err != nil {
			return nil, fmt.Errorf("encode avoir: %w", err)
		}
	}
	if f.Annulation != nil {
		if js.annulation, err = json.Marshal(f.Annulation); err != nil {
			return nil, fmt.Errorf("encode annulation: %w", err)
		}
	}
	return &js, nil
}

func (r *FactureRepo) scanFacture(row pgx.Row) (*entity.Facture, error) {
	var f entity.Facture
	var status, statut string
	var pdfPath, methode, commentaire *string
	var paiements, rappels, versions, rectifications []byte
	var rectificationInfo, avoir, annulation []byte

	err := row.Scan(
		&f.ID, &f.UserID, &f.ClientID, &f.DateFacture, &f.DateEcheance,
		&f.InvoiceNumber, &f.Year, &f.Month,
		&f.MontantHT, &f.TaxeURSSAF, &f.MontantNet, &f.MontantTVA, &f.MontantTTC, &f.NombreHeures,
		&status, &statut, &f.Locked, &f.IsSentToClient, &f.DateSent, &pdfPath,
		&methode, &commentaire, &f.DatePaiement,
		&paiements, &rappels, &versions, &rectifications,
		&f.IsRectification, &rectificationInfo, &avoir, &annulation,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan facture: %w", err)
	}
	f.Status = entity.StatutPaiement(status)
	f.Statut = entity.StatutLegal(statut)
	f.PDFPath = deref(pdfPath)
	f.MethodePaiement = deref(methode)
	f.CommentairePaiement = deref(commentaire)

	if err := json.Unmarshal(paiements, &f.HistoriquePaiements); err != nil {
		return nil, fmt.Errorf("decode historique_paiements: %w", err)
	}
	if err := json.Unmarshal(rappels, &f.Rappels); err != nil {
		return nil, fmt.Errorf("decode rappels: %w", err)
	}
	if err := json.Unmarshal(versions, &f.Versions); err != nil {
		return nil, fmt.Errorf("decode versions: %w", err)
	}
	if err := json.Unmarshal(rectifications, &f.Rectifications); err != nil {
		return nil, fmt.Errorf("decode rectifications: %w", err)
	}
	if len(rectificationInfo) > 0 {
		f.RectificationInfo = &entity.RectificationInfo{}
		if err := json.Unmarshal(rectificationInfo, f.RectificationInfo); err != nil {
			return nil, fmt.Errorf("decode rectification_info: %w", err)
		}
	}
	if len(avoir) > 0 {
		f.Avoir = &entity.Avoir{}
		if err := json.Unmarshal(avoir, f.Avoir); err != nil {
			return nil, fmt.Errorf("decode avoir: %w", err)
		}
	}
	if len(annulation) > 0 {
		f.Annulation = &entity.Annulation{}
		if err := json.Unmarshal(annulation, f.Annulation); err != nil {
			return nil, fmt.Errorf("decode annulation: %w", err)
		}
	}

	return &f, nil
}

// chargerPrestationIDs dérive la liste des prestations du rattachement.
func (r *FactureRepo) chargerPrestationIDs(f *entity.Facture) error {
	rows, err := r.q.Query(context.Background(),
		`SELECT id FROM prestations WHERE invoice_id = $1 ORDER BY date`, f.ID)
	if err != nil {
		return fmt.Errorf("load prestation ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan prestation id: %w", err)
		}
		f.PrestationIDs = append(f.PrestationIDs, id)
	}
	return rows.Err()
}
