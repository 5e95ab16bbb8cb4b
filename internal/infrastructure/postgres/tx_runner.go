package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner exécute des callbacks dans une transaction PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construit le runner avec le pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling ouvre une transaction, exécute fn avec des repos liés à la tx,
// puis Commit ou Rollback.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	prestationRepo repository.PrestationRepository,
	factureRepo repository.FactureRepository,
	clientRepo repository.ClientRepository,
	infoRepo repository.BusinessInfoRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	prestationRepo := NewPrestationRepository(tx)
	factureRepo := NewFactureRepository(tx)
	clientRepo := NewClientRepository(tx)
	infoRepo := NewBusinessInfoRepository(tx)

	if err := fn(prestationRepo, factureRepo, clientRepo, infoRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
