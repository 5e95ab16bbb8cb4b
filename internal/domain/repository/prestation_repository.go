package repository

import (
	"time"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

// MirrorUpdate : champs miroir de l'état de la facture propagés sur ses
// prestations.
type MirrorUpdate struct {
	InvoiceStatus         entity.StatutPaiement
	InvoiceIsSentToClient bool
	InvoiceLocked         bool
	InvoicePaid           bool
}

// PrestationRepository définit le port de persistance des prestations.
type PrestationRepository interface {
	Create(prestation *entity.Prestation) error
	GetByID(id string) (*entity.Prestation, error)
	Update(prestation *entity.Prestation) error
	Delete(id string) error
	ListByUser(userID string, year, month int) ([]*entity.Prestation, error)
	// ListUnattachedForPeriod retourne les prestations du client non encore
	// rattachées à une facture, datées dans [start, end].
	ListUnattachedForPeriod(userID, clientID string, start, end time.Time) ([]*entity.Prestation, error)
	ListByInvoice(invoiceID string) ([]*entity.Prestation, error)
	// AttachToInvoice rattache les prestations à la facture et initialise
	// leur miroir.
	AttachToInvoice(ids []string, invoiceID string, mirror MirrorUpdate) error
	// DetachFromInvoice détache toutes les prestations de la facture et
	// remet leur miroir à zéro.
	DetachFromInvoice(invoiceID string) error
	// SyncMirror propage l'état de la facture sur ses prestations.
	SyncMirror(invoiceID string, mirror MirrorUpdate) error
}
