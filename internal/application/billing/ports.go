package billing

import (
	"context"

	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

// BillingTxRunner exécute une fonction dans une transaction couvrant les
// prestations, les factures, les clients et les paramètres de facturation.
// Toute erreur retournée par fn provoque un rollback complet.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		clientRepo repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error) error
}

// FacturePDFGenerator produit le PDF d'une facture. La mise en page doit
// être déterministe pour des entrées identiques.
type FacturePDFGenerator interface {
	GenerateFacturePDF(ctx context.Context,
		facture *entity.Facture,
		client *entity.Client,
		info *entity.BusinessInfo,
		prestations []*entity.Prestation,
	) ([]byte, error)
}

// AvoirPDFGenerator produit le PDF d'une note de crédit.
type AvoirPDFGenerator interface {
	GenerateAvoirPDF(ctx context.Context,
		facture *entity.Facture,
		client *entity.Client,
		info *entity.BusinessInfo,
	) ([]byte, error)
}

// PDFStore persiste les documents générés et retourne leur chemin.
// Le nommage doit seulement être unique, pas stable.
type PDFStore interface {
	SaveFacturePDF(facture *entity.Facture, clientName string, data []byte) (string, error)
	SaveAvoirPDF(facture *entity.Facture, clientName string, data []byte) (string, error)
	Remove(path string) error
}
