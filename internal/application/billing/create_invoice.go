package billing

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

// FactureUseCase orchestre le cycle de vie complet des factures : création
// mensuelle, rectification, paiement, annulation, avoir, envoi, duplication.
// Chaque opération d'écriture s'exécute dans une transaction unique : en cas
// d'échec à n'importe quelle étape (y compris la génération du PDF), rien
// n'est appliqué.
type FactureUseCase struct {
	txRunner       BillingTxRunner
	factureRepo    repository.FactureRepository
	prestationRepo repository.PrestationRepository
	clientRepo     repository.ClientRepository
	infoRepo       repository.BusinessInfoRepository
	pdfGen         FacturePDFGenerator
	avoirGen       AvoirPDFGenerator
	pdfStore       PDFStore
}

// NewFactureUseCase construit le cas d'usage.
func NewFactureUseCase(
	txRunner BillingTxRunner,
	factureRepo repository.FactureRepository,
	prestationRepo repository.PrestationRepository,
	clientRepo repository.ClientRepository,
	infoRepo repository.BusinessInfoRepository,
	pdfGen FacturePDFGenerator,
	avoirGen AvoirPDFGenerator,
	pdfStore PDFStore,
) *FactureUseCase {
	return &FactureUseCase{
		txRunner:       txRunner,
		factureRepo:    factureRepo,
		prestationRepo: prestationRepo,
		clientRepo:     clientRepo,
		infoRepo:       infoRepo,
		pdfGen:         pdfGen,
		avoirGen:       avoirGen,
		pdfStore:       pdfStore,
	}
}

// bornesPeriode retourne le premier et le dernier instant du mois facturé.
func bornesPeriode(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// CreerFacture génère la facture mensuelle d'un client : rassemble les
// prestations non rattachées de la période, calcule les totaux, réserve un
// numéro, persiste, puis génère le PDF — le tout dans une transaction.
func (uc *FactureUseCase) CreerFacture(ctx context.Context, userID string, in dto.CreateFactureRequest) (*entity.Facture, error) {
	if in.ClientID == "" || in.Year < 1900 || in.Month < 1 || in.Month > 12 {
		return nil, domain.ErrValidation
	}

	var facture *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		clientRepo repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error {
		client, err := clientRepo.GetByID(in.ClientID)
		if err != nil {
			return err
		}
		if client == nil || client.UserID != userID {
			return domain.ErrNotFound
		}

		existante, err := factureRepo.GetByClientAndPeriod(userID, in.ClientID, in.Year, in.Month)
		if err != nil {
			return err
		}
		if existante != nil {
			return fmt.Errorf("%w: une facture existe déjà pour ce client et cette période", domain.ErrConflict)
		}

		start, end := bornesPeriode(in.Year, in.Month)
		prestations, err := prestationRepo.ListUnattachedForPeriod(userID, in.ClientID, start, end)
		if err != nil {
			return err
		}
		if len(prestations) == 0 {
			return fmt.Errorf("%w: aucune prestation pour cette période", domain.ErrNotFound)
		}

		info, err := infoRepo.GetByUser(userID)
		if err != nil {
			return err
		}
		if info == nil {
			return domain.ErrSettingsNotFound
		}

		numero, err := infoRepo.NextInvoiceNumber(userID)
		if err != nil {
			return err
		}

		now := time.Now()
		facture = &entity.Facture{
			ID:            uuid.New().String(),
			UserID:        userID,
			ClientID:      in.ClientID,
			DateFacture:   now,
			DateEcheance:  now.AddDate(0, 0, info.DelaiPaiement()),
			InvoiceNumber: numero,
			Year:          in.Year,
			Month:         in.Month,
			Status:        entity.StatutBrouillon,
			Statut:        entity.LegalValide,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for _, p := range prestations {
			facture.PrestationIDs = append(facture.PrestationIDs, p.ID)
		}
		AppliquerTotaux(facture, CalculerTotaux(prestations, info))

		if err := factureRepo.Create(facture); err != nil {
			return err
		}
		if err := prestationRepo.AttachToInvoice(facture.PrestationIDs, facture.ID, repository.MirrorUpdate{
			InvoiceStatus: entity.StatutBrouillon,
		}); err != nil {
			return err
		}

		// Le PDF fait partie de l'opération : s'il échoue, la facture
		// n'est pas considérée comme créée.
		path, err := uc.genererEtStockerPDF(ctx, facture, client, info, prestations)
		if err != nil {
			return err
		}
		facture.PDFPath = path
		return factureRepo.Update(facture)
	})
	if err != nil {
		return nil, err
	}
	return facture, nil
}

// genererEtStockerPDF produit et persiste le PDF de la facture.
func (uc *FactureUseCase) genererEtStockerPDF(ctx context.Context, facture *entity.Facture, client *entity.Client, info *entity.BusinessInfo, prestations []*entity.Prestation) (string, error) {
	data, err := uc.pdfGen.GenerateFacturePDF(ctx, facture, client, info, prestations)
	if err != nil {
		return "", fmt.Errorf("générer le PDF: %w", err)
	}
	path, err := uc.pdfStore.SaveFacturePDF(facture, client.Name, data)
	if err != nil {
		return "", fmt.Errorf("enregistrer le PDF: %w", err)
	}
	return path, nil
}

// PreviewFacture calcule la facture du mois sans rien persister et retourne
// le PDF de prévisualisation.
func (uc *FactureUseCase) PreviewFacture(ctx context.Context, userID string, in dto.CreateFactureRequest) ([]byte, error) {
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.UserID != userID {
		return nil, domain.ErrNotFound
	}
	start, end := bornesPeriode(in.Year, in.Month)
	prestations, err := uc.prestationRepo.ListUnattachedForPeriod(userID, in.ClientID, start, end)
	if err != nil {
		return nil, err
	}
	if len(prestations) == 0 {
		return nil, fmt.Errorf("%w: aucune prestation pour cette période", domain.ErrNotFound)
	}
	info, err := uc.infoRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrSettingsNotFound
	}
	dernier, err := uc.factureRepo.LastInvoiceNumber(userID)
	if err != nil {
		return nil, err
	}
	numero := dernier + 1
	if numero < info.InvoiceNumberStart {
		numero = info.InvoiceNumberStart
	}

	now := time.Now()
	tmp := &entity.Facture{
		UserID:        userID,
		ClientID:      in.ClientID,
		DateFacture:   now,
		DateEcheance:  now.AddDate(0, 0, info.DelaiPaiement()),
		InvoiceNumber: numero,
		Year:          in.Year,
		Month:         in.Month,
		Status:        entity.StatutBrouillon,
		Statut:        entity.LegalValide,
	}
	AppliquerTotaux(tmp, CalculerTotaux(prestations, info))
	return uc.pdfGen.GenerateFacturePDF(ctx, tmp, client, info, prestations)
}

// GetFacture retourne une facture de l'utilisateur, retard rafraîchi.
func (uc *FactureUseCase) GetFacture(ctx context.Context, userID, id string) (*entity.Facture, error) {
	facture, err := uc.factureRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if facture == nil || facture.UserID != userID {
		return nil, domain.ErrNotFound
	}
	facture.RafraichirRetard(time.Now())
	return facture, nil
}

// ListFactures liste les factures de l'utilisateur avec filtres optionnels.
func (uc *FactureUseCase) ListFactures(ctx context.Context, userID string, filter repository.FactureFilter) ([]*entity.Facture, error) {
	factures, err := uc.factureRepo.List(userID, filter)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, f := range factures {
		f.RafraichirRetard(now)
	}
	return factures, nil
}

// DernierNumero retourne le dernier numéro de facture émis (0 si aucun).
func (uc *FactureUseCase) DernierNumero(ctx context.Context, userID string) (int, error) {
	return uc.factureRepo.LastInvoiceNumber(userID)
}

// PrestationsDeFacture retourne les prestations rattachées à une facture.
func (uc *FactureUseCase) PrestationsDeFacture(ctx context.Context, userID, factureID string) ([]*entity.Prestation, error) {
	facture, err := uc.GetFacture(ctx, userID, factureID)
	if err != nil {
		return nil, err
	}
	return uc.prestationRepo.ListByInvoice(facture.ID)
}

// FacturePDF régénère le PDF d'une facture existante (téléchargement).
func (uc *FactureUseCase) FacturePDF(ctx context.Context, userID, factureID string) ([]byte, error) {
	facture, err := uc.GetFacture(ctx, userID, factureID)
	if err != nil {
		return nil, err
	}
	client, err := uc.clientRepo.GetByID(facture.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	info, err := uc.infoRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrSettingsNotFound
	}
	prestations, err := uc.prestationRepo.ListByInvoice(facture.ID)
	if err != nil {
		return nil, err
	}
	return uc.pdfGen.GenerateFacturePDF(ctx, facture, client, info, prestations)
}

// SupprimerFacture supprime un brouillon jamais envoyé : les prestations
// sont détachées (miroir remis à zéro) et le PDF est effacé. Une facture
// verrouillée, payée ou envoyée ne peut pas être supprimée.
func (uc *FactureUseCase) SupprimerFacture(ctx context.Context, userID, factureID string) error {
	var pdfPath string
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		_ repository.ClientRepository,
		_ repository.BusinessInfoRepository,
	) error {
		facture, err := factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture == nil || facture.UserID != userID {
			return domain.ErrNotFound
		}
		if !facture.EstModifiable() || facture.IsSentToClient || facture.Status != entity.StatutBrouillon {
			return fmt.Errorf("%w: seule une facture en brouillon non envoyée peut être supprimée", domain.ErrInvalidState)
		}
		if err := prestationRepo.DetachFromInvoice(facture.ID); err != nil {
			return err
		}
		pdfPath = facture.PDFPath
		return factureRepo.Delete(facture.ID)
	})
	if err != nil {
		return err
	}
	if pdfPath != "" {
		// Meilleur effort : la facture est déjà supprimée.
		_ = uc.pdfStore.Remove(pdfPath)
	}
	return nil
}
