package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

// CreerAvoir émet une note de crédit sur une facture payée. Au plus un avoir
// par facture ; le numéro reprend celui de la facture avec le préfixe
// configuré. Le montant ne peut excéder le montant HT facturé.
func (uc *FactureUseCase) CreerAvoir(ctx context.Context, userID, factureID string, in dto.AvoirRequest) (*entity.Facture, error) {
	if in.Motif == "" {
		return nil, fmt.Errorf("%w: motif de l'avoir requis", domain.ErrValidation)
	}
	if in.Montant.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: le montant de l'avoir doit être positif", domain.ErrValidation)
	}

	var facture *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		clientRepo repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error {
		var err error
		facture, err = factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture == nil || facture.UserID != userID {
			return domain.ErrNotFound
		}
		if facture.Status != entity.StatutPayee {
			return fmt.Errorf("%w: un avoir ne s'émet que sur une facture payée", domain.ErrInvalidState)
		}
		if facture.Avoir != nil {
			return fmt.Errorf("%w: un avoir existe déjà pour cette facture", domain.ErrInvalidState)
		}
		if in.Montant.GreaterThan(facture.MontantHT) {
			return fmt.Errorf("%w: le montant de l'avoir dépasse le montant HT facturé", domain.ErrValidation)
		}

		client, err := clientRepo.GetByID(facture.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrNotFound
		}
		info, err := infoRepo.GetByUser(userID)
		if err != nil {
			return err
		}
		if info == nil {
			return domain.ErrSettingsNotFound
		}

		now := time.Now()
		avoir := &entity.Avoir{
			Date:          now,
			Numero:        fmt.Sprintf("%s%d", info.PrefixeAvoirEffectif(), facture.InvoiceNumber),
			Montant:       in.Montant.Round(2),
			Motif:         in.Motif,
			Remboursement: in.Remboursement,
		}
		if in.Remboursement {
			avoir.MethodePaiement = in.MethodePaiement
			avoir.DateRemboursement = &now
		}
		facture.Avoir = avoir

		data, err := uc.avoirGen.GenerateAvoirPDF(ctx, facture, client, info)
		if err != nil {
			return fmt.Errorf("générer le PDF de l'avoir: %w", err)
		}
		path, err := uc.pdfStore.SaveAvoirPDF(facture, client.Name, data)
		if err != nil {
			return fmt.Errorf("enregistrer le PDF de l'avoir: %w", err)
		}
		avoir.PDFPath = path

		facture.UpdatedAt = now
		return factureRepo.Update(facture)
	})
	if err != nil {
		return nil, err
	}
	return facture, nil
}

// AvoirPDF régénère le PDF de l'avoir d'une facture.
func (uc *FactureUseCase) AvoirPDF(ctx context.Context, userID, factureID string) ([]byte, error) {
	facture, err := uc.GetFacture(ctx, userID, factureID)
	if err != nil {
		return nil, err
	}
	if facture.Avoir == nil {
		return nil, fmt.Errorf("%w: aucun avoir pour cette facture", domain.ErrNotFound)
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
	return uc.avoirGen.GenerateAvoirPDF(ctx, facture, client, info)
}
