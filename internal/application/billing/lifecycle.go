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

// MarquerPayee enregistre le paiement d'une facture : statut, date, méthode,
// et une entrée au journal des paiements (montant HT, régime micro-BNC).
func (uc *FactureUseCase) MarquerPayee(ctx context.Context, userID, factureID string, in dto.PaiementRequest) (*entity.Facture, error) {
	var facture *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		_ repository.ClientRepository,
		_ repository.BusinessInfoRepository,
	) error {
		var err error
		facture, err = factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture == nil || facture.UserID != userID {
			return domain.ErrNotFound
		}
		if facture.Status == entity.StatutPayee {
			return fmt.Errorf("%w: facture déjà payée", domain.ErrInvalidState)
		}
		if facture.Status == entity.StatutAnnulee {
			return fmt.Errorf("%w: facture annulée", domain.ErrInvalidState)
		}
		if facture.Locked {
			return fmt.Errorf("%w: facture rectifiée, régler la rectificative", domain.ErrLocked)
		}

		now := time.Now()
		facture.Status = entity.StatutPayee
		facture.DatePaiement = &now
		facture.MethodePaiement = in.MethodePaiement
		facture.CommentairePaiement = in.Commentaire
		facture.AjouterPaiement(entity.Paiement{
			Date:        now,
			Montant:     facture.MontantHT,
			Methode:     in.MethodePaiement,
			Commentaire: in.Commentaire,
		})
		facture.UpdatedAt = now
		if err := factureRepo.Update(facture); err != nil {
			return err
		}
		return prestationRepo.SyncMirror(facture.ID, repository.MirrorUpdate{
			InvoiceStatus:         facture.Status,
			InvoiceIsSentToClient: facture.IsSentToClient,
			InvoiceLocked:         facture.Locked,
			InvoicePaid:           true,
		})
	})
	if err != nil {
		return nil, err
	}
	return facture, nil
}

// MarquerEnvoyee trace l'envoi de la facture au client. Un brouillon envoyé
// devient une facture impayée à part entière.
func (uc *FactureUseCase) MarquerEnvoyee(ctx context.Context, userID, factureID string) (*entity.Facture, error) {
	var facture *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		_ repository.ClientRepository,
		_ repository.BusinessInfoRepository,
	) error {
		var err error
		facture, err = factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture == nil || facture.UserID != userID {
			return domain.ErrNotFound
		}
		if facture.Status == entity.StatutAnnulee {
			return fmt.Errorf("%w: facture annulée", domain.ErrInvalidState)
		}
		if facture.IsSentToClient {
			return fmt.Errorf("%w: facture déjà envoyée", domain.ErrInvalidState)
		}

		now := time.Now()
		facture.IsSentToClient = true
		facture.DateSent = &now
		if facture.Status == entity.StatutBrouillon {
			facture.Status = entity.StatutImpayee
		}
		facture.UpdatedAt = now
		if err := factureRepo.Update(facture); err != nil {
			return err
		}
		return prestationRepo.SyncMirror(facture.ID, repository.MirrorUpdate{
			InvoiceStatus:         facture.Status,
			InvoiceIsSentToClient: true,
			InvoiceLocked:         facture.Locked,
			InvoicePaid:           facture.Status == entity.StatutPayee,
		})
	})
	if err != nil {
		return nil, err
	}
	return facture, nil
}

// Annuler annule une facture non payée. L'annulation d'une rectificative
// rend sa validité à la facture d'origine si aucune autre rectificative
// active ne subsiste.
func (uc *FactureUseCase) Annuler(ctx context.Context, userID, factureID string, in dto.AnnulationRequest) (*entity.Facture, error) {
	if in.Motif == "" {
		return nil, fmt.Errorf("%w: motif d'annulation requis", domain.ErrValidation)
	}

	var facture *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		_ repository.ClientRepository,
		_ repository.BusinessInfoRepository,
	) error {
		var err error
		facture, err = factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if facture == nil || facture.UserID != userID {
			return domain.ErrNotFound
		}
		if facture.Status == entity.StatutPayee {
			return fmt.Errorf("%w: une facture payée ne s'annule pas, émettre un avoir", domain.ErrInvalidState)
		}
		if facture.Status == entity.StatutAnnulee {
			return fmt.Errorf("%w: facture déjà annulée", domain.ErrInvalidState)
		}
		// Toute facture avec une rectificative active en aval est verrouillée
		// (MarquerRectifiee), la garde couvre donc aussi la descendance.
		if facture.Locked {
			return fmt.Errorf("%w: facture rectifiée, annuler d'abord sa rectificative", domain.ErrLocked)
		}

		now := time.Now()
		facture.Status = entity.StatutAnnulee
		facture.Statut = entity.LegalAnnulee
		facture.Locked = true
		facture.Annulation = &entity.Annulation{
			Date:        now,
			Motif:       in.Motif,
			Commentaire: in.Commentaire,
			UserID:      userID,
		}
		facture.UpdatedAt = now
		if err := factureRepo.Update(facture); err != nil {
			return err
		}
		if err := prestationRepo.SyncMirror(facture.ID, repository.MirrorUpdate{
			InvoiceStatus:         facture.Status,
			InvoiceIsSentToClient: facture.IsSentToClient,
			InvoiceLocked:         true,
			InvoicePaid:           false,
		}); err != nil {
			return err
		}

		if !facture.IsRectification || facture.RectificationInfo == nil {
			return nil
		}

		// L'origine retrouve sa validité si plus aucune rectificative
		// active ne la remplace.
		original, err := factureRepo.GetByID(facture.RectificationInfo.OriginalFactureID)
		if err != nil {
			return err
		}
		if original == nil {
			return nil
		}
		actives, err := factureRepo.ListRectificationsOf(userID, original.ID)
		if err != nil {
			return err
		}
		for _, r := range actives {
			if r.ID != facture.ID && r.Statut != entity.LegalAnnulee {
				return nil
			}
		}
		original.RetablirValide()
		original.UpdatedAt = now
		if err := factureRepo.Update(original); err != nil {
			return err
		}
		return prestationRepo.SyncMirror(original.ID, repository.MirrorUpdate{
			InvoiceStatus:         original.Status,
			InvoiceIsSentToClient: original.IsSentToClient,
			InvoiceLocked:         false,
			InvoicePaid:           original.Status == entity.StatutPayee,
		})
	})
	if err != nil {
		return nil, err
	}
	return facture, nil
}

// Dupliquer crée un nouveau brouillon à partir d'une facture existante :
// prestations clonées (détachées de tout historique), nouveau numéro,
// totaux recalculés avec les paramètres courants.
func (uc *FactureUseCase) Dupliquer(ctx context.Context, userID, factureID string) (*entity.Facture, error) {
	var copie *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		clientRepo repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error {
		source, err := factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if source == nil || source.UserID != userID {
			return domain.ErrNotFound
		}
		client, err := clientRepo.GetByID(source.ClientID)
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
		sources, err := prestationRepo.ListByInvoice(source.ID)
		if err != nil {
			return err
		}

		numero, err := infoRepo.NextInvoiceNumber(userID)
		if err != nil {
			return err
		}

		now := time.Now()
		var clones []*entity.Prestation
		for _, p := range sources {
			clone := p.Cloner()
			clone.ID = uuid.New().String()
			clone.OriginalPrestationID = ""
			clone.CreatedAt = now
			clone.UpdatedAt = now
			clone.CalculerTotal()
			clones = append(clones, clone)
		}

		copie = &entity.Facture{
			ID:            uuid.New().String(),
			UserID:        userID,
			ClientID:      source.ClientID,
			DateFacture:   now,
			DateEcheance:  now.AddDate(0, 0, info.DelaiPaiement()),
			InvoiceNumber: numero,
			Year:          source.Year,
			Month:         source.Month,
			Status:        entity.StatutBrouillon,
			Statut:        entity.LegalValide,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		AppliquerTotaux(copie, CalculerTotaux(clones, info))

		for _, p := range clones {
			p.InvoiceID = copie.ID
			p.InvoiceStatus = string(copie.Status)
			copie.PrestationIDs = append(copie.PrestationIDs, p.ID)
			if err := prestationRepo.Create(p); err != nil {
				return err
			}
		}
		if err := factureRepo.Create(copie); err != nil {
			return err
		}

		path, err := uc.genererEtStockerPDF(ctx, copie, client, info, clones)
		if err != nil {
			return err
		}
		copie.PDFPath = path
		return factureRepo.Update(copie)
	})
	if err != nil {
		return nil, err
	}
	return copie, nil
}
