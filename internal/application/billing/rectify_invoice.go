package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var motifsLegaux = map[string]bool{
	entity.MotifErreurMontant:       true,
	entity.MotifErreurTaux:          true,
	entity.MotifPrestationManquante: true,
	entity.MotifPrestationSupprimee: true,
	entity.MotifRemiseCommerciale:   true,
	entity.MotifAutre:               true,
}

// RectifierFacture émet une facture rectificative : l'origine est verrouillée
// et conservée intacte, les prestations retenues sont clonées (jamais mutées),
// et la rectificative porte le diff ligne à ligne, les écarts de totaux et la
// chaîne complète de ses ancêtres.
func (uc *FactureUseCase) RectifierFacture(ctx context.Context, userID, factureID string, in dto.RectifyRequest) (*entity.Facture, error) {
	if !motifsLegaux[in.MotifLegal] {
		return nil, fmt.Errorf("%w: motif légal inconnu %q", domain.ErrValidation, in.MotifLegal)
	}
	if len(in.Prestations) == 0 {
		return nil, fmt.Errorf("%w: une rectificative doit contenir au moins une prestation", domain.ErrValidation)
	}

	var rectificative *entity.Facture
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		clientRepo repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error {
		original, err := factureRepo.GetByID(factureID)
		if err != nil {
			return err
		}
		if original == nil || original.UserID != userID {
			return domain.ErrNotFound
		}
		if original.Status == entity.StatutPayee {
			return fmt.Errorf("%w: une facture payée ne se rectifie pas, émettre un avoir", domain.ErrInvalidState)
		}
		if original.Locked {
			return fmt.Errorf("%w: facture déjà rectifiée ou annulée", domain.ErrLocked)
		}

		client, err := clientRepo.GetByID(original.ClientID)
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

		anciennes, err := prestationRepo.ListByInvoice(original.ID)
		if err != nil {
			return err
		}
		parID := make(map[string]*entity.Prestation, len(anciennes))
		for _, p := range anciennes {
			parID[p.ID] = p
		}

		now := time.Now()
		var nouvelles []*entity.Prestation
		var diffs []entity.PrestationDiff
		retenues := make(map[string]bool, len(in.Prestations))

		for _, spec := range in.Prestations {
			if estNouvelleLigne(spec.ID) {
				ajout, err := prestationDepuisSpec(userID, original.ClientID, spec, now)
				if err != nil {
					return err
				}
				nouvelles = append(nouvelles, ajout)
				diffs = append(diffs, entity.PrestationDiff{
					Type:  entity.DiffAjoutee,
					Apres: snapshot(ajout),
				})
				continue
			}

			origine, ok := parID[spec.ID]
			if !ok {
				return fmt.Errorf("%w: la prestation %s n'appartient pas à cette facture", domain.ErrValidation, spec.ID)
			}
			retenues[spec.ID] = true

			clone := origine.Cloner()
			clone.ID = uuid.New().String()
			clone.CreatedAt = now
			clone.UpdatedAt = now
			appliquerSpec(clone, spec)
			clone.CalculerTotal()
			nouvelles = append(nouvelles, clone)

			if !memeContenu(origine, clone) {
				diffs = append(diffs, entity.PrestationDiff{
					Type:  entity.DiffModifiee,
					Avant: snapshot(origine),
					Apres: snapshot(clone),
				})
			}

			// L'original est marqué remplacé, jamais modifié ni supprimé
			origine.IsReplaced = true
			origine.ReplacedByPrestationID = clone.ID
			origine.UpdatedAt = now
			if err := prestationRepo.Update(origine); err != nil {
				return err
			}
		}

		for _, p := range anciennes {
			if retenues[p.ID] {
				continue
			}
			diffs = append(diffs, entity.PrestationDiff{
				Type:  entity.DiffSupprimee,
				Avant: snapshot(p),
			})
			p.IsReplaced = true
			p.UpdatedAt = now
			if err := prestationRepo.Update(p); err != nil {
				return err
			}
		}

		numero, err := infoRepo.NextInvoiceNumber(userID)
		if err != nil {
			return err
		}

		// La chaîne liste les ancêtres du plus ancien au plus récent et ne
		// fait que croître en queue.
		var chaine []string
		if original.IsRectification && original.RectificationInfo != nil {
			chaine = append(chaine, original.RectificationInfo.Chaine...)
		}
		chaine = append(chaine, original.ID)

		totaux := CalculerTotaux(nouvelles, info)
		rectificative = &entity.Facture{
			ID:              uuid.New().String(),
			UserID:          userID,
			ClientID:        original.ClientID,
			DateFacture:     now,
			DateEcheance:    now.AddDate(0, 0, info.DelaiPaiement()),
			InvoiceNumber:   numero,
			Year:            original.Year,
			Month:           original.Month,
			Status:          entity.StatutImpayee,
			Statut:          entity.LegalValide,
			IsRectification: true,
			RectificationInfo: &entity.RectificationInfo{
				OriginalFactureID:     original.ID,
				OriginalInvoiceNumber: original.InvoiceNumber,
				Chaine:                chaine,
				MotifLegal:            in.MotifLegal,
				MotifDetail:           in.MotifDetail,
				PrestationsModifiees:  diffs,
				DifferenceMontantHT:   totaux.MontantHT.Sub(original.MontantHT),
				DifferenceTaxeURSSAF:  totaux.TaxeURSSAF.Sub(original.TaxeURSSAF),
				DifferenceMontantNet:  totaux.MontantNet.Sub(original.MontantNet),
				DifferenceMontantTVA:  totaux.MontantTVA.Sub(original.MontantTVA),
				DifferenceMontantTTC:  totaux.MontantTTC.Sub(original.MontantTTC),
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		AppliquerTotaux(rectificative, totaux)

		for _, p := range nouvelles {
			p.InvoiceID = rectificative.ID
			p.InvoiceStatus = string(rectificative.Status)
			rectificative.PrestationIDs = append(rectificative.PrestationIDs, p.ID)
			if err := prestationRepo.Create(p); err != nil {
				return err
			}
		}
		if err := factureRepo.Create(rectificative); err != nil {
			return err
		}

		// Verrouillage de l'origine : statut légal, journal de versions,
		// journal des rectifications, puis miroir sur ses prestations.
		original.AjouterVersion(now, in.MotifDetail)
		original.AjouterRectification(entity.RectificationRef{
			FactureID: rectificative.ID,
			Date:      now,
			Motif:     in.MotifLegal,
		})
		original.MarquerRectifiee()
		original.UpdatedAt = now
		if err := factureRepo.Update(original); err != nil {
			return err
		}
		if err := prestationRepo.SyncMirror(original.ID, repository.MirrorUpdate{
			InvoiceStatus:         original.Status,
			InvoiceIsSentToClient: original.IsSentToClient,
			InvoiceLocked:         true,
			InvoicePaid:           original.Status == entity.StatutPayee,
		}); err != nil {
			return err
		}

		path, err := uc.genererEtStockerPDF(ctx, rectificative, client, info, nouvelles)
		if err != nil {
			return err
		}
		rectificative.PDFPath = path
		return factureRepo.Update(rectificative)
	})
	if err != nil {
		return nil, err
	}
	return rectificative, nil
}

func estNouvelleLigne(id string) bool {
	return id == "" || strings.HasPrefix(id, "temp-")
}

// prestationDepuisSpec construit une prestation neuve à partir d'une ligne
// ajoutée lors d'une rectification.
func prestationDepuisSpec(userID, clientID string, spec dto.PrestationSpec, now time.Time) (*entity.Prestation, error) {
	if spec.Description == nil || *spec.Description == "" {
		return nil, fmt.Errorf("%w: description requise pour une prestation ajoutée", domain.ErrValidation)
	}
	if spec.BillingType == nil {
		return nil, fmt.Errorf("%w: billingType requis pour une prestation ajoutée", domain.ErrValidation)
	}
	p := &entity.Prestation{
		ID:          uuid.New().String(),
		UserID:      userID,
		ClientID:    clientID,
		Description: *spec.Description,
		BillingType: *spec.BillingType,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if spec.Hours != nil {
		p.Hours = *spec.Hours
	}
	if spec.HourlyRate != nil {
		p.HourlyRate = *spec.HourlyRate
	}
	if spec.FixedPrice != nil {
		p.FixedPrice = *spec.FixedPrice
	}
	if spec.Quantity != nil {
		p.Quantity = *spec.Quantity
	}
	if spec.Duration != nil {
		p.Duration = *spec.Duration
	}
	if spec.DurationUnit != nil {
		p.DurationUnit = *spec.DurationUnit
	}
	if spec.Date != nil {
		p.Date = *spec.Date
	}
	p.CalculerTotal()
	return p, nil
}

// appliquerSpec écrase sur le clone les seuls champs fournis (non nil).
func appliquerSpec(clone *entity.Prestation, spec dto.PrestationSpec) {
	if spec.Description != nil {
		clone.Description = *spec.Description
	}
	if spec.BillingType != nil {
		clone.BillingType = *spec.BillingType
	}
	if spec.Hours != nil {
		clone.Hours = *spec.Hours
	}
	if spec.HourlyRate != nil {
		clone.HourlyRate = *spec.HourlyRate
	}
	if spec.FixedPrice != nil {
		clone.FixedPrice = *spec.FixedPrice
	}
	if spec.Quantity != nil {
		clone.Quantity = *spec.Quantity
	}
	if spec.Duration != nil {
		clone.Duration = *spec.Duration
	}
	if spec.DurationUnit != nil {
		clone.DurationUnit = *spec.DurationUnit
	}
	if spec.Date != nil {
		clone.Date = *spec.Date
	}
}

func snapshot(p *entity.Prestation) *entity.PrestationSnapshot {
	return &entity.PrestationSnapshot{
		PrestationID: p.ID,
		Description:  p.Description,
		BillingType:  p.BillingType,
		Hours:        p.Hours,
		HourlyRate:   p.HourlyRate,
		FixedPrice:   p.FixedPrice,
		Quantity:     p.Quantity,
		Duration:     p.Duration,
		DurationUnit: p.DurationUnit,
		Total:        p.Total,
		Date:         p.Date,
	}
}

// memeContenu compare les champs facturables de deux prestations.
func memeContenu(a, b *entity.Prestation) bool {
	return a.Description == b.Description &&
		a.BillingType == b.BillingType &&
		a.Hours.Equal(b.Hours) &&
		a.HourlyRate.Equal(b.HourlyRate) &&
		a.FixedPrice.Equal(b.FixedPrice) &&
		a.Quantity == b.Quantity &&
		a.Duration == b.Duration &&
		a.Total.Equal(b.Total)
}
