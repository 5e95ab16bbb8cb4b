package prestation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

var typesFacturation = map[string]bool{
	entity.BillingHourly: true,
	entity.BillingFixed:  true,
	entity.BillingDaily:  true,
}

// UseCase gère le cycle de vie des prestations. Une prestation rattachée à
// une facture payée, verrouillée ou envoyée est figée ; rattachée à une
// facture encore modifiable, toute mutation resynchronise les totaux de la
// facture dans la même transaction.
type UseCase struct {
	txRunner       billing.BillingTxRunner
	prestationRepo repository.PrestationRepository
	clientRepo     repository.ClientRepository
}

// NewUseCase construit le cas d'usage.
func NewUseCase(txRunner billing.BillingTxRunner, prestationRepo repository.PrestationRepository, clientRepo repository.ClientRepository) *UseCase {
	return &UseCase{
		txRunner:       txRunner,
		prestationRepo: prestationRepo,
		clientRepo:     clientRepo,
	}
}

// CreerPrestation enregistre une unité de travail facturable.
func (uc *UseCase) CreerPrestation(ctx context.Context, userID string, in dto.PrestationRequest) (*entity.Prestation, error) {
	if in.Description == "" || in.ClientID == "" {
		return nil, fmt.Errorf("%w: description et client requis", domain.ErrValidation)
	}
	if !typesFacturation[in.BillingType] {
		return nil, fmt.Errorf("%w: type de facturation inconnu %q", domain.ErrValidation, in.BillingType)
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.UserID != userID {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	p := &entity.Prestation{
		ID:          uuid.New().String(),
		UserID:      userID,
		ClientID:    in.ClientID,
		Description: in.Description,
		BillingType: in.BillingType,
		// Les heures saisies en heures + minutes sont normalisées en décimal
		Hours:        in.Hours.Add(in.Minutes.Div(decimal.NewFromInt(60))),
		HourlyRate:   in.HourlyRate,
		FixedPrice:   in.FixedPrice,
		Quantity:     in.Quantity,
		Duration:     in.Duration,
		DurationUnit: in.DurationUnit,
		Date:         now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Date != nil {
		p.Date = *in.Date
	}
	p.CalculerTotal()

	if err := uc.prestationRepo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPrestation retourne une prestation de l'utilisateur.
func (uc *UseCase) GetPrestation(ctx context.Context, userID, id string) (*entity.Prestation, error) {
	p, err := uc.prestationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListPrestations liste les prestations de l'utilisateur, filtrées par
// période si year/month sont renseignés.
func (uc *UseCase) ListPrestations(ctx context.Context, userID string, year, month int) ([]*entity.Prestation, error) {
	return uc.prestationRepo.ListByUser(userID, year, month)
}

// ModifierPrestation met à jour une prestation non figée et recalcule son
// total. Si la prestation est rattachée à une facture encore modifiable, les
// totaux de la facture sont resynchronisés dans la même transaction.
func (uc *UseCase) ModifierPrestation(ctx context.Context, userID, id string, in dto.PrestationRequest) (*entity.Prestation, error) {
	if !typesFacturation[in.BillingType] {
		return nil, fmt.Errorf("%w: type de facturation inconnu %q", domain.ErrValidation, in.BillingType)
	}

	var prestation *entity.Prestation
	err := uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		_ repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error {
		var err error
		prestation, err = prestationRepo.GetByID(id)
		if err != nil {
			return err
		}
		if prestation == nil || prestation.UserID != userID {
			return domain.ErrNotFound
		}
		if prestation.EstVerrouillee() {
			return fmt.Errorf("%w: prestation figée par sa facture", domain.ErrLocked)
		}

		now := time.Now()
		if in.Description != "" {
			prestation.Description = in.Description
		}
		prestation.BillingType = in.BillingType
		prestation.Hours = in.Hours.Add(in.Minutes.Div(decimal.NewFromInt(60)))
		prestation.HourlyRate = in.HourlyRate
		prestation.FixedPrice = in.FixedPrice
		prestation.Quantity = in.Quantity
		prestation.Duration = in.Duration
		prestation.DurationUnit = in.DurationUnit
		if in.Date != nil {
			prestation.Date = *in.Date
		}
		prestation.CalculerTotal()
		prestation.UpdatedAt = now
		if err := prestationRepo.Update(prestation); err != nil {
			return err
		}
		return resyncFacture(prestationRepo, factureRepo, infoRepo, prestation.InvoiceID, userID, now)
	})
	if err != nil {
		return nil, err
	}
	return prestation, nil
}

// SupprimerPrestation supprime une prestation non figée, avec resynchro des
// totaux de la facture si elle y était rattachée.
func (uc *UseCase) SupprimerPrestation(ctx context.Context, userID, id string) error {
	return uc.txRunner.RunBilling(ctx, func(
		prestationRepo repository.PrestationRepository,
		factureRepo repository.FactureRepository,
		_ repository.ClientRepository,
		infoRepo repository.BusinessInfoRepository,
	) error {
		prestation, err := prestationRepo.GetByID(id)
		if err != nil {
			return err
		}
		if prestation == nil || prestation.UserID != userID {
			return domain.ErrNotFound
		}
		if prestation.EstVerrouillee() {
			return fmt.Errorf("%w: prestation figée par sa facture", domain.ErrLocked)
		}
		if err := prestationRepo.Delete(id); err != nil {
			return err
		}
		return resyncFacture(prestationRepo, factureRepo, infoRepo, prestation.InvoiceID, userID, time.Now())
	})
}

// resyncFacture recalcule les totaux d'une facture après mutation d'une de
// ses prestations. Sans rattachement, ne fait rien.
func resyncFacture(
	prestationRepo repository.PrestationRepository,
	factureRepo repository.FactureRepository,
	infoRepo repository.BusinessInfoRepository,
	invoiceID, userID string,
	now time.Time,
) error {
	if invoiceID == "" {
		return nil
	}
	facture, err := factureRepo.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if facture == nil {
		return nil
	}
	info, err := infoRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if info == nil {
		return domain.ErrSettingsNotFound
	}
	prestations, err := prestationRepo.ListByInvoice(invoiceID)
	if err != nil {
		return err
	}
	facture.PrestationIDs = facture.PrestationIDs[:0]
	for _, p := range prestations {
		facture.PrestationIDs = append(facture.PrestationIDs, p.ID)
	}
	billing.AppliquerTotaux(facture, billing.CalculerTotaux(prestations, info))
	facture.UpdatedAt = now
	return factureRepo.Update(facture)
}
