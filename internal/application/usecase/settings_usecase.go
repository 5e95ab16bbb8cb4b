package usecase

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

// SettingsUseCase gère les paramètres de facturation : informations de
// l'entreprise, taux, options et numérotation.
type SettingsUseCase struct {
	infoRepo    repository.BusinessInfoRepository
	factureRepo repository.FactureRepository
}

func NewSettingsUseCase(infoRepo repository.BusinessInfoRepository, factureRepo repository.FactureRepository) *SettingsUseCase {
	return &SettingsUseCase{infoRepo: infoRepo, factureRepo: factureRepo}
}

// GetBusinessInfo retourne les paramètres de l'utilisateur, initialisés aux
// valeurs par défaut au premier accès.
func (uc *SettingsUseCase) GetBusinessInfo(ctx context.Context, userID string) (*entity.BusinessInfo, error) {
	info, err := uc.infoRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if info != nil {
		return info, nil
	}

	now := time.Now()
	info = &entity.BusinessInfo{
		ID:                 uuid.New().String(),
		UserID:             userID,
		InvoiceNumberStart: 1,
		InvoiceStatus: entity.FeatureInvoiceStatus{
			Enabled:      true,
			PaymentDelay: entity.DelaiPaiementDefaut,
		},
		AutomaticReminders: entity.FeatureReminders{
			FirstReminder:  7,
			SecondReminder: 15,
			ThirdReminder:  30,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.infoRepo.Save(info); err != nil {
		return nil, err
	}
	return info, nil
}

// ModifierBusinessInfo applique une mise à jour partielle des paramètres.
func (uc *SettingsUseCase) ModifierBusinessInfo(ctx context.Context, userID string, in dto.BusinessInfoRequest) (*entity.BusinessInfo, error) {
	info, err := uc.GetBusinessInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		info.Name = in.Name
	}
	if in.Address != "" {
		info.Address = in.Address
	}
	if in.PostalCode != "" {
		info.PostalCode = in.PostalCode
	}
	if in.City != "" {
		info.City = in.City
	}
	if in.Phone != "" {
		info.Phone = in.Phone
	}
	if in.Email != "" {
		info.Email = in.Email
	}
	if in.Siret != "" {
		info.Siret = in.Siret
	}
	if in.CompanyType != "" {
		info.CompanyType = in.CompanyType
	}
	if in.TaxeURSSAF != nil {
		info.TaxeURSSAF = *in.TaxeURSSAF
	}
	if in.TauxTVA != nil {
		info.TauxTVA = *in.TauxTVA
	}
	if in.PrefixeAvoir != nil {
		info.PrefixeAvoir = *in.PrefixeAvoir
	}
	if in.MentionTVA != nil {
		info.MentionTVA = *in.MentionTVA
	}
	if in.InvoiceStatus != nil {
		info.InvoiceStatus = *in.InvoiceStatus
	}
	if in.AutomaticReminders != nil {
		info.AutomaticReminders = *in.AutomaticReminders
	}
	if in.Display != nil {
		info.Display = *in.Display
	}
	info.UpdatedAt = time.Now()

	if err := uc.infoRepo.Save(info); err != nil {
		return nil, err
	}
	return info, nil
}

// GetInvoiceSettings retourne les paramètres de numérotation.
func (uc *SettingsUseCase) GetInvoiceSettings(ctx context.Context, userID string) (*dto.InvoiceSettingsResponse, error) {
	info, err := uc.GetBusinessInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceSettingsResponse{
		InvoiceTitle:         info.InvoiceTitle,
		InvoiceNumberStart:   info.InvoiceNumberStart,
		CurrentInvoiceNumber: info.CurrentInvoiceNumber,
	}, nil
}

// ModifierInvoiceSettings met à jour la numérotation. La valeur de départ
// doit dépasser le dernier numéro déjà émis : la séquence ne revient jamais
// en arrière.
func (uc *SettingsUseCase) ModifierInvoiceSettings(ctx context.Context, userID string, in dto.InvoiceSettingsRequest) (*dto.InvoiceSettingsResponse, error) {
	info, err := uc.GetBusinessInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.InvoiceNumberStart != nil {
		dernier, err := uc.factureRepo.LastInvoiceNumber(userID)
		if err != nil {
			return nil, err
		}
		if *in.InvoiceNumberStart <= dernier {
			return nil, fmt.Errorf("%w: la valeur de départ doit dépasser le dernier numéro émis (%d)", domain.ErrValidation, dernier)
		}
		info.InvoiceNumberStart = *in.InvoiceNumberStart
	}
	if in.InvoiceTitle != nil {
		info.InvoiceTitle = *in.InvoiceTitle
	}
	info.UpdatedAt = time.Now()

	if err := uc.infoRepo.Save(info); err != nil {
		return nil, err
	}
	return &dto.InvoiceSettingsResponse{
		InvoiceTitle:         info.InvoiceTitle,
		InvoiceNumberStart:   info.InvoiceNumberStart,
		CurrentInvoiceNumber: info.CurrentInvoiceNumber,
	}, nil
}
