package billing

import (
	"context"
	"sort"

	"github.com/facturio/facturio-api/internal/application/dto"
	"github.com/facturio/facturio-api/internal/domain"
)

// ChaineRectification reconstitue la lignée complète d'une facture : ses
// ancêtres (du plus ancien au plus récent) et ses rectificatives en aval,
// triées par numéro croissant.
func (uc *FactureUseCase) ChaineRectification(ctx context.Context, userID, factureID string) (*dto.ChaineResponse, error) {
	facture, err := uc.factureRepo.GetByID(factureID)
	if err != nil {
		return nil, err
	}
	if facture == nil || facture.UserID != userID {
		return nil, domain.ErrNotFound
	}

	resp := &dto.ChaineResponse{}

	if facture.IsRectification && facture.RectificationInfo != nil {
		for _, id := range facture.RectificationInfo.Chaine {
			ancetre, err := uc.factureRepo.GetByID(id)
			if err != nil {
				return nil, err
			}
			if ancetre != nil {
				resp.Ancetres = append(resp.Ancetres, ancetre)
			}
		}
	}

	descendants, err := uc.factureRepo.ListByChainMember(userID, facture.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(descendants, func(i, j int) bool {
		return descendants[i].InvoiceNumber < descendants[j].InvoiceNumber
	})
	resp.Descendants = descendants

	return resp, nil
}
