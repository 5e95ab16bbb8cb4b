package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
	"github.com/facturio/facturio-api/pkg/logger"
)

// EmailSender envoie un email de relance à un client.
type EmailSender interface {
	SendReminder(to, subject, body string) error
}

// Service parcourt les factures impayées échues et envoie les relances.
// Trois paliers par facture, chacun envoyé au plus une fois : le journal
// des rappels fait foi. Un échec d'envoi est journalisé en "failed" et
// n'interrompt pas la passe.
type Service struct {
	factureRepo repository.FactureRepository
	clientRepo  repository.ClientRepository
	infoRepo    repository.BusinessInfoRepository
	sender      EmailSender
	log         *logger.Logger

	// Formatage des montants en euros à la française (1 234,56 €)
	printer *message.Printer
}

// NewService construit le service de relances.
func NewService(
	factureRepo repository.FactureRepository,
	clientRepo repository.ClientRepository,
	infoRepo repository.BusinessInfoRepository,
	sender EmailSender,
	log *logger.Logger,
) *Service {
	return &Service{
		factureRepo: factureRepo,
		clientRepo:  clientRepo,
		infoRepo:    infoRepo,
		sender:      sender,
		log:         log,
		printer:     message.NewPrinter(language.French),
	}
}

// Run exécute une passe complète de relances : bascule les factures échues
// en retard, puis envoie le prochain palier dû pour chacune. Retourne le
// nombre de relances envoyées.
func (s *Service) Run(ctx context.Context, now time.Time) (int, error) {
	factures, err := s.factureRepo.ListUnpaidDue(now)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("factures_echues", len(factures)).Msg("passe de relances")

	envoyees := 0
	for _, f := range factures {
		select {
		case <-ctx.Done():
			return envoyees, ctx.Err()
		default:
		}

		avant := f.Status
		f.RafraichirRetard(now)
		if f.Status != avant {
			if err := s.factureRepo.Update(f); err != nil {
				s.log.Error().Err(err).Str("facture_id", f.ID).Msg("bascule en retard")
				continue
			}
		}

		info, err := s.infoRepo.GetByUser(f.UserID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", f.UserID).Msg("paramètres introuvables")
			continue
		}
		if info == nil || !info.AutomaticReminders.Enabled {
			continue
		}

		typ := f.ProchainRappel(now,
			info.AutomaticReminders.FirstReminder,
			info.AutomaticReminders.SecondReminder,
			info.AutomaticReminders.ThirdReminder,
		)
		if typ == "" {
			continue
		}

		if err := s.envoyer(f, info, typ, now); err != nil {
			s.log.Error().Err(err).Str("facture_id", f.ID).Str("type", typ).Msg("envoi de la relance")
			f.AjouterRappel(entity.Rappel{Type: typ, Date: now, Status: entity.RappelEchoue})
		} else {
			f.AjouterRappel(entity.Rappel{Type: typ, Date: now, Status: entity.RappelEnvoye})
			envoyees++
		}
		f.UpdatedAt = now
		if err := s.factureRepo.Update(f); err != nil {
			s.log.Error().Err(err).Str("facture_id", f.ID).Msg("journalisation du rappel")
		}
	}

	s.log.Info().Int("envoyees", envoyees).Msg("passe de relances terminée")
	return envoyees, nil
}

func (s *Service) envoyer(f *entity.Facture, info *entity.BusinessInfo, typ string, now time.Time) error {
	client, err := s.clientRepo.GetByID(f.ClientID)
	if err != nil {
		return err
	}
	if client == nil || client.Email == "" {
		return fmt.Errorf("client sans adresse email")
	}

	sujet := fmt.Sprintf("Relance : facture n°%d en attente de règlement", f.InvoiceNumber)
	if typ == entity.RappelTroisieme {
		sujet = fmt.Sprintf("Dernière relance avant mise en demeure : facture n°%d", f.InvoiceNumber)
	}

	corps := fmt.Sprintf(
		"Bonjour %s,\n\n"+
			"Sauf erreur de notre part, la facture n°%d du %s, d'un montant de %s, "+
			"demeure impayée à ce jour (%d jours de retard).\n\n"+
			"Nous vous remercions de procéder à son règlement dans les meilleurs délais.\n\n"+
			"Cordialement,\n%s",
		client.Name,
		f.InvoiceNumber,
		f.DateFacture.Format("02/01/2006"),
		s.euros(f.MontantTTC),
		f.JoursRetard(now),
		info.Name,
	)

	return s.sender.SendReminder(client.Email, sujet, corps)
}

// euros formate un montant en euros à la française.
func (s *Service) euros(montant decimal.Decimal) string {
	val, _ := montant.Float64()
	return s.printer.Sprintf("%.2f €", val)
}
