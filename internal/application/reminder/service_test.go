package reminder_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio-api/internal/application/reminder"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
	"github.com/facturio/facturio-api/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Doubles en mémoire.
// ──────────────────────────────────────────────────────────────────────────────

type memFactures struct{ items map[string]*entity.Facture }

func (r *memFactures) Create(f *entity.Facture) error { r.items[f.ID] = f; return nil }
func (r *memFactures) GetByID(id string) (*entity.Facture, error) { return r.items[id], nil }
func (r *memFactures) GetByClientAndPeriod(u, c string, y, m int) (*entity.Facture, error) {
	return nil, nil
}
func (r *memFactures) Update(f *entity.Facture) error { r.items[f.ID] = f; return nil }
func (r *memFactures) Delete(id string) error { delete(r.items, id); return nil }
func (r *memFactures) List(u string, f repository.FactureFilter) ([]*entity.Facture, error) {
	return nil, nil
}
func (r *memFactures) LastInvoiceNumber(u string) (int, error) { return 0, nil }
func (r *memFactures) ListByChainMember(u, f string) ([]*entity.Facture, error) {
	return nil, nil
}
func (r *memFactures) ListRectificationsOf(u, o string) ([]*entity.Facture, error) {
	return nil, nil
}

func (r *memFactures) ListUnpaidDue(now time.Time) ([]*entity.Facture, error) {
	var out []*entity.Facture
	for _, f := range r.items {
		if (f.Status == entity.StatutImpayee || f.Status == entity.StatutEnRetard) &&
			!f.Locked && f.DateEcheance.Before(now) {
			out = append(out, f)
		}
	}
	return out, nil
}

type memClients struct{ items map[string]*entity.Client }

func (r *memClients) Create(c *entity.Client) error { r.items[c.ID] = c; return nil }
func (r *memClients) GetByID(id string) (*entity.Client, error) { return r.items[id], nil }
func (r *memClients) GetByUserAndEmail(u, e string) (*entity.Client, error) { return nil, nil }
func (r *memClients) ListByUser(u string) ([]*entity.Client, error) { return nil, nil }
func (r *memClients) Update(c *entity.Client) error { r.items[c.ID] = c; return nil }
func (r *memClients) Delete(id string) error { delete(r.items, id); return nil }

type memInfos struct{ items map[string]*entity.BusinessInfo }

func (r *memInfos) GetByUser(userID string) (*entity.BusinessInfo, error) {
	return r.items[userID], nil
}
func (r *memInfos) Save(i *entity.BusinessInfo) error { r.items[i.UserID] = i; return nil }
func (r *memInfos) NextInvoiceNumber(u string) (int, error) { return 0, nil }

type envoi struct {
	to      string
	subject string
	body    string
}

type memSender struct {
	envois []envoi
	echoue bool
}

func (s *memSender) SendReminder(to, subject, body string) error {
	if s.echoue {
		return fmt.Errorf("smtp indisponible")
	}
	s.envois = append(s.envois, envoi{to: to, subject: subject, body: body})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Environnement.
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	svc      *reminder.Service
	factures *memFactures
	clients  *memClients
	infos    *memInfos
	sender   *memSender
}

func newEnv() *env {
	e := &env{
		factures: &memFactures{items: map[string]*entity.Facture{}},
		clients:  &memClients{items: map[string]*entity.Client{}},
		infos:    &memInfos{items: map[string]*entity.BusinessInfo{}},
		sender:   &memSender{},
	}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	e.svc = reminder.NewService(e.factures, e.clients, e.infos, e.sender, log)

	e.clients.items["c1"] = &entity.Client{
		ID: "c1", UserID: "u1", Name: "Studio Lumière", Email: "compta@studio.fr",
	}
	e.infos.items["u1"] = &entity.BusinessInfo{
		ID: "i1", UserID: "u1", Name: "Jean Dupont EI",
		AutomaticReminders: entity.FeatureReminders{
			Enabled:        true,
			FirstReminder:  7,
			SecondReminder: 15,
			ThirdReminder:  30,
		},
	}
	return e
}

func date(j string) time.Time {
	t, _ := time.Parse("2006-01-02", j)
	return t
}

func (e *env) seedFacture(id string, echeance time.Time) *entity.Facture {
	f := &entity.Facture{
		ID:            id,
		UserID:        "u1",
		ClientID:      "c1",
		InvoiceNumber: 12,
		DateFacture:   echeance.AddDate(0, 0, -30),
		DateEcheance:  echeance,
		MontantHT:     dec("150"),
		MontantTTC:    dec("150"),
		Status:        entity.StatutImpayee,
		Statut:        entity.LegalValide,
	}
	e.factures.items[id] = f
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests.
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_PremierRappel(t *testing.T) {
	e := newEnv()
	f := e.seedFacture("f1", date("2026-01-10"))

	// 10 jours de retard : le premier palier (7 j) est dû.
	n, err := e.svc.Run(context.Background(), date("2026-01-20"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, e.sender.envois, 1)
	assert.Equal(t, "compta@studio.fr", e.sender.envois[0].to)
	assert.Contains(t, e.sender.envois[0].subject, "facture n°12")
	assert.Contains(t, e.sender.envois[0].body, "Studio Lumière")

	assert.Equal(t, entity.StatutEnRetard, f.Status, "l'impayée échue bascule en retard")
	require.Len(t, f.Rappels, 1)
	assert.Equal(t, entity.RappelPremier, f.Rappels[0].Type)
	assert.Equal(t, entity.RappelEnvoye, f.Rappels[0].Status)
}

func TestRun_PalierDejaEnvoyeNonRepete(t *testing.T) {
	e := newEnv()
	f := e.seedFacture("f1", date("2026-01-10"))
	f.AjouterRappel(entity.Rappel{Type: entity.RappelPremier, Date: date("2026-01-18"), Status: entity.RappelEnvoye})

	// 10 jours de retard : premier déjà parti, deuxième pas encore dû.
	n, err := e.svc.Run(context.Background(), date("2026-01-20"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, e.sender.envois)
}

func TestRun_TroisiemeRappelMiseEnDemeure(t *testing.T) {
	e := newEnv()
	f := e.seedFacture("f1", date("2026-01-10"))
	f.AjouterRappel(entity.Rappel{Type: entity.RappelPremier})
	f.AjouterRappel(entity.Rappel{Type: entity.RappelDeuxieme})

	n, err := e.svc.Run(context.Background(), date("2026-02-15"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, e.sender.envois, 1)
	assert.Contains(t, e.sender.envois[0].subject, "Dernière relance avant mise en demeure")
}

func TestRun_RelancesDesactivees(t *testing.T) {
	e := newEnv()
	e.seedFacture("f1", date("2026-01-10"))
	e.infos.items["u1"].AutomaticReminders.Enabled = false

	n, err := e.svc.Run(context.Background(), date("2026-02-15"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, e.sender.envois)
}

func TestRun_EchecDEnvoiJournalise(t *testing.T) {
	e := newEnv()
	f := e.seedFacture("f1", date("2026-01-10"))
	e.sender.echoue = true

	n, err := e.svc.Run(context.Background(), date("2026-01-20"))
	require.NoError(t, err, "un échec d'envoi n'interrompt pas la passe")
	assert.Equal(t, 0, n)

	require.Len(t, f.Rappels, 1)
	assert.Equal(t, entity.RappelEchoue, f.Rappels[0].Status, "l'échec est tracé au journal")
}

func TestRun_FacturePayeeIgnoree(t *testing.T) {
	e := newEnv()
	f := e.seedFacture("f1", date("2026-01-10"))
	f.Status = entity.StatutPayee

	n, err := e.svc.Run(context.Background(), date("2026-02-15"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
