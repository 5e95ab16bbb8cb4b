package billing_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/domain/entity"
	"github.com/facturio/facturio-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doubles en mémoire des ports de persistance. Les pointeurs sont partagés :
// une mutation suivie d'Update est visible immédiatement, comme avec une
// transaction qui relit ses propres écritures.
// ──────────────────────────────────────────────────────────────────────────────

type fakeClientRepo struct {
	items map[string]*entity.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{items: map[string]*entity.Client{}}
}

func (r *fakeClientRepo) Create(c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.items[c.ID] = c
	return nil
}

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.items[id], nil
}

func (r *fakeClientRepo) GetByUserAndEmail(userID, email string) (*entity.Client, error) {
	for _, c := range r.items {
		if c.UserID == userID && c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) ListByUser(userID string) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeClientRepo) Update(c *entity.Client) error { r.items[c.ID] = c; return nil }
func (r *fakeClientRepo) Delete(id string) error { delete(r.items, id); return nil }

type fakePrestationRepo struct {
	items map[string]*entity.Prestation
}

func newFakePrestationRepo() *fakePrestationRepo {
	return &fakePrestationRepo{items: map[string]*entity.Prestation{}}
}

func (r *fakePrestationRepo) Create(p *entity.Prestation) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.items[p.ID] = p
	return nil
}

func (r *fakePrestationRepo) GetByID(id string) (*entity.Prestation, error) {
	return r.items[id], nil
}

func (r *fakePrestationRepo) Update(p *entity.Prestation) error { r.items[p.ID] = p; return nil }
func (r *fakePrestationRepo) Delete(id string) error { delete(r.items, id); return nil }

func (r *fakePrestationRepo) ListByUser(userID string, year, month int) ([]*entity.Prestation, error) {
	var out []*entity.Prestation
	for _, p := range r.items {
		if p.UserID != userID {
			continue
		}
		if year > 0 && p.Date.Year() != year {
			continue
		}
		if month > 0 && int(p.Date.Month()) != month {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakePrestationRepo) ListUnattachedForPeriod(userID, clientID string, start, end time.Time) ([]*entity.Prestation, error) {
	var out []*entity.Prestation
	for _, p := range r.items {
		if p.UserID != userID || p.ClientID != clientID {
			continue
		}
		if p.InvoiceID != "" || p.IsReplaced {
			continue
		}
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakePrestationRepo) ListByInvoice(invoiceID string) ([]*entity.Prestation, error) {
	var out []*entity.Prestation
	for _, p := range r.items {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakePrestationRepo) AttachToInvoice(ids []string, invoiceID string, mirror repository.MirrorUpdate) error {
	for _, id := range ids {
		p, ok := r.items[id]
		if !ok {
			return fmt.Errorf("prestation %s inconnue", id)
		}
		p.InvoiceID = invoiceID
		appliquerMiroir(p, mirror)
	}
	return nil
}

func (r *fakePrestationRepo) DetachFromInvoice(invoiceID string) error {
	for _, p := range r.items {
		if p.InvoiceID == invoiceID {
			p.InvoiceID = ""
			p.InvoiceStatus = ""
			p.InvoiceIsSentToClient = false
			p.InvoiceLocked = false
			p.InvoicePaid = false
		}
	}
	return nil
}

func (r *fakePrestationRepo) SyncMirror(invoiceID string, mirror repository.MirrorUpdate) error {
	for _, p := range r.items {
		if p.InvoiceID == invoiceID {
			appliquerMiroir(p, mirror)
		}
	}
	return nil
}

func appliquerMiroir(p *entity.Prestation, m repository.MirrorUpdate) {
	p.InvoiceStatus = string(m.InvoiceStatus)
	p.InvoiceIsSentToClient = m.InvoiceIsSentToClient
	p.InvoiceLocked = m.InvoiceLocked
	p.InvoicePaid = m.InvoicePaid
}

type fakeFactureRepo struct {
	items map[string]*entity.Facture
}

func newFakeFactureRepo() *fakeFactureRepo {
	return &fakeFactureRepo{items: map[string]*entity.Facture{}}
}

func (r *fakeFactureRepo) Create(f *entity.Facture) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	for _, e := range r.items {
		if e.UserID == f.UserID && e.InvoiceNumber == f.InvoiceNumber {
			return fmt.Errorf("invoice number already exists")
		}
	}
	r.items[f.ID] = f
	return nil
}

func (r *fakeFactureRepo) GetByID(id string) (*entity.Facture, error) {
	return r.items[id], nil
}

func (r *fakeFactureRepo) GetByClientAndPeriod(userID, clientID string, year, month int) (*entity.Facture, error) {
	for _, f := range r.items {
		if f.UserID == userID && f.ClientID == clientID && f.Year == year && f.Month == month &&
			f.Statut != entity.LegalAnnulee && !f.IsRectification {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFactureRepo) Update(f *entity.Facture) error { r.items[f.ID] = f; return nil }
func (r *fakeFactureRepo) Delete(id string) error { delete(r.items, id); return nil }

func (r *fakeFactureRepo) List(userID string, filter repository.FactureFilter) ([]*entity.Facture, error) {
	var out []*entity.Facture
	for _, f := range r.items {
		if f.UserID != userID {
			continue
		}
		if filter.Year > 0 && f.Year != filter.Year {
			continue
		}
		if filter.Month > 0 && f.Month != filter.Month {
			continue
		}
		if filter.ClientID != "" && f.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber > out[j].InvoiceNumber })
	return out, nil
}

func (r *fakeFactureRepo) LastInvoiceNumber(userID string) (int, error) {
	max := 0
	for _, f := range r.items {
		if f.UserID == userID && f.InvoiceNumber > max {
			max = f.InvoiceNumber
		}
	}
	return max, nil
}

func (r *fakeFactureRepo) ListByChainMember(userID, factureID string) ([]*entity.Facture, error) {
	var out []*entity.Facture
	for _, f := range r.items {
		if f.UserID != userID || !f.IsRectification || f.RectificationInfo == nil {
			continue
		}
		for _, id := range f.RectificationInfo.Chaine {
			if id == factureID {
				out = append(out, f)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, nil
}

func (r *fakeFactureRepo) ListRectificationsOf(userID, originalID string) ([]*entity.Facture, error) {
	var out []*entity.Facture
	for _, f := range r.items {
		if f.UserID == userID && f.IsRectification && f.RectificationInfo != nil &&
			f.RectificationInfo.OriginalFactureID == originalID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, nil
}

func (r *fakeFactureRepo) ListUnpaidDue(now time.Time) ([]*entity.Facture, error) {
	var out []*entity.Facture
	for _, f := range r.items {
		if (f.Status == entity.StatutImpayee || f.Status == entity.StatutEnRetard) &&
			!f.Locked && f.DateEcheance.Before(now) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateEcheance.Before(out[j].DateEcheance) })
	return out, nil
}

type fakeInfoRepo struct {
	items map[string]*entity.BusinessInfo
}

func newFakeInfoRepo() *fakeInfoRepo {
	return &fakeInfoRepo{items: map[string]*entity.BusinessInfo{}}
}

func (r *fakeInfoRepo) GetByUser(userID string) (*entity.BusinessInfo, error) {
	return r.items[userID], nil
}

func (r *fakeInfoRepo) Save(info *entity.BusinessInfo) error {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	r.items[info.UserID] = info
	return nil
}

// NextInvoiceNumber reproduit la sémantique SQL :
// max(valeur de départ, compteur courant + 1).
func (r *fakeInfoRepo) NextInvoiceNumber(userID string) (int, error) {
	info, ok := r.items[userID]
	if !ok {
		return 0, fmt.Errorf("business info not found for user %s", userID)
	}
	n := info.CurrentInvoiceNumber + 1
	if n < info.InvoiceNumberStart {
		n = info.InvoiceNumberStart
	}
	info.CurrentInvoiceNumber = n
	return n, nil
}

// fakeTxRunner exécute fn sans transaction réelle, sur les mêmes dépôts.
type fakeTxRunner struct {
	prestations *fakePrestationRepo
	factures    *fakeFactureRepo
	clients     *fakeClientRepo
	infos       *fakeInfoRepo
}

func (tx *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	prestationRepo repository.PrestationRepository,
	factureRepo repository.FactureRepository,
	clientRepo repository.ClientRepository,
	infoRepo repository.BusinessInfoRepository,
) error) error {
	return fn(tx.prestations, tx.factures, tx.clients, tx.infos)
}

// ──────────────────────────────────────────────────────────────────────────────
// Doubles PDF.
// ──────────────────────────────────────────────────────────────────────────────

type fakePDFGen struct {
	echoue bool
}

func (g *fakePDFGen) GenerateFacturePDF(ctx context.Context, f *entity.Facture, c *entity.Client, i *entity.BusinessInfo, p []*entity.Prestation) ([]byte, error) {
	if g.echoue {
		return nil, fmt.Errorf("rendu PDF indisponible")
	}
	return []byte("%PDF-facture"), nil
}

func (g *fakePDFGen) GenerateAvoirPDF(ctx context.Context, f *entity.Facture, c *entity.Client, i *entity.BusinessInfo) ([]byte, error) {
	if g.echoue {
		return nil, fmt.Errorf("rendu PDF indisponible")
	}
	return []byte("%PDF-avoir"), nil
}

type fakePDFStore struct {
	supprimes []string
}

func (s *fakePDFStore) SaveFacturePDF(f *entity.Facture, clientName string, data []byte) (string, error) {
	return fmt.Sprintf("/tmp/factures/Facture_%d.pdf", f.InvoiceNumber), nil
}

func (s *fakePDFStore) SaveAvoirPDF(f *entity.Facture, clientName string, data []byte) (string, error) {
	return fmt.Sprintf("/tmp/factures/Avoir_%d.pdf", f.InvoiceNumber), nil
}

func (s *fakePDFStore) Remove(path string) error {
	s.supprimes = append(s.supprimes, path)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Environnement de test complet.
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	uc          *billing.FactureUseCase
	prestations *fakePrestationRepo
	factures    *fakeFactureRepo
	clients     *fakeClientRepo
	infos       *fakeInfoRepo
	pdfGen      *fakePDFGen
	pdfStore    *fakePDFStore
}

func newEnv() *env {
	e := &env{
		prestations: newFakePrestationRepo(),
		factures:    newFakeFactureRepo(),
		clients:     newFakeClientRepo(),
		infos:       newFakeInfoRepo(),
		pdfGen:      &fakePDFGen{},
		pdfStore:    &fakePDFStore{},
	}
	tx := &fakeTxRunner{
		prestations: e.prestations,
		factures:    e.factures,
		clients:     e.clients,
		infos:       e.infos,
	}
	e.uc = billing.NewFactureUseCase(
		tx, e.factures, e.prestations, e.clients, e.infos,
		e.pdfGen, e.pdfGen, e.pdfStore,
	)
	return e
}

const testUserID = "user-1"

func (e *env) seedClient(id string) *entity.Client {
	c := &entity.Client{
		ID:     id,
		UserID: testUserID,
		Name:   "Studio Lumière",
		Email:  id + "@exemple.fr",
	}
	e.clients.items[c.ID] = c
	return c
}

func (e *env) seedInfo() *entity.BusinessInfo {
	info := &entity.BusinessInfo{
		ID:                 "info-1",
		UserID:             testUserID,
		Name:               "Jean Dupont EI",
		InvoiceNumberStart: 1,
		InvoiceStatus:      entity.FeatureInvoiceStatus{Enabled: true, PaymentDelay: 30},
	}
	e.infos.items[testUserID] = info
	return info
}

func (e *env) seedPrestation(id, clientID string, total string, jour time.Time) *entity.Prestation {
	p := &entity.Prestation{
		ID:          id,
		UserID:      testUserID,
		ClientID:    clientID,
		Description: "développement",
		BillingType: entity.BillingHourly,
		Hours:       dec("1"),
		HourlyRate:  dec(total),
		Total:       dec(total),
		Duration:    60,
		Date:        jour,
	}
	e.prestations.items[p.ID] = p
	return p
}
