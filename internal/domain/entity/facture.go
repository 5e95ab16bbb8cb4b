package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatutPaiement : cycle de vie de paiement d'une facture.
type StatutPaiement string

const (
	StatutBrouillon StatutPaiement = "draft"
	StatutImpayee   StatutPaiement = "unpaid"
	StatutPayee     StatutPaiement = "paid"
	StatutEnRetard  StatutPaiement = "overdue"
	StatutAnnulee   StatutPaiement = "cancelled"
)

// StatutLegal : cycle de vie légal/comptable, orthogonal au paiement.
// RECTIFIEE et ANNULEE impliquent Locked = true.
type StatutLegal string

const (
	LegalValide    StatutLegal = "VALIDE"
	LegalRectifiee StatutLegal = "RECTIFIEE"
	LegalAnnulee   StatutLegal = "ANNULEE"
)

// Types de rappel.
const (
	RappelPremier   = "premier"
	RappelDeuxieme  = "deuxieme"
	RappelTroisieme = "troisieme"
)

// Statuts d'envoi d'un rappel.
const (
	RappelEnvoye = "sent"
	RappelEchoue = "failed"
)

// Motifs légaux de rectification.
const (
	MotifErreurMontant        = "erreur_montant"
	MotifErreurTaux           = "erreur_taux"
	MotifPrestationManquante  = "prestation_manquante"
	MotifPrestationSupprimee  = "prestation_supprimee"
	MotifRemiseCommerciale    = "remise_commerciale"
	MotifAutre                = "autre"
)

// Types de différence sur une prestation lors d'une rectification.
const (
	DiffModifiee  = "MODIFIEE"
	DiffAjoutee   = "AJOUTEE"
	DiffSupprimee = "SUPPRIMEE"
)

// Paiement : entrée du journal des paiements (append-only).
type Paiement struct {
	Date        time.Time       `json:"date"`
	Montant     decimal.Decimal `json:"montant"`
	Methode     string          `json:"methode"`
	Commentaire string          `json:"commentaire,omitempty"`
}

// Rappel : entrée du journal des relances (append-only).
type Rappel struct {
	Type   string    `json:"type"` // premier | deuxieme | troisieme
	Date   time.Time `json:"date"`
	Status string    `json:"status"` // sent | failed
}

// Version : instantané des totaux avant modification (append-only).
type Version struct {
	Date            time.Time       `json:"date"`
	ClientID        string          `json:"clientId"`
	DateFacture     time.Time       `json:"dateFacture"`
	MontantHT       decimal.Decimal `json:"montantHT"`
	TaxeURSSAF      decimal.Decimal `json:"taxeURSSAF"`
	MontantNet      decimal.Decimal `json:"montantNet"`
	MontantTTC      decimal.Decimal `json:"montantTTC"`
	NombreHeures    decimal.Decimal `json:"nombreHeures"`
	ChangesComment  string          `json:"changesComment"`
}

// RectificationRef : entrée du journal des rectifications portée par la
// facture d'origine, pointant vers la facture rectificative (append-only).
type RectificationRef struct {
	FactureID string    `json:"factureId"`
	Date      time.Time `json:"date"`
	Motif     string    `json:"motif"`
}

// PrestationSnapshot : état d'une prestation capturé dans un diff de
// rectification.
type PrestationSnapshot struct {
	PrestationID string          `json:"prestationId"`
	Description  string          `json:"description"`
	BillingType  string          `json:"billingType"`
	Hours        decimal.Decimal `json:"hours"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	FixedPrice   decimal.Decimal `json:"fixedPrice"`
	Quantity     int             `json:"quantity"`
	Duration     int             `json:"duration"`
	DurationUnit string          `json:"durationUnit"`
	Total        decimal.Decimal `json:"total"`
	Date         time.Time       `json:"date"`
}

// PrestationDiff : différence avant/après sur une prestation.
// MODIFIEE porte les deux instantanés, AJOUTEE seulement Apres,
// SUPPRIMEE seulement Avant.
type PrestationDiff struct {
	Type  string              `json:"type"`
	Avant *PrestationSnapshot `json:"avant,omitempty"`
	Apres *PrestationSnapshot `json:"apres,omitempty"`
}

// RectificationInfo : lien d'une facture rectificative vers son origine.
// La chaîne liste les ancêtres du plus ancien au plus récent et ne fait
// que croître en queue.
type RectificationInfo struct {
	OriginalFactureID     string           `json:"originalFactureId"`
	OriginalInvoiceNumber int              `json:"originalInvoiceNumber"`
	Chaine                []string         `json:"chaine"`
	MotifLegal            string           `json:"motifLegal"`
	MotifDetail           string           `json:"motifDetail,omitempty"`
	PrestationsModifiees  []PrestationDiff `json:"prestationsModifiees"`
	DifferenceMontantHT   decimal.Decimal  `json:"differenceMontantHT"`
	DifferenceTaxeURSSAF  decimal.Decimal  `json:"differenceTaxeURSSAF"`
	DifferenceMontantNet  decimal.Decimal  `json:"differenceMontantNet"`
	DifferenceMontantTVA  decimal.Decimal  `json:"differenceMontantTVA"`
	DifferenceMontantTTC  decimal.Decimal  `json:"differenceMontantTTC"`
}

// Avoir : note de crédit post-paiement. Au plus un avoir par facture,
// uniquement sur facture payée.
type Avoir struct {
	Date              time.Time       `json:"date"`
	Numero            string          `json:"numero"`
	Montant           decimal.Decimal `json:"montant"`
	Motif             string          `json:"motif"`
	Remboursement     bool            `json:"remboursement"`
	MethodePaiement   string          `json:"methodePaiement,omitempty"`
	DateRemboursement *time.Time      `json:"dateRemboursement,omitempty"`
	PDFPath           string          `json:"pdfPath,omitempty"`
}

// Annulation : trace de l'annulation d'une facture.
type Annulation struct {
	Date        time.Time `json:"date"`
	Motif       string    `json:"motif"`
	Commentaire string    `json:"commentaire,omitempty"`
	UserID      string    `json:"userId"`
}

// Facture agrège des prestations pour un client et une période, avec ses
// totaux, son double statut (paiement + légal) et ses journaux d'audit.
type Facture struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	ClientID      string   `json:"clientId"`
	PrestationIDs []string `json:"prestations"`

	DateFacture  time.Time `json:"dateFacture"`
	DateEcheance time.Time `json:"dateEcheance"`

	InvoiceNumber int `json:"invoiceNumber"`
	Year          int `json:"year"`
	Month         int `json:"month"`

	// Totaux en cache, toujours recalculés depuis les prestations courantes
	MontantHT    decimal.Decimal `json:"montantHT"`
	TaxeURSSAF   decimal.Decimal `json:"taxeURSSAF"`
	MontantNet   decimal.Decimal `json:"montantNet"`
	MontantTVA   decimal.Decimal `json:"montantTVA"`
	MontantTTC   decimal.Decimal `json:"montantTTC"`
	NombreHeures decimal.Decimal `json:"nombreHeures"`

	Status StatutPaiement `json:"status"`
	Statut StatutLegal    `json:"statut"`
	Locked bool           `json:"locked"`

	IsSentToClient bool       `json:"isSentToClient"`
	DateSent       *time.Time `json:"dateSent,omitempty"`

	PDFPath string `json:"pdfPath,omitempty"`

	MethodePaiement     string     `json:"methodePaiement,omitempty"`
	CommentairePaiement string     `json:"commentairePaiement,omitempty"`
	DatePaiement        *time.Time `json:"datePaiement,omitempty"`

	// Journaux append-only : jamais réécrits, seulement étendus
	HistoriquePaiements []Paiement         `json:"historiquePaiements"`
	Rappels             []Rappel           `json:"rappels"`
	Versions            []Version          `json:"versions"`
	Rectifications      []RectificationRef `json:"rectifications"`

	IsRectification   bool               `json:"isRectification"`
	RectificationInfo *RectificationInfo `json:"rectificationInfo,omitempty"`

	Avoir      *Avoir      `json:"avoir,omitempty"`
	Annulation *Annulation `json:"annulation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EstModifiable indique si la structure de la facture (prestations, totaux,
// client, dates) peut encore changer. Une facture payée ou verrouillée ne
// l'est plus : seuls les journaux annexes peuvent être étendus.
func (f *Facture) EstModifiable() bool {
	return !f.Locked && f.Status != StatutPayee
}

// AjouterPaiement étend le journal des paiements. Append-only.
func (f *Facture) AjouterPaiement(p Paiement) {
	f.HistoriquePaiements = append(f.HistoriquePaiements, p)
}

// AjouterRappel étend le journal des relances. Append-only.
func (f *Facture) AjouterRappel(r Rappel) {
	f.Rappels = append(f.Rappels, r)
}

// AjouterVersion capture les totaux courants avant une modification.
func (f *Facture) AjouterVersion(now time.Time, commentaire string) {
	f.Versions = append(f.Versions, Version{
		Date:           now,
		ClientID:       f.ClientID,
		DateFacture:    f.DateFacture,
		MontantHT:      f.MontantHT,
		TaxeURSSAF:     f.TaxeURSSAF,
		MontantNet:     f.MontantNet,
		MontantTTC:     f.MontantTTC,
		NombreHeures:   f.NombreHeures,
		ChangesComment: commentaire,
	})
}

// AjouterRectification étend le journal des rectifications de l'origine.
func (f *Facture) AjouterRectification(ref RectificationRef) {
	f.Rectifications = append(f.Rectifications, ref)
}

// MarquerRectifiee verrouille la facture d'origine après rectification.
// LegalRectifiee implique Locked.
func (f *Facture) MarquerRectifiee() {
	f.Statut = LegalRectifiee
	f.Locked = true
}

// RetablirValide annule le verrouillage posé par une rectification, quand
// la dernière rectificative active vient d'être annulée.
func (f *Facture) RetablirValide() {
	f.Statut = LegalValide
	f.Locked = false
}

// RafraichirRetard passe une facture impayée échue en retard.
func (f *Facture) RafraichirRetard(now time.Time) {
	if f.Status == StatutImpayee && now.After(f.DateEcheance) {
		f.Status = StatutEnRetard
	}
}

// JoursRetard calcule le nombre de jours de retard, 0 si payée.
func (f *Facture) JoursRetard(now time.Time) int {
	if f.Status == StatutPayee || f.DateEcheance.IsZero() {
		return 0
	}
	jours := int(now.Sub(f.DateEcheance).Hours() / 24)
	if jours < 0 {
		return 0
	}
	return jours
}

// ProchainRappel retourne le prochain type de rappel à envoyer selon le
// retard et les rappels déjà présents dans le journal, ou "" si aucun.
func (f *Facture) ProchainRappel(now time.Time, premier, deuxieme, troisieme int) string {
	if f.Status == StatutPayee || f.Status == StatutAnnulee {
		return ""
	}
	envoyes := make(map[string]bool, len(f.Rappels))
	for _, r := range f.Rappels {
		envoyes[r.Type] = true
	}
	jours := f.JoursRetard(now)
	switch {
	case !envoyes[RappelPremier] && jours >= premier:
		return RappelPremier
	case !envoyes[RappelDeuxieme] && jours >= deuxieme:
		return RappelDeuxieme
	case !envoyes[RappelTroisieme] && jours >= troisieme:
		return RappelTroisieme
	}
	return ""
}
