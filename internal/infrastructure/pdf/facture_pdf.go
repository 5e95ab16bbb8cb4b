// Package pdf implémente le rendu des factures et des avoirs au format A4.
//
// Mise en page :
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER : Nom + SIRET           │  N° Facture + Dates        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÉMETTEUR : adresse / tél / email                            │
//	│  CLIENT : nom + adresse                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE : Description | Quantité | Prix unitaire | Total      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAUX : HT / Cotisations URSSAF / Net / TVA / TTC          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MENTIONS : TVA art. 293 B, échéance, rectification          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/domain/entity"
)

// ── Palette ───────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 30, Green: 58, Blue: 95}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var moisFrancais = [...]string{
	"", "janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.FacturePDFGenerator = (*MarotoPDFGenerator)(nil)
var _ appbilling.AvoirPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implémente le rendu PDF avec Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construit le générateur.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateFacturePDF produit le PDF d'une facture et retourne ses octets.
func (g *MarotoPDFGenerator) GenerateFacturePDF(
	_ context.Context,
	facture *entity.Facture,
	client *entity.Client,
	info *entity.BusinessInfo,
	prestations []*entity.Prestation,
) ([]byte, error) {
	m := maroto.New(marotoConfig(titreFacture(facture, info), info.Name).Build())

	m.AddRows(headerRow(titreFacture(facture, info), facture.InvoiceNumber, facture, info))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emetteurRow(info))
	m.AddRows(clientRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tablePrestationRows(prestations) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totauxRows(facture, info)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(mentionsRows(facture, info)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: générer le document: %w", err)
	}
	return doc.GetBytes(), nil
}

func titreFacture(facture *entity.Facture, info *entity.BusinessInfo) string {
	if facture.IsRectification {
		return "FACTURE RECTIFICATIVE"
	}
	if info.InvoiceTitle != "" {
		return info.InvoiceTitle
	}
	return "FACTURE"
}

// ── Sections ──────────────────────────────────────────────────────────────────

// headerRow : nom + SIRET (gauche), titre + numéro + dates (droite).
func headerRow(titre string, numero int, facture *entity.Facture, info *entity.BusinessInfo) core.Row {
	periode := fmt.Sprintf("%s %d", moisFrancais[facture.Month], facture.Year)
	return row.New(20).Add(
		col.New(7).Add(
			text.New(info.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SIRET : "+nonEmpty(info.Siret, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(titre, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", numero), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+facture.DateFacture.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Période : "+periode, props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

// emetteurRow : coordonnées de l'émetteur.
func emetteurRow(info *entity.BusinessInfo) core.Row {
	adresse := fmt.Sprintf("%s, %s %s", nonEmpty(info.Address, "—"), info.PostalCode, info.City)
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ÉMETTEUR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tél : %s   |   Email : %s",
				adresse,
				nonEmpty(info.Phone, "—"),
				nonEmpty(info.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// clientRow : destinataire de la facture.
func clientRow(client *entity.Client) core.Row {
	adresse := client.Street
	if client.PostalCode != "" || client.City != "" {
		adresse = fmt.Sprintf("%s, %s %s", client.Street, client.PostalCode, client.City)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("FACTURÉ À", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(client.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s   |   Email : %s",
				nonEmpty(adresse, "—"),
				nonEmpty(client.Email, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow : entête de la table des prestations.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Description", 6, align.Left),
		h("Quantité", 2, align.Center),
		h("Prix unitaire", 2, align.Right),
		h("Total HT", 2, align.Right),
	)
}

// tablePrestationRows : une ligne par prestation.
func tablePrestationRows(prestations []*entity.Prestation) []core.Row {
	result := make([]core.Row, 0, len(prestations))
	for _, p := range prestations {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				p.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				quantite(p),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				prixUnitaire(p),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				euros(p.Total),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totauxRows : bloc des totaux aligné à droite. La TVA n'apparaît que si
// elle s'applique.
func totauxRows(facture *entity.Facture, info *entity.BusinessInfo) []core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	labels := []core.Component{
		label("Total HT :"),
		label(fmt.Sprintf("Cotisations URSSAF (%s%%) :", info.TauxURSSAFEffectif().Mul(decimal.NewFromInt(100)).StringFixed(1))),
		label("Net après cotisations :"),
	}
	values := []core.Component{
		value(euros(facture.MontantHT)),
		value(euros(facture.TaxeURSSAF)),
		value(euros(facture.MontantNet)),
	}
	if !info.TauxTVAEffectif().IsZero() {
		labels = append(labels, label(fmt.Sprintf("TVA (%s%%) :", info.TauxTVAEffectif().Mul(decimal.NewFromInt(100)).StringFixed(1))))
		values = append(values, value(euros(facture.MontantTVA)))
	}

	rows := []core.Row{
		row.New(float64(6 * len(labels))).Add(
			col.New(4),
			col.New(4).Add(labels...),
			col.New(4).Add(values...),
		),
		row.New(8).Add(
			col.New(4),
			col.New(4).Add(text.New("TOTAL À PAYER :", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2, Top: 1,
			})),
			col.New(4).Add(text.New(euros(facture.MontantTTC), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 1,
			})),
		),
	}
	return rows
}

// mentionsRows : mentions légales et informations de règlement.
func mentionsRows(facture *entity.Facture, info *entity.BusinessInfo) []core.Row {
	var rows []core.Row

	if facture.IsRectification && facture.RectificationInfo != nil {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf(
				"Facture rectificative : annule et remplace la facture n°%d.",
				facture.RectificationInfo.OriginalInvoiceNumber,
			), props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)))
	}

	if info.Display.ShowDueDateOnInvoice && !facture.DateEcheance.IsZero() {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Date d'échéance : "+facture.DateEcheance.Format("02/01/2006"),
				props.Text{Size: 8, Top: 1}),
		)))
	}

	if info.TauxTVAEffectif().IsZero() {
		mention := info.MentionTVA
		if mention == "" {
			mention = "TVA non applicable, art. 293 B du CGI"
		}
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(mention, props.Text{Size: 7.5, Color: colorGray, Top: 1}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"En cas de retard de paiement, une pénalité de trois fois le taux d'intérêt légal "+
				"sera appliquée, ainsi qu'une indemnité forfaitaire pour frais de recouvrement de 40 €.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// euros formate un montant avec le symbole €.
func euros(montant decimal.Decimal) string {
	return montant.StringFixed(2) + " €"
}

// quantite affiche la quantité selon le type de facturation.
func quantite(p *entity.Prestation) string {
	switch p.BillingType {
	case entity.BillingHourly:
		return p.Hours.StringFixed(2) + " h"
	case entity.BillingDaily:
		jours := decimal.NewFromInt(int64(p.Duration)).Div(decimal.NewFromInt(1440))
		return jours.StringFixed(1) + " j"
	default:
		q := p.Quantity
		if q < 1 {
			q = 1
		}
		return fmt.Sprintf("%d", q)
	}
}

// prixUnitaire affiche le prix unitaire selon le type de facturation.
func prixUnitaire(p *entity.Prestation) string {
	switch p.BillingType {
	case entity.BillingHourly:
		return euros(p.HourlyRate)
	default:
		return euros(p.FixedPrice)
	}
}

func marotoConfig(title, author string) config.Builder {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true)
}
