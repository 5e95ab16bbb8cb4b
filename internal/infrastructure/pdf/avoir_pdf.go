package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/facturio/facturio-api/internal/domain/entity"
)

// GenerateAvoirPDF produit le PDF d'une note de crédit et retourne ses octets.
func (g *MarotoPDFGenerator) GenerateAvoirPDF(
	_ context.Context,
	facture *entity.Facture,
	client *entity.Client,
	info *entity.BusinessInfo,
) ([]byte, error) {
	if facture.Avoir == nil {
		return nil, fmt.Errorf("pdf: facture sans avoir")
	}
	avoir := facture.Avoir

	m := maroto.New(marotoConfig("Avoir "+avoir.Numero, info.Name).Build())

	m.AddRows(row.New(20).Add(
		col.New(7).Add(
			text.New(info.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SIRET : "+nonEmpty(info.Siret, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("AVOIR (NOTE DE CRÉDIT)", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(avoir.Numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+avoir.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emetteurRow(info))
	m.AddRows(clientRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(row.New(14).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Avoir sur la facture n°%d du %s",
			facture.InvoiceNumber, facture.DateFacture.Format("02/01/2006")),
			props.Text{Style: fontstyle.Bold, Size: 10, Top: 2}),
		text.New("Motif : "+avoir.Motif, props.Text{Size: 9, Top: 9, Color: colorGray}),
	)))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(10).Add(
		col.New(4),
		col.New(4).Add(text.New("MONTANT DE L'AVOIR :", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(4).Add(text.New(euros(avoir.Montant), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	))

	if avoir.Remboursement {
		detail := "Remboursement au client"
		if avoir.MethodePaiement != "" {
			detail += " par " + avoir.MethodePaiement
		}
		if avoir.DateRemboursement != nil {
			detail += " le " + avoir.DateRemboursement.Format("02/01/2006")
		}
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New(detail+".", props.Text{Size: 8, Top: 1}),
		)))
	} else {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("Avoir à valoir sur une prochaine facture.", props.Text{Size: 8, Top: 1}),
		)))
	}

	if info.TauxTVAEffectif().IsZero() {
		m.AddRows(row.New(5).Add(col.New(12).Add(
			text.New("TVA non applicable, art. 293 B du CGI", props.Text{
				Size: 7.5, Color: colorGray, Top: 1,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: générer l'avoir: %w", err)
	}
	return doc.GetBytes(), nil
}
