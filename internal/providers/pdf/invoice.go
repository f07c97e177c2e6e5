package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := newDocument()

	m.AddRow(14,
		text.NewCol(8, "Factura", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, invoice.Status, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Top: 4}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Número: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Emitida: "+invoice.IssueDate, props.Text{Top: 5}),
			text.New("Vence: "+invoice.DueDate, props.Text{Top: 10}),
		),
		col.New(6),
	)

	addParties(m, invoice)

	m.AddRow(15,
		text.NewCol(12, "Total a pagar: "+invoice.AmountDue, props.Text{Size: 14, Style: fontstyle.Bold, Top: 5}),
	)

	addItems(m, invoice.Items)

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9}),
		text.NewCol(2, invoice.Total, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Pendiente", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, invoice.AmountDue, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	return render(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func addParties(m core.Maroto, data InvoiceData) {
	m.AddRow(30,
		col.New(6).Add(
			text.New(data.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New(data.OrgAddress, props.Text{Top: 5}),
			text.New(data.OrgEmail, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Facturar a", props.Text{Style: fontstyle.Bold}),
			text.New(data.BillToName, props.Text{Top: 5}),
			text.New(data.BillToEmail, props.Text{Top: 10}),
		),
	)
}

func addItems(m core.Maroto, items []InvoiceItem) {
	m.AddRow(10,
		text.NewCol(6, "Descripción", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Cant.", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Precio", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Importe", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, col.New(12))

	for _, item := range items {
		m.AddRow(10,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
}

func render(m core.Maroto) (io.Reader, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
