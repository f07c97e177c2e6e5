package pdf

import (
	"context"
	"io"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := newDocument()

	m.AddRow(14,
		text.NewCol(8, "Recibo de pago", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, receipt.PaymentStatus, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Top: 4}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Factura: "+receipt.InvoiceNumber, props.Text{Top: 0}),
			text.New("Fecha de pago: "+receipt.DatePaid, props.Text{Top: 5}),
			text.New("Método: "+receipt.Method, props.Text{Top: 10}),
			text.New("Referencia: "+receipt.Reference, props.Text{Top: 15}),
		),
		col.New(6),
	)

	addParties(m, receipt.InvoiceData)

	m.AddRow(15,
		text.NewCol(12, receipt.AmountPaid+" pagado el "+receipt.DatePaid, props.Text{Size: 14, Style: fontstyle.Bold, Top: 5}),
	)

	addItems(m, receipt.Items)

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9}),
		text.NewCol(2, receipt.Total, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Pagado", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, receipt.AmountPaid, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	return render(m)
}
