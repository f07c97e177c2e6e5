package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdashboarddomain "github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
	"github.com/smallbiznis/billdesk/internal/filter"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	"github.com/smallbiznis/billdesk/internal/providers/pdf"
)

// ListPayments returns the matching payments. The summary covers the status
// or method selection before the search term is applied.
func (s *Server) ListPayments(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	criteria := query.criteria()

	var (
		items []paymentdomain.Payment
		err   error
	)
	switch {
	case criteria.Status != "" && criteria.Status != filter.All:
		items, err = s.paymentSvc.ListByStatus(c.Request.Context(), paymentdomain.PaymentStatus(criteria.Status))
	case criteria.Method != "" && criteria.Method != filter.All:
		items, err = s.paymentSvc.ListByMethod(c.Request.Context(), paymentdomain.PaymentMethod(criteria.Method))
	default:
		items, err = s.paymentSvc.List(c.Request.Context())
	}
	if err != nil {
		abortOperation(c, err, "Error al cargar pagos")
		return
	}

	summary := billingdashboarddomain.SummarizePayments(items)
	filtered := filter.Collection(items, criteria, filter.MatchesPayment)

	c.JSON(http.StatusOK, gin.H{
		"data": newPaymentViews(filtered),
		"summary": paymentSummaryView{
			PaymentSummary: summary,
			RevenueDisplay: billingdashboarddomain.FormatMoney(summary.Revenue),
		},
	})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Pago no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newPaymentView(item)})
}

func (s *Server) RenderPaymentReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := s.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Pago no encontrado")
		return
	}

	doc, err := s.pdfSvc.GenerateReceipt(c.Request.Context(), pdf.FromPayment(item, s.dashboard.Get()))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sendPDF(c, doc, "recibo "+item.Invoice.Number())
}
