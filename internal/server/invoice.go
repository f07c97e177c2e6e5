package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/authorization"
	"github.com/smallbiznis/billdesk/internal/filter"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/providers/pdf"
)

type payInvoiceRequest struct {
	Method string `json:"method" validate:"required,oneof=CARD TRANSFER CASH"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	criteria := query.criteria()

	var (
		items []invoicedomain.Invoice
		err   error
	)
	if criteria.Status != "" && criteria.Status != filter.All {
		items, err = s.invoiceSvc.ListByStatus(c.Request.Context(), invoicedomain.InvoiceStatus(criteria.Status))
	} else {
		items, err = s.invoiceSvc.List(c.Request.Context())
	}
	if err != nil {
		abortOperation(c, err, "Error al cargar facturas")
		return
	}

	items = filter.Collection(items, criteria, filter.MatchesInvoice)
	c.JSON(http.StatusOK, gin.H{"data": newInvoiceViews(items, s.clock.Now())})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Factura no encontrada.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newInvoiceView(item, s.clock.Now())})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Factura no encontrada.")
		return
	}

	doc, err := s.pdfSvc.GenerateInvoice(c.Request.Context(), pdf.FromInvoice(item, s.dashboard.Get()))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sendPDF(c, doc, item.Number())
}

// PayInvoice settles an open invoice. Rejections carry the text shown to the
// operator and are never retried.
func (s *Server) PayInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req payInvoiceRequest
	if !s.bindJSON(c, &req) {
		return
	}

	targetID := strconv.FormatInt(id, 10)
	if err := s.invoiceSvc.Pay(c.Request.Context(), id, req.Method); err != nil {
		s.audit(c, auditdomain.ActionInvoicePayRejected, authorization.ObjectInvoice, targetID, map[string]any{
			"method": req.Method,
			"reason": err.Error(),
		})
		abortOperation(c, err, "Error al procesar el pago")
		return
	}

	s.audit(c, auditdomain.ActionInvoicePay, authorization.ObjectInvoice, targetID, map[string]any{
		"method": req.Method,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Pago procesado exitosamente"})
}

func (s *Server) sendPDF(c *gin.Context, doc io.Reader, name string) {
	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	filename := slug.Make(strings.TrimSpace(s.dashboard.Get().Organization.Name+" "+name)) + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", body)
}
