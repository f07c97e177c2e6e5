package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/authorization"
	"github.com/smallbiznis/billdesk/internal/filter"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
)

type createSubscriptionRequest struct {
	CustomerID int64 `json:"customerId" validate:"required,gt=0"`
	PlanID     int64 `json:"planId" validate:"required,gt=0"`
}

type updateSubscriptionRequest struct {
	PlanID int64  `json:"planId" validate:"gte=0"`
	Status string `json:"status" validate:"omitempty,oneof=ACTIVE PAUSED CANCELED"`
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	var query struct {
		listQuery
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	customerID, err := parseOptionalInt64(query.CustomerID)
	if err != nil || (customerID != nil && *customerID <= 0) {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "Customer ID debe ser un número positivo"))
		return
	}

	var items []subscriptiondomain.Subscription
	if customerID != nil {
		items, err = s.subscriptionSvc.ListByCustomer(c.Request.Context(), *customerID)
	} else {
		items, err = s.subscriptionSvc.List(c.Request.Context())
	}
	if err != nil {
		abortOperation(c, err, "Error al cargar datos")
		return
	}

	items = filter.Collection(items, query.criteria(), filter.MatchesSubscription)
	c.JSON(http.StatusOK, gin.H{"data": newSubscriptionViews(items)})
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := s.subscriptionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Suscripción no encontrada")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newSubscriptionView(item)})
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if !s.bindJSON(c, &req) {
		return
	}

	resp, err := s.subscriptionSvc.Create(c.Request.Context(), subscriptiondomain.CreateSubscriptionRequest{
		CustomerID: req.CustomerID,
		PlanID:     req.PlanID,
	})
	if err != nil {
		abortOperation(c, err, "Error al guardar suscripción")
		return
	}

	s.audit(c, auditdomain.ActionSubscriptionCreate, authorization.ObjectSubscription, strconv.FormatInt(resp.ID, 10), map[string]any{
		"customer_id": req.CustomerID,
		"plan_id":     req.PlanID,
	})

	c.JSON(http.StatusCreated, gin.H{"data": newSubscriptionView(resp), "message": "Suscripción creada exitosamente"})
}

func (s *Server) UpdateSubscription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateSubscriptionRequest
	if !s.bindJSON(c, &req) {
		return
	}

	resp, err := s.subscriptionSvc.Update(c.Request.Context(), subscriptiondomain.UpdateSubscriptionRequest{
		ID:     id,
		PlanID: req.PlanID,
		Status: subscriptiondomain.SubscriptionStatus(req.Status),
	})
	if err != nil {
		abortOperation(c, err, "Error al cambiar estado")
		return
	}

	s.audit(c, auditdomain.ActionSubscriptionUpdate, authorization.ObjectSubscription, strconv.FormatInt(id, 10), map[string]any{
		"plan_id": req.PlanID,
		"status":  string(resp.Status),
	})

	c.JSON(http.StatusOK, gin.H{"data": newSubscriptionView(resp), "message": "Suscripción actualizada exitosamente"})
}

// RenewSubscription asks the billing API for the next period's invoice.
func (s *Server) RenewSubscription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := s.subscriptionSvc.Renew(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Error al renovar suscripción")
		return
	}

	s.audit(c, auditdomain.ActionSubscriptionRenew, authorization.ObjectSubscription, strconv.FormatInt(id, 10), map[string]any{
		"next_billing_date": resp.NextBillingDate,
	})

	c.JSON(http.StatusOK, gin.H{"data": newSubscriptionView(resp), "message": "Factura de renovación generada exitosamente"})
}

func (s *Server) DeleteSubscription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.subscriptionSvc.Delete(c.Request.Context(), id); err != nil {
		abortOperation(c, err, "Error al eliminar suscripción")
		return
	}

	s.audit(c, auditdomain.ActionSubscriptionDelete, authorization.ObjectSubscription, strconv.FormatInt(id, 10), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Suscripción eliminada exitosamente"})
}
