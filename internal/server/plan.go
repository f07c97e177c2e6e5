package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/authorization"
	"github.com/smallbiznis/billdesk/internal/filter"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
)

type planRequest struct {
	Name         string           `json:"name" validate:"required,min=2"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	BillingCycle string           `json:"billingCycle" validate:"required,oneof=MONTHLY QUARTERLY YEARLY"`
	Active       *bool            `json:"active"`
}

func (r planRequest) upsert() plandomain.UpsertPlanRequest {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return plandomain.UpsertPlanRequest{
		Name:         strings.TrimSpace(r.Name),
		Price:        *r.Price,
		BillingCycle: plandomain.BillingCycle(r.BillingCycle),
		Active:       active,
	}
}

func (s *Server) ListPlans(c *gin.Context) {
	var query struct {
		listQuery
		Active string `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	activeOnly, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "active debe ser true o false"))
		return
	}

	var items []plandomain.Plan
	if activeOnly != nil && *activeOnly {
		items, err = s.planSvc.ListActive(c.Request.Context())
	} else {
		items, err = s.planSvc.List(c.Request.Context())
	}
	if err != nil {
		abortOperation(c, err, "Error al cargar planes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newPlanViews(filter.Collection(items, query.criteria(), filter.MatchesPlan))})
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req planRequest
	if !s.bindJSON(c, &req) {
		return
	}

	resp, err := s.planSvc.Create(c.Request.Context(), req.upsert())
	if err != nil {
		abortOperation(c, err, "Error al guardar plan")
		return
	}

	s.audit(c, auditdomain.ActionPlanCreate, authorization.ObjectPlan, strconv.FormatInt(resp.ID, 10), map[string]any{
		"name":          resp.Name,
		"price":         resp.Price.StringFixed(2),
		"billing_cycle": string(resp.BillingCycle),
	})

	c.JSON(http.StatusCreated, gin.H{"data": newPlanView(resp), "message": "Plan creado exitosamente"})
}

func (s *Server) UpdatePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req planRequest
	if !s.bindJSON(c, &req) {
		return
	}

	resp, err := s.planSvc.Update(c.Request.Context(), id, req.upsert())
	if err != nil {
		abortOperation(c, err, "Error al guardar plan")
		return
	}

	s.audit(c, auditdomain.ActionPlanUpdate, authorization.ObjectPlan, strconv.FormatInt(id, 10), map[string]any{
		"name":          resp.Name,
		"price":         resp.Price.StringFixed(2),
		"billing_cycle": string(resp.BillingCycle),
		"active":        resp.Active,
	})

	c.JSON(http.StatusOK, gin.H{"data": newPlanView(resp), "message": "Plan actualizado exitosamente"})
}

// DeletePlan disables the plan. Existing subscriptions keep it.
func (s *Server) DeletePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.planSvc.Delete(c.Request.Context(), id); err != nil {
		abortOperation(c, err, "Error al deshabilitar plan")
		return
	}

	s.audit(c, auditdomain.ActionPlanDelete, authorization.ObjectPlan, strconv.FormatInt(id, 10), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Plan deshabilitado exitosamente"})
}
