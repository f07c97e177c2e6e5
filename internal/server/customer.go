package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/authorization"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	"github.com/smallbiznis/billdesk/internal/filter"
)

type customerRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	UserID  int64  `json:"userId" validate:"gte=0"`
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, err := s.customerSvc.List(c.Request.Context())
	if err != nil {
		abortOperation(c, err, "Error al cargar clientes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": filter.Collection(items, query.criteria(), filter.MatchesCustomer)})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortOperation(c, err, "Cliente no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if !s.bindJSON(c, &req) {
		return
	}
	ownerID, ok := s.ownerFor(c, req.UserID)
	if !ok {
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		OwnerID: ownerID,
	})
	if err != nil {
		abortOperation(c, err, "Error al guardar cliente")
		return
	}

	s.audit(c, auditdomain.ActionCustomerCreate, authorization.ObjectCustomer, strconv.FormatInt(resp.ID, 10), map[string]any{
		"name":     resp.Name,
		"email":    resp.Email,
		"owner_id": ownerID,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp, "message": "Cliente creado exitosamente"})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req customerRequest
	if !s.bindJSON(c, &req) {
		return
	}
	ownerID, ok := s.ownerFor(c, req.UserID)
	if !ok {
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		OwnerID: ownerID,
	})
	if err != nil {
		abortOperation(c, err, "Error al guardar cliente")
		return
	}

	s.audit(c, auditdomain.ActionCustomerUpdate, authorization.ObjectCustomer, strconv.FormatInt(id, 10), map[string]any{
		"name":     resp.Name,
		"email":    resp.Email,
		"owner_id": ownerID,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp, "message": "Cliente actualizado exitosamente"})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.customerSvc.Delete(c.Request.Context(), id); err != nil {
		abortOperation(c, err, "Error al eliminar cliente")
		return
	}

	s.audit(c, auditdomain.ActionCustomerDelete, authorization.ObjectCustomer, strconv.FormatInt(id, 10), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Cliente eliminado exitosamente"})
}

// ownerFor keeps requested only when the session may assign owners.
// Other sessions always own what they write.
func (s *Server) ownerFor(c *gin.Context, requested int64) (int64, bool) {
	if requested <= 0 {
		return 0, true
	}
	err := s.authzSvc.Authorize(c.Request.Context(), authorization.ObjectCustomer, authorization.ActionAssignOwner)
	switch {
	case err == nil:
		return requested, true
	case errors.Is(err, authorization.ErrForbidden):
		return 0, true
	default:
		AbortWithError(c, err)
		return 0, false
	}
}
