package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListUsers feeds the owner selector of the customer form.
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		abortOperation(c, err, "Error al cargar usuarios")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}
