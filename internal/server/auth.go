package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionView struct {
	User         userdomain.User `json:"user"`
	Role         userdomain.Role `json:"role"`
	IsAdmin      bool            `json:"isAdmin"`
	ExpiresAt    string          `json:"expiresAt,omitempty"`
	Capabilities []string        `json:"capabilities"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if res := s.guard.AllowLogin(c.Request.Context(), c.ClientIP()); !res.Allowed {
		if res.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
		}
		AbortWithError(c, ErrTooManyRequest)
		return
	}

	username := strings.TrimSpace(req.Username)
	result, err := s.userSvc.Login(c.Request.Context(), userdomain.LoginRequest{
		Username: username,
		Password: req.Password,
	})
	if err != nil {
		s.audit(c, auditdomain.ActionLogin, "user", "", map[string]any{
			"username": username,
			"success":  false,
		})
		abortOperation(c, err, "Credenciales incorrectas")
		return
	}

	s.startSession(c, result, auditdomain.ActionLogin)
}

func (s *Server) Register(c *gin.Context) {
	var req RegisterRequest
	if !s.bindJSON(c, &req) {
		return
	}

	result, err := s.userSvc.Register(c.Request.Context(), userdomain.RegisterRequest{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		abortOperation(c, err, "Error al crear la cuenta")
		return
	}

	s.startSession(c, result, auditdomain.ActionLogin)
}

func (s *Server) startSession(c *gin.Context, result userdomain.Authenticated, action string) {
	sess, err := s.sessions.Start(c, result.Token, result.User)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := session.WithContext(c.Request.Context(), sess)
	c.Request = c.Request.WithContext(ctx)
	s.audit(c, action, "user", strconv.FormatInt(sess.User.ID, 10), map[string]any{
		"username": sess.User.Username,
		"role":     string(sess.Role()),
		"success":  true,
	})

	view, err := s.sessionView(c, sess)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) Logout(c *gin.Context) {
	if sess, err := s.sessions.Resolve(c); err == nil {
		ctx := session.WithContext(c.Request.Context(), sess)
		c.Request = c.Request.WithContext(ctx)
		s.audit(c, auditdomain.ActionLogout, "user", strconv.FormatInt(sess.User.ID, 10), nil)
	}

	if err := s.sessions.Destroy(c.Request.Context(), c); err != nil {
		s.log.Warn("session destroy failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in operator. The billing API is asked to confirm the
// token; a stale role claim is corrected from its reply.
func (s *Server) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	identity, err := s.userSvc.Me(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !identity.Authenticated {
		if err := s.sessions.Destroy(c.Request.Context(), c); err != nil {
			s.log.Warn("session destroy failed", zap.Error(err))
		}
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if role, ok := identity.Role(); ok && role != sess.Role() {
		s.log.Info("session role differs from billing api",
			zap.String("username", sess.User.Username),
			zap.String("session_role", string(sess.Role())),
			zap.String("api_role", string(role)),
		)
		user := sess.User
		user.Role = role
		sess = session.Session{ID: sess.ID, Token: sess.Token, User: user, ExpiresAt: sess.ExpiresAt}
		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), sess))
	}

	view, err := s.sessionView(c, sess)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) sessionView(c *gin.Context, sess session.Session) (sessionView, error) {
	capabilities, err := s.authzSvc.Capabilities(c.Request.Context())
	if err != nil {
		return sessionView{}, err
	}
	view := sessionView{
		User:         sess.User,
		Role:         sess.Role(),
		IsAdmin:      sess.IsAdmin(),
		Capabilities: capabilities,
	}
	if !sess.ExpiresAt.IsZero() {
		view.ExpiresAt = sess.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return view, nil
}
