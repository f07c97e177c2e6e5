package server

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/billingapi"
	obscontext "github.com/smallbiznis/billdesk/internal/observability/context"
	"go.uber.org/zap"
)

const contextSessionKey = "session"

// SessionRequired resolves the session cookie and puts the session on the
// request context. A 401 from the billing API ends the session.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := s.sessions.Resolve(c)
		if err != nil {
			if !errors.Is(err, session.ErrUnauthenticated) {
				s.log.Warn("session lookup failed", zap.Error(err))
			}
			s.sessions.Clear(c)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := session.WithContext(c.Request.Context(), sess)
		ctx = obscontext.WithActor(ctx, string(auditdomain.ActorTypeUser), strconv.FormatInt(sess.User.ID, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextSessionKey, sess)

		c.Next()

		if last := c.Errors.Last(); last != nil && billingapi.IsUnauthorized(last.Err) {
			s.log.Info("billing api rejected session token, signing out",
				zap.String("session_id", sess.ID),
				zap.String("username", sess.User.Username),
			)
			if err := s.sessions.Destroy(c.Request.Context(), c); err != nil {
				s.log.Warn("session destroy failed", zap.Error(err))
			}
		}
	}
}

// authorize gates the route on the capability object.action.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authzSvc.Authorize(c.Request.Context(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) (session.Session, bool) {
	return session.FromContext(c.Request.Context())
}
