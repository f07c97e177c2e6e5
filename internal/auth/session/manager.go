package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
)

const DefaultCookieName = "_sid"

var ErrUnauthenticated = errors.New("unauthenticated")

// Manager manages auth session cookies and their backing store.
type Manager struct {
	cookieName string
	secure     bool
	ttl        time.Duration
	store      Store
	clock      clock.Clock
}

func NewManager(cfg config.Config, store Store, clk clock.Clock) *Manager {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
		ttl:        ttl,
		store:      store,
		clock:      clk,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// Start persists a new session for token and sets the cookie.
func (m *Manager) Start(c *gin.Context, token string, user userdomain.User) (Session, error) {
	now := m.clock.Now()
	expiresAt := ExpiryFromToken(token, now.Add(m.ttl))
	if !expiresAt.After(now) {
		return Session{}, ErrUnauthenticated
	}

	sess := New(token, user, expiresAt)
	if err := m.store.Save(c.Request.Context(), sess); err != nil {
		return Session{}, err
	}
	m.Set(c, sess.ID, expiresAt)
	return sess, nil
}

// Resolve loads the session referenced by the request cookie.
func (m *Manager) Resolve(c *gin.Context) (Session, error) {
	id, ok := m.ReadID(c)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	sess, err := m.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, err
	}
	if !sess.IsAuthenticated(m.clock.Now()) {
		_ = m.store.Delete(c.Request.Context(), id)
		return Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// Destroy removes the session from the store and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, c *gin.Context) error {
	defer m.Clear(c)
	id, ok := m.ReadID(c)
	if !ok {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) ReadID(c *gin.Context) (string, bool) {
	id, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

func (m *Manager) Set(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(m.clock.Now()).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
