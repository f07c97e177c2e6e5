package session

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
)

// Session is the authenticated operator: the billing API bearer token plus
// the user it was issued to. Values are never mutated after creation.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	User      userdomain.User `json:"user"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func New(token string, user userdomain.User, expiresAt time.Time) Session {
	return Session{
		ID:        ulid.Make().String(),
		Token:     strings.TrimSpace(token),
		User:      user,
		ExpiresAt: expiresAt,
	}
}

func (s Session) Role() userdomain.Role {
	return s.User.Role
}

func (s Session) IsAdmin() bool {
	return s.User.IsAdmin()
}

// IsAuthenticated reports whether the session carries a token that has not expired at now.
func (s Session) IsAuthenticated(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

type ctxKey struct{}

func WithContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	sess, ok := ctx.Value(ctxKey{}).(Session)
	return sess, ok
}
