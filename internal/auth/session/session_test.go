package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin2",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionRoleGating(t *testing.T) {
	admin := New("tok", userdomain.User{ID: 1, Username: "admin2", Role: userdomain.RoleAdmin}, time.Time{})
	user := New("tok", userdomain.User{ID: 2, Username: "user1", Role: userdomain.RoleUser}, time.Time{})

	assert.True(t, admin.IsAdmin())
	assert.False(t, user.IsAdmin())
	assert.Equal(t, userdomain.RoleUser, user.Role())
	assert.NotEqual(t, admin.ID, user.ID)
}

func TestSessionIsAuthenticated(t *testing.T) {
	sess := New("tok", userdomain.User{ID: 1}, testNow.Add(time.Hour))
	assert.True(t, sess.IsAuthenticated(testNow))
	assert.False(t, sess.IsAuthenticated(testNow.Add(time.Hour)))
	assert.False(t, Session{}.IsAuthenticated(testNow))
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	sess := New("tok", userdomain.User{ID: 1}, time.Time{})
	got, ok := FromContext(WithContext(context.Background(), sess))
	require.True(t, ok)
	assert.Equal(t, sess, got)
}

func TestExpiryFromToken(t *testing.T) {
	fallback := testNow.Add(24 * time.Hour)

	assert.Equal(t, fallback, ExpiryFromToken("not-a-jwt", fallback))

	early := testNow.Add(time.Hour).Truncate(time.Second)
	assert.True(t, early.Equal(ExpiryFromToken(signedToken(t, early), fallback)))

	late := testNow.Add(48 * time.Hour)
	assert.Equal(t, fallback, ExpiryFromToken(signedToken(t, late), fallback))
}

func TestMemoryStoreExpires(t *testing.T) {
	clk := clock.NewFakeClock(testNow)
	store := NewMemoryStore(clk)
	ctx := context.Background()

	sess := New("tok", userdomain.User{ID: 1}, testNow.Add(time.Minute))
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)

	clk.Advance(2 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clk := clock.NewFakeClock(testNow)
	mgr := NewManager(config.Config{SessionTTL: time.Hour}, NewMemoryStore(clk), clk)
	user := userdomain.User{ID: 1, Username: "admin2", Role: userdomain.RoleAdmin}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	sess, err := mgr.Start(c, "opaque-token", user)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), sess.ExpiresAt)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(rec2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	c2.Request.AddCookie(cookies[0])

	resolved, err := mgr.Resolve(c2)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, resolved.ID)
	assert.True(t, resolved.IsAdmin())

	require.NoError(t, mgr.Destroy(context.Background(), c2))
	_, err = mgr.Resolve(c2)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clk := clock.NewFakeClock(testNow)
	mgr := NewManager(config.Config{SessionTTL: time.Hour}, NewMemoryStore(clk), clk)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	_, err := mgr.Start(c, signedToken(t, testNow.Add(-time.Minute)), userdomain.User{ID: 1})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
