package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/billdesk/internal/auth/session"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"github.com/smallbiznis/billdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func ctxFor(username string, role userdomain.Role) context.Context {
	sess := session.New("token", userdomain.User{ID: 1, Username: username, Role: role}, time.Now().Add(time.Hour))
	return session.WithContext(context.Background(), sess)
}

func TestAuthorizeUserRole(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("user1", userdomain.RoleUser)

	assert.NoError(t, svc.Authorize(ctx, ObjectInvoice, ActionPay))
	assert.NoError(t, svc.Authorize(ctx, ObjectCustomer, ActionCreate))
	assert.ErrorIs(t, svc.Authorize(ctx, ObjectPlan, ActionCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, ObjectAuditLog, ActionView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, ObjectCustomer, ActionAssignOwner), ErrForbidden)
}

func TestAuthorizeAdminInheritsUser(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("admin2", userdomain.RoleAdmin)

	assert.NoError(t, svc.Authorize(ctx, ObjectPlan, ActionDelete))
	assert.NoError(t, svc.Authorize(ctx, ObjectInvoice, ActionPay))
	assert.NoError(t, svc.Authorize(ctx, ObjectUser, ActionView))
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Authorize(ctxFor("sam", userdomain.RoleAdmin), ObjectPlan, ActionCreate))
	assert.ErrorIs(t, svc.Authorize(ctxFor("sam", userdomain.RoleUser), ObjectPlan, ActionCreate), ErrForbidden)
}

func TestAuthorizeRequiresSession(t *testing.T) {
	svc := newTestService(t)

	assert.ErrorIs(t, svc.Authorize(context.Background(), ObjectInvoice, ActionView), ErrUnauthenticated)
	assert.ErrorIs(t, svc.Authorize(ctxFor("x", userdomain.RoleUser), "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctxFor("x", userdomain.RoleUser), ObjectInvoice, " "), ErrInvalidAction)
}

func TestCapabilities(t *testing.T) {
	svc := newTestService(t)

	userCaps, err := svc.Capabilities(ctxFor("user1", userdomain.RoleUser))
	require.NoError(t, err)
	assert.Contains(t, userCaps, "invoice.pay")
	assert.NotContains(t, userCaps, "plan.create")

	adminCaps, err := svc.Capabilities(ctxFor("admin2", userdomain.RoleAdmin))
	require.NoError(t, err)
	assert.Contains(t, adminCaps, "plan.create")
	assert.Contains(t, adminCaps, "invoice.pay")
	assert.Contains(t, adminCaps, "audit_log.view")
	assert.IsNonDecreasing(t, adminCaps)
}
