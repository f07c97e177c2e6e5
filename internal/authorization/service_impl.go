package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	return newEnforcer(adapter)
}

func newEnforcer(adapter *gormadapter.Adapter) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, object, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, err := s.subjectFor(ctx)
	if err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, subject, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) Capabilities(ctx context.Context) ([]string, error) {
	subject, err := s.subjectFor(ctx)
	if err != nil {
		return nil, err
	}

	perms, err := s.enforcer.GetImplicitPermissionsForUser(subject)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, rule := range perms {
		if len(rule) < 3 {
			continue
		}
		capability := rule[1] + "." + rule[2]
		if _, ok := seen[capability]; ok {
			continue
		}
		seen[capability] = struct{}{}
		out = append(out, capability)
	}
	sort.Strings(out)
	return out, nil
}

// subjectFor links the session user to the casbin role of its current role,
// dropping any stale link left by an earlier session.
func (s *ServiceImpl) subjectFor(ctx context.Context) (string, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || strings.TrimSpace(sess.User.Username) == "" {
		return "", ErrUnauthenticated
	}

	subject := fmt.Sprintf("user:%s", strings.ToLower(strings.TrimSpace(sess.User.Username)))
	if err := s.ensureGrouping(subject, roleName(sess.Role())); err != nil {
		return "", err
	}
	return subject, nil
}

func (s *ServiceImpl) ensureGrouping(subject, role string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == role {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, role)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject, object, action string) {
	s.log.Info("authorization denied",
		zap.String("subject", subject),
		zap.String("object", object),
		zap.String("action", action),
	)
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, auditdomain.ActionAuthorizationDenied, "authorization", object, map[string]any{
		"object":  object,
		"action":  action,
		"subject": subject,
	})
}

func roleName(role userdomain.Role) string {
	if role == userdomain.RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Users manage their own book of business.
		{RoleUser, ObjectDashboard, ActionView},
		{RoleUser, ObjectCustomer, ActionView},
		{RoleUser, ObjectCustomer, ActionCreate},
		{RoleUser, ObjectCustomer, ActionUpdate},
		{RoleUser, ObjectPlan, ActionView},
		{RoleUser, ObjectSubscription, ActionView},
		{RoleUser, ObjectSubscription, ActionCreate},
		{RoleUser, ObjectSubscription, ActionUpdate},
		{RoleUser, ObjectSubscription, ActionRenew},
		{RoleUser, ObjectInvoice, ActionView},
		{RoleUser, ObjectInvoice, ActionPay},
		{RoleUser, ObjectPayment, ActionView},

		{RoleAdmin, ObjectCustomer, ActionDelete},
		{RoleAdmin, ObjectCustomer, ActionAssignOwner},
		{RoleAdmin, ObjectPlan, ActionCreate},
		{RoleAdmin, ObjectPlan, ActionUpdate},
		{RoleAdmin, ObjectPlan, ActionDelete},
		{RoleAdmin, ObjectSubscription, ActionDelete},
		{RoleAdmin, ObjectUser, ActionView},
		{RoleAdmin, ObjectAuditLog, ActionView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// Administrators can do everything users can.
	_, err := enforcer.AddGroupingPolicy(RoleAdmin, RoleUser)
	return err
}
