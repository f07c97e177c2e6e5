package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Repo      domain.Repository
	Dashboard *config.DashboardConfigHolder
}

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	dashboard *config.DashboardConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("user.service"),
		repo:      p.Repo,
		dashboard: p.Dashboard,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Authenticated, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.Authenticated{}, domain.ErrInvalidUsername
	}
	if req.Password == "" {
		return domain.Authenticated{}, domain.ErrInvalidPassword
	}

	resp, err := s.repo.Login(ctx, username, req.Password)
	if err != nil {
		if billingapi.IsUnauthorized(err) || billingapi.IsForbidden(err) {
			return domain.Authenticated{}, domain.ErrInvalidCredentials
		}
		return domain.Authenticated{}, err
	}

	// The login form collects an email in the username field.
	email := ""
	if strings.Contains(username, "@") {
		email = username
	}
	return s.authenticated(resp, email)
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Authenticated, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 4 {
		return domain.Authenticated{}, domain.ErrInvalidUsername
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Authenticated{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return domain.Authenticated{}, domain.ErrInvalidPassword
	}

	resp, err := s.repo.Register(ctx, username, email, req.Password)
	if err != nil {
		return domain.Authenticated{}, err
	}
	return s.authenticated(resp, email)
}

func (s *Service) authenticated(resp domain.AuthResponse, email string) (domain.Authenticated, error) {
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return domain.Authenticated{}, domain.ErrInvalidCredentials
	}
	role, ok := domain.ParseRole(resp.Role)
	if !ok {
		s.log.Warn("login returned unknown role", zap.String("role", resp.Role))
		return domain.Authenticated{}, domain.ErrInvalidRole
	}

	user := domain.User{
		ID:       1,
		Username: strings.TrimSpace(resp.Username),
		Email:    email,
		Role:     role,
	}
	if known, found := s.lookup(user.Username); found {
		user.ID = known.ID
		if user.Email == "" {
			user.Email = known.Email
		}
	}
	return domain.Authenticated{Token: token, User: user}, nil
}

// lookup resolves the numeric id for username from the configured user directory.
// The billing API login reply does not carry one.
func (s *Service) lookup(username string) (domain.User, bool) {
	for _, u := range s.fallbackUsers() {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, username) {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *Service) Me(ctx context.Context) (domain.Identity, error) {
	return s.repo.Me(ctx)
}

// List returns the billing API user directory, or the configured fallback
// directory when the endpoint is missing, forbidden or failing.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err == nil {
		if users == nil {
			users = []domain.User{}
		}
		return users, nil
	}

	switch status := billingapi.StatusCode(err); status {
	case http.StatusNotFound, http.StatusForbidden:
		s.log.Warn("users endpoint unavailable, using fallback users", zap.Int("status", status))
	default:
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Warn("error loading users, using fallback users", zap.Error(err))
	}
	return s.fallbackUsers(), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (domain.User, error) {
	if id <= 0 {
		return domain.User{}, domain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) fallbackUsers() []domain.User {
	cfg := config.DefaultDashboardConfig()
	if s.dashboard != nil {
		cfg = s.dashboard.Get()
	}
	users := make([]domain.User, 0, len(cfg.FallbackUsers))
	for _, u := range cfg.FallbackUsers {
		role, _ := domain.ParseRole(u.Role)
		users = append(users, domain.User{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     role,
		})
	}
	return users
}
