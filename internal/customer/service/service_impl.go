package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("customer.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return []domain.Customer{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []domain.Customer{}
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	if id <= 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, err
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	payload, err := s.payload(ctx, req.Name, req.Email, req.Phone, req.Address, req.OwnerID)
	if err != nil {
		return domain.Customer{}, err
	}
	customer, err := s.repo.Insert(ctx, payload)
	if err != nil {
		return domain.Customer{}, err
	}
	s.log.Info("customer created", zap.Int64("customer_id", customer.ID), zap.Int64("owner_id", payload.UserID))
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	if req.ID <= 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}
	payload, err := s.payload(ctx, req.Name, req.Email, req.Phone, req.Address, req.OwnerID)
	if err != nil {
		return domain.Customer{}, err
	}
	customer, err := s.repo.Update(ctx, req.ID, payload)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if billingapi.IsNotFound(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) payload(ctx context.Context, name, email, phone, address string, ownerID int64) (domain.Payload, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Payload{}, domain.ErrInvalidName
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Payload{}, domain.ErrInvalidEmail
	}

	owner, err := resolveOwner(ctx, ownerID)
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
		UserID:  owner,
	}, nil
}

// resolveOwner lets administrators assign any user; everyone else owns what they write.
func resolveOwner(ctx context.Context, requested int64) (int64, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || sess.User.ID <= 0 {
		return 0, domain.ErrInvalidOwner
	}
	if sess.IsAdmin() && requested > 0 {
		return requested, nil
	}
	return sess.User.ID, nil
}
