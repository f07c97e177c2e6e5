package service

import (
	"context"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/reconcile"
	"github.com/smallbiznis/billdesk/internal/subscription/domain"
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
		log:  p.Log.Named("subscription.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Subscription, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return []domain.Subscription{}, nil
		}
		return nil, err
	}
	return s.complete(items), nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Subscription, error) {
	if customerID <= 0 {
		return nil, domain.ErrInvalidCustomer
	}
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return []domain.Subscription{}, nil
		}
		return nil, err
	}
	return s.complete(items), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (domain.Subscription, error) {
	if id <= 0 {
		return domain.Subscription{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}
	return reconcile.CompleteSubscription(item), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	if req.PlanID <= 0 {
		return domain.Subscription{}, domain.ErrInvalidPlan
	}
	if req.CustomerID < 0 {
		return domain.Subscription{}, domain.ErrInvalidCustomer
	}
	item, err := s.repo.Insert(ctx, domain.CreatePayload{
		CustomerID: req.CustomerID,
		PlanID:     req.PlanID,
	})
	if err != nil {
		return domain.Subscription{}, err
	}
	s.log.Info("subscription created",
		zap.Int64("subscription_id", item.ID),
		zap.Int64("plan_id", req.PlanID),
	)
	return reconcile.CompleteSubscription(item), nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSubscriptionRequest) (domain.Subscription, error) {
	if req.ID <= 0 {
		return domain.Subscription{}, domain.ErrInvalidID
	}
	if req.PlanID < 0 {
		return domain.Subscription{}, domain.ErrInvalidPlan
	}
	if req.Status != "" && !req.Status.Valid() {
		return domain.Subscription{}, domain.ErrInvalidStatus
	}

	status := req.Status
	if status == "" {
		// The billing API requires a status on every update.
		current, err := s.GetByID(ctx, req.ID)
		if err != nil {
			return domain.Subscription{}, err
		}
		status = current.Status
	}

	item, err := s.repo.Update(ctx, req.ID, domain.UpdatePayload{
		PlanID: req.PlanID,
		Status: status,
	})
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}
	return reconcile.CompleteSubscription(item), nil
}

func (s *Service) Renew(ctx context.Context, id int64) (domain.Subscription, error) {
	if id <= 0 {
		return domain.Subscription{}, domain.ErrInvalidID
	}
	item, err := s.repo.Renew(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}
	s.log.Info("subscription renewed", zap.Int64("subscription_id", id))
	if item.ID == 0 {
		return s.GetByID(ctx, id)
	}
	return reconcile.CompleteSubscription(item), nil
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

func (s *Service) complete(items []domain.Subscription) []domain.Subscription {
	out := make([]domain.Subscription, len(items))
	for i, item := range items {
		out[i] = reconcile.CompleteSubscription(item)
	}
	return out
}
