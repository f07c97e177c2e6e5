package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/plan/domain"
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
		log:  p.Log.Named("plan.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Plan, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return []domain.Plan{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []domain.Plan{}
	}
	return items, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Plan, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Plan, 0, len(items))
	for _, item := range items {
		if item.Active {
			active = append(active, item)
		}
	}
	return active, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (domain.Plan, error) {
	if id <= 0 {
		return domain.Plan{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req domain.UpsertPlanRequest) (domain.Plan, error) {
	payload, err := toPayload(req)
	if err != nil {
		return domain.Plan{}, err
	}
	plan, err := s.repo.Insert(ctx, payload)
	if err != nil {
		return domain.Plan{}, err
	}
	s.log.Info("plan created", zap.Int64("plan_id", plan.ID), zap.String("billing_cycle", string(plan.BillingCycle)))
	return plan, nil
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpsertPlanRequest) (domain.Plan, error) {
	if id <= 0 {
		return domain.Plan{}, domain.ErrInvalidID
	}
	payload, err := toPayload(req)
	if err != nil {
		return domain.Plan{}, err
	}
	plan, err := s.repo.Update(ctx, id, payload)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}
	return plan, nil
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

func toPayload(req domain.UpsertPlanRequest) (domain.Payload, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Payload{}, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return domain.Payload{}, domain.ErrInvalidPrice
	}
	if !req.BillingCycle.Valid() {
		return domain.Payload{}, domain.ErrInvalidBillingCycle
	}
	return domain.Payload{
		Name:         name,
		Price:        json.Number(req.Price.String()),
		BillingCycle: req.BillingCycle,
		Active:       req.Active,
	}, nil
}
