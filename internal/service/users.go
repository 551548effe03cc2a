package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/policy"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

var userTracer = otel.Tracer("service/users")

// UserService handles account management.
type UserService struct {
	store   port.UserStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store port.UserStore, metrics *observability.Metrics, logger *zap.Logger) *UserService {
	return &UserService{store: store, metrics: metrics, logger: logger}
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context, p domain.Principal) ([]domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.List")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionListAll, policy.Resource{Kind: domain.ResourceUser})); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// Get returns one profile: self-service or admin.
func (s *UserService) Get(ctx context.Context, p domain.Principal, userID string) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Get")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionRead, policy.Resource{Kind: domain.ResourceUser, OwnerID: userID})); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}

// Update revises the profile fields a user may change about themselves.
func (s *UserService) Update(ctx context.Context, p domain.Principal, userID string, req *domain.UpdateUserRequest) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Update")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionUpdate, policy.Resource{Kind: domain.ResourceUser, OwnerID: userID})); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	updated, err := s.store.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", userID))
	return updated, nil
}

// Delete removes an account. Admin only.
func (s *UserService) Delete(ctx context.Context, p domain.Principal, userID string) error {
	ctx, span := userTracer.Start(ctx, "UserService.Delete")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionDelete, policy.Resource{Kind: domain.ResourceUser, OwnerID: userID})); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", userID), zap.String("by", p.ID))
	return nil
}
