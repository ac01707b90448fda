package service

import (
	"context"
	"fmt"
	"time"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/models"
	"commerce-backend/internal/util"

	"go.uber.org/zap"
)

// UserService handles user CRUD
type UserService struct {
	store    UserStore
	cache    QueryCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store UserStore, queryCache QueryCache, cacheTTL time.Duration) *UserService {
	return &UserService{
		store:    store,
		cache:    queryCache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// CreateUserRequest represents a request to register a user
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// UpdateUserRequest carries optional profile updates
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}

// CreateUser registers a user, rejecting duplicate email addresses
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.CreateUser")
	defer span.End()

	existing, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, &ValidationError{Field: "email", Reason: "already registered"}
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID))
	s.invalidateUserList(ctx)

	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user"}
	}
	return user, nil
}

// ListUsers retrieves all users through the query cache
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.cache.GetOrCompute(ctx, cache.KeyAllUsers, s.cacheTTL, &users,
		func(ctx context.Context) (interface{}, error) {
			return s.store.GetUsers(ctx)
		})
	return users, err
}

// UpdateUser applies the provided profile fields
func (s *UserService) UpdateUser(ctx context.Context, userID int64, req *UpdateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateUser")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user"}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		other, err := s.store.GetUserByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if other != nil {
			return nil, &ValidationError{Field: "email", Reason: "already registered"}
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", zap.Int64("user_id", user.ID))
	s.invalidateUserList(ctx)

	return user, nil
}

func (s *UserService) invalidateUserList(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.KeyAllUsers); err != nil {
		s.logger.Warn("Failed to invalidate user list cache", zap.Error(err))
	}
}
