package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string, revokedAt time.Time) error
}

// BootstrapAdmin describes the account seeded into an empty users table.
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: newValidator(), logger: logger, now: time.Now}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, actor models.Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if err := authorize(actor, policy.OpManageUsers); err != nil {
		return nil, nil, err
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, models.NewPagination(filter.Page, filter.PageSize, 20, 100, total), nil
}

// ListOfficers returns the active officers that can be assigned to companies.
func (s *UserService) ListOfficers(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := authorize(actor, policy.OpAssignOfficer); err != nil {
		return nil, err
	}
	role := models.RoleOfficer
	active := true
	users, _, err := s.repo.List(ctx, models.UserFilter{Role: &role, Active: &active, PageSize: 100, SortBy: "username", SortOrder: "ASC"})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list officers")
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	if err := authorize(actor, policy.OpManageUsers); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Create adds a new user.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := authorize(actor, policy.OpManageUsers); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid create user payload", map[string]string{"role": "must be one of ADMIN, MANAGER, OFFICER"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
		Active:   active,
	}
	if err := s.create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(role)), zap.String("actor_id", actor.UserID))
	return user, nil
}

// Update modifies the user attributes. Deactivation ends the user's sessions.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := authorize(actor, policy.OpManageUsers); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update payload")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := user.Active

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		role, ok := models.ParseRole(*req.Role)
		if !ok {
			return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid update payload", map[string]string{"role": "must be one of ADMIN, MANAGER, OFFICER"})
		}
		user.Role = role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if id == actor.UserID && (!user.Active || user.Role != models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "administrators cannot demote or deactivate themselves")
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.logger.Error("user update collides with existing account", zap.String("user_id", id), zap.Error(err))
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "username or email already exists")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
		}
	}
	if wasActive && !user.Active {
		s.revokeSessions(ctx, id)
	}
	s.logger.Info("user updated", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return user, nil
}

// Delete performs a soft delete (inactive) on a user.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := authorize(actor, policy.OpManageUsers); err != nil {
		return err
	}
	if id == actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "administrators cannot deactivate themselves")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.revokeSessions(ctx, id)
	s.logger.Info("user deactivated", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// Bootstrap seeds the first admin account when the users table is empty. It is a no-op otherwise or
// when no credentials are configured.
func (s *UserService) Bootstrap(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	if admin.Username == "" || admin.Password == "" {
		return false, nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	if count > 0 {
		return false, nil
	}
	email := admin.Email
	if email == "" {
		email = admin.Username + "@localhost"
	}
	user := &models.User{
		Username: admin.Username,
		Email:    strings.ToLower(email),
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := s.create(ctx, user, admin.Password); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return true, nil
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user.PasswordHash = string(passwordHash)
	user.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Error("user collides with existing account", zap.String("username", user.Username), zap.Error(err))
			return appErrors.Clone(appErrors.ErrDuplicate, "username or email already exists")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *UserService) revokeSessions(ctx context.Context, id string) {
	if err := s.repo.RevokeUserRefreshTokens(ctx, id, s.now().UTC()); err != nil {
		s.logger.Warn("failed to revoke refresh tokens of deactivated user", zap.String("user_id", id), zap.Error(err))
	}
}
