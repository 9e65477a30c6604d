package impl

import (
	"context"
	"log/slog"

	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.RefreshSessionRepository
	logger      *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	SessionRepo repository.RefreshSessionRepository
	Logger      *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:    params.UserRepo,
		sessionRepo: params.SessionRepo,
		logger:      params.Logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile returns the user identified by the access token.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return srv.findUser(ctx, userID)
}

// UpdateProfile modifies the caller's own profile.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name

	if err := srv.userRepo.Update(ctx, user); err != nil {
		srv.log(ctx).Error("Failed to update user profile", slog.Any("error", err), slog.Any("userID", userID))

		return nil, domainerrors.ErrUserUpdateFailed.WrapMessage("failed to update user profile")
	}
	srv.log(ctx).Debug("User profile updated", slog.Any("userID", userID))

	return user, nil
}

// DeleteAccount removes the caller's account. The refresh session is dropped
// first so a concurrent refresh cannot resurrect tokens for a deleted user.
func (srv *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return srv.deleteUser(ctx, userID)
}

// ListUsers returns all users ordered by creation time.
func (srv *userService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to list users", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// GetUser returns a single user by ID.
func (srv *userService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return srv.findUser(ctx, id)
}

// DeleteUser removes a user by ID.
func (srv *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return srv.deleteUser(ctx, id)
}

func (srv *userService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("user lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

func (srv *userService) deleteUser(ctx context.Context, id uuid.UUID) error {
	if err := srv.sessionRepo.Invalidate(ctx, id); err != nil {
		srv.log(ctx).Error("Failed to invalidate session before deletion", slog.Any("error", err), slog.Any("userID", id))

		return domainerrors.ErrSessionStoreUnavailable.WrapMessage("failed to invalidate refresh session")
	}

	if err := srv.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound.WrapMessage("user deletion failed")
		}
		srv.log(ctx).Error("Failed to delete user", slog.Any("error", err), slog.Any("userID", id))

		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user")
	}
	srv.log(ctx).Info("User deleted", slog.Any("userID", id))

	return nil
}
