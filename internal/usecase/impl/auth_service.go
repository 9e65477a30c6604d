// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo          repository.UserRepository
	sessionRepo       repository.RefreshSessionRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	googleAuthService service.OAuthAuthService
	logger            *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo          repository.UserRepository
	SessionRepo       repository.RefreshSessionRepository
	Hasher            service.PasswordHasher
	TokenService      service.TokenService
	GoogleAuthService service.OAuthAuthService
	Logger            *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:          params.UserRepo,
		sessionRepo:       params.SessionRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		googleAuthService: params.GoogleAuthService,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUp registers a new email/password account. It never issues tokens;
// the client signs in afterwards.
func (srv *authService) SignUp(ctx context.Context, input usecase.SignUpInput) (*usecase.SignUpOutput, error) {
	srv.log(ctx).Info("Starting sign-up", slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during sign-up", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during sign-up")
	}

	newUser := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleUser,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			srv.log(ctx).Warn("Sign-up with already registered email", slog.String("email", input.Email))

			return nil, domainerrors.ErrEmailAlreadyExists.WrapMessage("sign-up failed")
		}
		srv.log(ctx).Error("Failed to create user during sign-up", slog.Any("error", err))

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	srv.log(ctx).Debug("Sign-up completed", slog.Any("userID", newUser.ID))

	return &usecase.SignUpOutput{User: newUser}, nil
}

// SignIn verifies email/password credentials and issues a fresh token pair.
// Any previously issued refresh token for the user stops working because the
// stored session identifier is overwritten.
func (srv *authService) SignIn(ctx context.Context, input usecase.SignInInput) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Debug("Starting sign-in", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Sign-in failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("sign-in failed")
		}

		return nil, errors.Wrap(err, "failed to load user for sign-in")
	}

	// Accounts created through Google sign-in carry no password hash and
	// must not be reachable through the password path.
	if !user.HasPassword() || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Sign-in failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("sign-in failed")
	}

	output, err := srv.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Debug("User signed in successfully", slog.Any("userID", user.ID))

	return output, nil
}

// RefreshTokens exchanges a valid refresh token for a brand new pair.
// The presented token is consumed in the process, so each refresh token is
// usable exactly once.
func (srv *authService) RefreshTokens(ctx context.Context, input usecase.RefreshTokensInput) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh tokens")

	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrTokenExpired) {
			return nil, domainerrors.ErrTokenExpired.WrapMessage("refresh token expired")
		}
		srv.log(ctx).Warn("Refresh with malformed token", slog.Any("error", err))

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token validation failed")
	}

	if claims.Type != service.TokenTypeRefresh {
		srv.log(ctx).Warn("Access token presented at refresh", slog.Any("userID", claims.UserID))

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("token is not a refresh token")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The account was deleted after the token was issued.
			return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load user for token refresh")
	}

	consumed, err := srv.sessionRepo.Consume(ctx, claims.UserID, claims.RefreshTokenID)
	if err != nil {
		srv.log(ctx).Error("Session store failure during refresh", slog.Any("error", err))

		return nil, domainerrors.ErrSessionStoreUnavailable.WrapMessage("failed to consume refresh session")
	}
	if !consumed {
		// Either the token was already rotated or this is a replay of a
		// stolen token. Drop the live session so both parties must sign
		// in again.
		srv.log(ctx).Warn("Stale or replayed refresh token", slog.Any("userID", claims.UserID))

		if invalidateErr := srv.sessionRepo.Invalidate(ctx, claims.UserID); invalidateErr != nil {
			srv.log(ctx).Error("Failed to invalidate session after replay", slog.Any("error", invalidateErr))
		}

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token does not match the active session")
	}

	output, err := srv.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Debug("Tokens refreshed", slog.Any("userID", user.ID))

	return output, nil
}

// GoogleSignIn verifies a Google ID token and signs the user in, creating the
// account on first contact.
func (srv *authService) GoogleSignIn(ctx context.Context, input usecase.GoogleSignInInput) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Debug("Handling Google sign-in")

	oauthUser, err := srv.googleAuthService.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("Google ID token verification failed", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("failed to verify Google ID token")
	}

	user, err := srv.findOrCreateGoogleUser(ctx, oauthUser)
	if err != nil {
		return nil, err
	}

	output, err := srv.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Debug("Google sign-in completed", slog.Any("userID", user.ID))

	return output, nil
}

// Logout drops the user's active refresh session. The access token keeps
// working until it expires; only refresh is cut off.
func (srv *authService) Logout(ctx context.Context, input usecase.LogoutInput) error {
	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil || claims.Type != service.TokenTypeRefresh {
		srv.log(ctx).Warn("Logout with invalid refresh token", slog.Any("error", err))

		return domainerrors.ErrRefreshTokenInvalid.WrapMessage("logout failed")
	}

	if err := srv.sessionRepo.Invalidate(ctx, claims.UserID); err != nil {
		srv.log(ctx).Error("Failed to invalidate refresh session", slog.Any("error", err), slog.Any("userID", claims.UserID))

		return domainerrors.ErrSessionStoreUnavailable.WrapMessage("failed to invalidate refresh session")
	}
	srv.log(ctx).Info("User logged out", slog.Any("userID", claims.UserID))

	return nil
}

// findOrCreateGoogleUser resolves the Google subject to a local account,
// creating one on first sign-in.
func (srv *authService) findOrCreateGoogleUser(ctx context.Context, oauthUser *service.OAuthUser) (*entity.User, error) {
	user, err := srv.userRepo.FindByGoogleID(ctx, oauthUser.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to find user by google id")
	}

	srv.log(ctx).Info("Google user not found, creating new user", slog.String("email", oauthUser.Email))

	newUser := &entity.User{
		Name:     oauthUser.Name,
		Email:    oauthUser.Email,
		GoogleID: oauthUser.ID,
		Role:     entity.RoleUser,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// The email is already registered through the password path.
			// Accounts are never merged implicitly.
			return nil, domainerrors.ErrEmailAlreadyExists.WrapMessage("email already registered with a password")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create user for Google sign-in")
	}

	return newUser, nil
}

// issueTokenPair generates a fresh pair and stores the new refresh token
// identifier, rotating out whatever session was active before.
func (srv *authService) issueTokenPair(ctx context.Context, user *entity.User) (*usecase.TokenPairOutput, error) {
	pair, refreshTokenID, err := srv.tokenService.GenerateTokenPair(user)
	if err != nil {
		srv.log(ctx).Error("Failed to generate token pair", slog.Any("error", err), slog.Any("userID", user.ID))

		return nil, errors.Wrap(err, "failed to generate token pair")
	}

	if err := srv.sessionRepo.Put(ctx, user.ID, refreshTokenID); err != nil {
		srv.log(ctx).Error("Failed to store refresh session", slog.Any("error", err), slog.Any("userID", user.ID))

		return nil, domainerrors.ErrSessionStoreUnavailable.WrapMessage("failed to store refresh session")
	}

	return &usecase.TokenPairOutput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
