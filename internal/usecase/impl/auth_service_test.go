package impl

import (
	"context"
	"testing"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUpAndSignIn(t *testing.T, fixtures authServiceFixtures) *usecase.TokenPairOutput {
	t.Helper()
	ctx := context.Background()

	_, err := fixtures.service.SignUp(ctx, usecase.SignUpInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	pair, err := fixtures.service.SignIn(ctx, usecase.SignInInput{
		Email:    "test@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	return pair
}

func TestAuthService_SignUp_Success(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()

	output, err := fixtures.service.SignUp(ctx, usecase.SignUpInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "secret-password",
	})

	require.NoError(t, err)
	assert.Equal(t, "test@example.com", output.User.Email)
	assert.Equal(t, entity.RoleUser, output.User.Role)
	assert.Equal(t, "hashed:secret-password", output.User.PasswordHash)
	assert.NotZero(t, output.User.ID)
	// Sign-up never opens a session.
	assert.Empty(t, fixtures.sessionRepo.sessions)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	input := usecase.SignUpInput{Name: "Test User", Email: "test@example.com", Password: "secret-password"}

	_, err := fixtures.service.SignUp(ctx, input)
	require.NoError(t, err)

	_, err = fixtures.service.SignUp(ctx, input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyExists))
}

func TestAuthService_SignUp_HashFailure(t *testing.T) {
	fixtures := createTestAuthService()
	fixtures.hasher.hashErr = errors.New("bcrypt exploded")

	_, err := fixtures.service.SignUp(context.Background(), usecase.SignUpInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "secret-password",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
}

func TestAuthService_SignIn_Success(t *testing.T) {
	fixtures := createTestAuthService()

	pair := signUpAndSignIn(t, fixtures)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The refresh token's identifier is mirrored in the session store.
	claims, err := fixtures.tokenService.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.RefreshTokenID, fixtures.sessionRepo.sessions[claims.UserID])
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	fixtures := createTestAuthService()

	_, err := fixtures.service.SignIn(context.Background(), usecase.SignInInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	fixtures := createTestAuthService()
	signUpAndSignIn(t, fixtures)

	_, err := fixtures.service.SignIn(context.Background(), usecase.SignInInput{
		Email:    "test@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_SignIn_FederatedAccountHasNoPassword(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	fixtures.oauthService.tokens["good-id-token"] = &service.OAuthUser{
		ID:            "google-sub-1",
		Email:         "federated@example.com",
		Name:          "Federated User",
		EmailVerified: true,
	}
	_, err := fixtures.service.GoogleSignIn(ctx, usecase.GoogleSignInInput{IDToken: "good-id-token"})
	require.NoError(t, err)

	// Password sign-in against the federated account must not reveal that
	// the account exists without a password.
	_, err = fixtures.service.SignIn(ctx, usecase.SignInInput{
		Email:    "federated@example.com",
		Password: "",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_SignIn_RotatesPreviousSession(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	firstPair := signUpAndSignIn(t, fixtures)

	_, err := fixtures.service.SignIn(ctx, usecase.SignInInput{
		Email:    "test@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	// The first session's refresh token no longer matches the stored
	// identifier.
	_, err = fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: firstPair.RefreshToken,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshTokens_Success(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	pair := signUpAndSignIn(t, fixtures)

	newPair, err := fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: pair.RefreshToken,
	})

	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, newPair.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// The new pair refreshes fine.
	_, err = fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: newPair.RefreshToken,
	})
	require.NoError(t, err)
}

func TestAuthService_RefreshTokens_ReplayFails(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	pair := signUpAndSignIn(t, fixtures)

	_, err := fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)

	// Replaying the already consumed token fails and drops the live
	// session as a precaution.
	_, err = fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: pair.RefreshToken,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
	assert.Empty(t, fixtures.sessionRepo.sessions)
}

func TestAuthService_RefreshTokens_AccessTokenRejected(t *testing.T) {
	fixtures := createTestAuthService()
	pair := signUpAndSignIn(t, fixtures)

	_, err := fixtures.service.RefreshTokens(context.Background(), usecase.RefreshTokensInput{
		RefreshToken: pair.AccessToken,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshTokens_Expired(t *testing.T) {
	fixtures := createTestAuthService()

	_, err := fixtures.service.RefreshTokens(context.Background(), usecase.RefreshTokensInput{
		RefreshToken: "expired-token",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenExpired))
}

func TestAuthService_RefreshTokens_Garbage(t *testing.T) {
	fixtures := createTestAuthService()

	_, err := fixtures.service.RefreshTokens(context.Background(), usecase.RefreshTokensInput{
		RefreshToken: "not-a-token",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshTokens_DeletedUser(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	pair := signUpAndSignIn(t, fixtures)

	claims, err := fixtures.tokenService.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, fixtures.userRepo.Delete(ctx, claims.UserID))

	_, err = fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: pair.RefreshToken,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_GoogleSignIn_CreatesUserOnce(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	fixtures.oauthService.tokens["good-id-token"] = &service.OAuthUser{
		ID:            "google-sub-1",
		Email:         "federated@example.com",
		Name:          "Federated User",
		EmailVerified: true,
	}

	_, err := fixtures.service.GoogleSignIn(ctx, usecase.GoogleSignInInput{IDToken: "good-id-token"})
	require.NoError(t, err)
	_, err = fixtures.service.GoogleSignIn(ctx, usecase.GoogleSignInInput{IDToken: "good-id-token"})
	require.NoError(t, err)

	assert.Len(t, fixtures.userRepo.users, 1)
	user, err := fixtures.userRepo.FindByGoogleID(ctx, "google-sub-1")
	require.NoError(t, err)
	assert.Equal(t, "federated@example.com", user.Email)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.False(t, user.HasPassword())
}

func TestAuthService_GoogleSignIn_InvalidToken(t *testing.T) {
	fixtures := createTestAuthService()

	_, err := fixtures.service.GoogleSignIn(context.Background(), usecase.GoogleSignInInput{
		IDToken: "bogus",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthTokenInvalid))
}

func TestAuthService_GoogleSignIn_EmailTakenByPasswordAccount(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	signUpAndSignIn(t, fixtures)
	fixtures.oauthService.tokens["good-id-token"] = &service.OAuthUser{
		ID:            "google-sub-1",
		Email:         "test@example.com",
		Name:          "Same Email",
		EmailVerified: true,
	}

	_, err := fixtures.service.GoogleSignIn(ctx, usecase.GoogleSignInInput{IDToken: "good-id-token"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyExists))
}

func TestAuthService_Logout_InvalidatesSession(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	pair := signUpAndSignIn(t, fixtures)

	err := fixtures.service.Logout(ctx, usecase.LogoutInput{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.Empty(t, fixtures.sessionRepo.sessions)

	_, err = fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: pair.RefreshToken,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_Logout_InvalidToken(t *testing.T) {
	fixtures := createTestAuthService()

	err := fixtures.service.Logout(context.Background(), usecase.LogoutInput{RefreshToken: "garbage"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_SessionStoreDown(t *testing.T) {
	fixtures := createTestAuthService()
	ctx := context.Background()
	pair := signUpAndSignIn(t, fixtures)
	fixtures.sessionRepo.failAll = errors.New("connection refused")

	_, err := fixtures.service.SignIn(ctx, usecase.SignInInput{
		Email:    "test@example.com",
		Password: "secret-password",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionStoreUnavailable))

	_, err = fixtures.service.RefreshTokens(ctx, usecase.RefreshTokensInput{
		RefreshToken: pair.RefreshToken,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionStoreUnavailable))
}
