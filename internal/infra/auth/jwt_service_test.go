package auth

import (
	"testing"
	"time"

	"gatekeeper/config"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "access-secret-for-tests"
	cfg.SecretKey.Refresh = "refresh-secret-for-tests"
	cfg.Token.AccessTTL = time.Hour
	cfg.Token.RefreshTTL = 7 * 24 * time.Hour

	return cfg
}

func newRegisteredClaims(userID uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()

	return jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func newTestUser() *entity.User {
	return &entity.User{
		ID:    uuid.New(),
		Name:  "Test User",
		Email: "test@example.com",
		Role:  entity.RoleUser,
	}
}

func TestJWTService_New_MissingSecrets(t *testing.T) {
	cfg := newTestJWTConfig()
	cfg.SecretKey.Refresh = ""

	_, err := NewJWTService(cfg)

	assert.Error(t, err)
}

func TestJWTService_GenerateTokenPair_RoundTrip(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig())
	require.NoError(t, err)

	user := newTestUser()
	pair, refreshTokenID, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, refreshTokenID)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	accessClaims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, accessClaims.UserID)
	assert.Equal(t, user.Email, accessClaims.Email)
	assert.Equal(t, entity.RoleUser.String(), accessClaims.Role)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.Type)
	assert.Empty(t, accessClaims.RefreshTokenID)

	refreshClaims, err := svc.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshClaims.UserID)
	assert.Equal(t, service.TokenTypeRefresh, refreshClaims.Type)
	assert.Equal(t, refreshTokenID, refreshClaims.RefreshTokenID)
	assert.Empty(t, refreshClaims.Email)
}

func TestJWTService_GenerateTokenPair_FreshIdentifierEachCall(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig())
	require.NoError(t, err)

	user := newTestUser()
	_, firstID, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	_, secondID, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	cfg := newTestJWTConfig()
	cfg.Token.AccessTTL = -time.Minute
	cfg.Token.RefreshTTL = -time.Minute

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	pair, _, err := svc.GenerateTokenPair(newTestUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenExpired))

	_, err = svc.ValidateToken(pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenExpired))
}

func TestJWTService_ValidateToken_Garbage(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig())
	require.NoError(t, err)

	_, err = svc.ValidateToken("not.a.token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token structure")
}

func TestJWTService_ValidateToken_SecretSeparation(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig())
	require.NoError(t, err)

	// A token claiming to be a refresh token but signed with the access
	// secret must fail signature verification.
	user := newTestUser()
	forged, err := signToken(&jwtClaims{
		RefreshTokenID:   uuid.NewString(),
		Type:             service.TokenTypeRefresh,
		RegisteredClaims: newRegisteredClaims(user.ID, time.Hour),
	}, []byte("access-secret-for-tests"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)

	assert.Error(t, err)
}

func TestJWTService_ValidateToken_UnknownType(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig())
	require.NoError(t, err)

	forged, err := signToken(&jwtClaims{
		Type:             "session",
		RegisteredClaims: newRegisteredClaims(uuid.New(), time.Hour),
	}, []byte("access-secret-for-tests"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)

	assert.Error(t, err)
}

func TestJWTService_TTLGetters(t *testing.T) {
	cfg := newTestJWTConfig()
	cfg.Token.AccessTTL = 15 * time.Minute
	cfg.Token.RefreshTTL = 48 * time.Hour

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, svc.AccessTokenTTL())
	assert.Equal(t, 48*time.Hour, svc.RefreshTokenTTL())
}
