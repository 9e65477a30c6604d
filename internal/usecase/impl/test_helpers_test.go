package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository.UserRepository with the same
// duplicate-email semantics as the PostgreSQL implementation.
type fakeUserRepo struct {
	users   map[uuid.UUID]*entity.User
	failAll error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cloned := *user

	return &cloned, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, user := range r.users {
		if user.Email == email {
			cloned := *user

			return &cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, user := range r.users {
		if user.GoogleID != "" && user.GoogleID == googleID {
			cloned := *user

			return &cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if r.failAll != nil {
		return r.failAll
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cloned := *user
	r.users[user.ID] = &cloned

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	cloned := *user
	r.users[user.ID] = &cloned

	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)

	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*entity.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]*entity.User, 0, len(r.users))
	for _, user := range r.users {
		cloned := *user
		out = append(out, &cloned)
	}

	return out, nil
}

// fakeSessionRepo is an in-memory repository.RefreshSessionRepository.
type fakeSessionRepo struct {
	sessions map[uuid.UUID]string
	failAll  error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]string)}
}

func (r *fakeSessionRepo) Put(_ context.Context, userID uuid.UUID, tokenID string) error {
	if r.failAll != nil {
		return r.failAll
	}
	r.sessions[userID] = tokenID

	return nil
}

func (r *fakeSessionRepo) Validate(_ context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	if r.failAll != nil {
		return false, r.failAll
	}
	stored, ok := r.sessions[userID]

	return ok && stored == tokenID, nil
}

func (r *fakeSessionRepo) Invalidate(_ context.Context, userID uuid.UUID) error {
	if r.failAll != nil {
		return r.failAll
	}
	delete(r.sessions, userID)

	return nil
}

func (r *fakeSessionRepo) Consume(_ context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	if r.failAll != nil {
		return false, r.failAll
	}
	stored, ok := r.sessions[userID]
	if !ok || stored != tokenID {
		return false, nil
	}
	delete(r.sessions, userID)

	return true, nil
}

// fakeHasher hashes by prefixing, which keeps assertions readable.
type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService issues opaque token strings and remembers their claims,
// mimicking the JWT service without any cryptography.
type fakeTokenService struct {
	counter     int
	issued      map[string]*service.Claims
	generateErr error
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]*service.Claims)}
}

func (s *fakeTokenService) GenerateTokenPair(user *entity.User) (*service.TokenPair, string, error) {
	if s.generateErr != nil {
		return nil, "", s.generateErr
	}
	s.counter++
	refreshTokenID := uuid.NewString()

	accessToken := fmt.Sprintf("access-%d", s.counter)
	refreshToken := fmt.Sprintf("refresh-%d", s.counter)

	s.issued[accessToken] = &service.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
		Type:   service.TokenTypeAccess,
	}
	s.issued[refreshToken] = &service.Claims{
		UserID:         user.ID,
		RefreshTokenID: refreshTokenID,
		Type:           service.TokenTypeRefresh,
	}

	return &service.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, refreshTokenID, nil
}

func (s *fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	if tokenString == "expired-token" {
		return nil, domainerrors.ErrTokenExpired.WrapMessage("token has expired")
	}
	claims, ok := s.issued[tokenString]
	if !ok {
		return nil, errors.New("failed to parse token structure")
	}

	return claims, nil
}

func (s *fakeTokenService) AccessTokenTTL() time.Duration { return time.Hour }

func (s *fakeTokenService) RefreshTokenTTL() time.Duration { return 7 * 24 * time.Hour }

// fakeOAuthService resolves a fixed set of ID tokens.
type fakeOAuthService struct {
	tokens map[string]*service.OAuthUser
}

func newFakeOAuthService() *fakeOAuthService {
	return &fakeOAuthService{tokens: make(map[string]*service.OAuthUser)}
}

func (s *fakeOAuthService) VerifyIDToken(_ context.Context, idToken string) (*service.OAuthUser, error) {
	user, ok := s.tokens[idToken]
	if !ok {
		return nil, errors.New("failed to validate Google ID token")
	}

	return user, nil
}

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      *authService
	userRepo     *fakeUserRepo
	sessionRepo  *fakeSessionRepo
	hasher       *fakeHasher
	tokenService *fakeTokenService
	oauthService *fakeOAuthService
}

func createTestAuthService() authServiceFixtures {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	hasher := &fakeHasher{}
	tokenService := newFakeTokenService()
	oauthService := newFakeOAuthService()

	svc := NewAuthService(AuthServiceParams{
		UserRepo:          userRepo,
		SessionRepo:       sessionRepo,
		Hasher:            hasher,
		TokenService:      tokenService,
		GoogleAuthService: oauthService,
		Logger:            newDiscardLogger(),
	})

	return authServiceFixtures{
		service:      svc.(*authService),
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		tokenService: tokenService,
		oauthService: oauthService,
	}
}
