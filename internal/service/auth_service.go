package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendorx/marketplace/internal/auth"
	"github.com/vendorx/marketplace/internal/config"
	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/observability"
	"github.com/vendorx/marketplace/internal/repository"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// MinPasswordLength applies to signup and password changes.
const MinPasswordLength = 6

const demoLocation = "Demo Location"

// LoginInput carries login form values. Role may be empty.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// SignupInput carries registration form values.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Location string
}

// AuthResult is a freshly issued session for a user.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Users    repository.UserRepository
	Attempts repository.LoginAttemptStore
	Hasher   *auth.PasswordHasher
	Tokens   *auth.TokenManager
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users    repository.UserRepository
	attempts repository.LoginAttemptStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	metrics  *observability.Metrics
	logger   *zap.Logger

	demoEnabled  bool
	demoEmail    string
	demoPassword string

	maxFailures   int
	lockoutWindow time.Duration
	now           func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(cfg.BcryptCost)
	}
	return &AuthService{
		users:         deps.Users,
		attempts:      deps.Attempts,
		hasher:        hasher,
		tokens:        deps.Tokens,
		metrics:       deps.Metrics,
		logger:        logger,
		demoEnabled:   cfg.DemoLoginEnabled,
		demoEmail:     normalizeEmail(cfg.DemoEmail),
		demoPassword:  cfg.DemoPassword,
		maxFailures:   cfg.LoginMaxFailures,
		lockoutWindow: cfg.LockoutWindow(),
		now:           time.Now,
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Login authenticates a user by email and password. Unknown email, wrong
// password and role mismatch all produce the same INVALID_CREDENTIALS error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		s.metrics.RecordLogin(observability.OutcomeInvalid)
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	var roleFilter *domain.Role
	if strings.TrimSpace(in.Role) != "" {
		role, ok := domain.ParseRole(in.Role)
		if !ok {
			s.metrics.RecordLogin(observability.OutcomeInvalid)
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": in.Role})
		}
		roleFilter = &role
	}

	lockKey := "login:" + email
	if s.locked(ctx, lockKey) {
		s.metrics.RecordLogin(observability.OutcomeLocked)
		return nil, apperrors.NewTooManyAttempts("too many failed login attempts, try again later")
	}

	user, err := s.users.FindByEmail(ctx, email, roleFilter)
	switch {
	case err == nil:
		if !s.hasher.Verify(in.Password, user.PasswordHash) || (roleFilter != nil && user.Role != *roleFilter) {
			return nil, s.loginFailed(ctx, lockKey)
		}
	case errors.Is(err, repository.ErrNotFound):
		if result, ok := s.demoLogin(email, in.Password, roleFilter); ok {
			return result, nil
		}
		return nil, s.loginFailed(ctx, lockKey)
	default:
		if result, ok := s.demoLogin(email, in.Password, roleFilter); ok {
			s.logger.Warn("credential store unavailable, accepted demo login", zap.Error(err))
			return result, nil
		}
		s.metrics.RecordLogin(observability.OutcomeError)
		return nil, apperrors.NewInternalError(err)
	}

	s.clearFailures(ctx, lockKey)

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.metrics.RecordLogin(observability.OutcomeError)
		return nil, err
	}
	s.metrics.RecordLogin(observability.OutcomeSuccess)
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) demoLogin(email, password string, roleFilter *domain.Role) (*AuthResult, bool) {
	if !s.demoEnabled || s.demoPassword == "" {
		return nil, false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.demoEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.demoPassword)) == 1
	if !emailOK || !passwordOK {
		return nil, false
	}

	role := domain.RoleBuyer
	if roleFilter != nil {
		role = *roleFilter
	}
	user := s.demoUser(role)
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, false
	}
	s.metrics.RecordLogin(observability.OutcomeDemo)
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, true
}

func (s *AuthService) demoUser(role domain.Role) *domain.User {
	name := "Demo Buyer"
	if role == domain.RoleSeller {
		name = "Demo Seller"
	}
	return &domain.User{
		ID:        demoSubjectID(role),
		Name:      name,
		Email:     s.demoEmail,
		Role:      role,
		Location:  demoLocation,
		CreatedAt: s.now().UTC(),
	}
}

// demoNamespace derives stable, uuid-shaped demo subjects so demo sessions
// can use the uuid keyed marketplace tables.
var demoNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://vendorx.local/demo"))

func demoSubjectID(role domain.Role) string {
	return uuid.NewSHA1(demoNamespace, []byte(role)).String()
}

func (s *AuthService) isDemoPrincipal(p *domain.Principal) bool {
	return s.demoEnabled && p.SubjectID == demoSubjectID(p.Role)
}

func (s *AuthService) lockoutEnabled() bool {
	return s.attempts != nil && s.maxFailures > 0
}

// locked fails open: an unreachable lockout store never blocks logins.
func (s *AuthService) locked(ctx context.Context, key string) bool {
	if !s.lockoutEnabled() {
		return false
	}
	state, err := s.attempts.Get(ctx, key)
	if err != nil {
		s.logger.Warn("lockout state unavailable", zap.Error(err))
		return false
	}
	return state.Locked(s.now())
}

func (s *AuthService) loginFailed(ctx context.Context, key string) error {
	if s.lockoutEnabled() {
		now := s.now()
		state, err := s.attempts.RecordFailure(ctx, key, now, s.maxFailures, s.lockoutWindow)
		if err != nil {
			s.logger.Warn("failed to record login failure", zap.Error(err))
		} else if state.Locked(now) {
			s.logger.Info("login locked", zap.String("key", key), zap.Timep("locked_until", state.LockedUntil))
			s.metrics.RecordLogin(observability.OutcomeLocked)
			return apperrors.NewTooManyAttempts("too many failed login attempts, try again later")
		}
	}
	s.metrics.RecordLogin(observability.OutcomeInvalidCredentials)
	return apperrors.NewInvalidCredentials()
}

func (s *AuthService) clearFailures(ctx context.Context, key string) {
	if !s.lockoutEnabled() {
		return
	}
	if err := s.attempts.Clear(ctx, key); err != nil {
		s.logger.Warn("failed to clear login failures", zap.Error(err))
	}
}

// Signup registers a new account and issues its first session.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	details := map[string]any{}
	if name == "" {
		details["name"] = "name is required"
	}
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		details["email"] = "a valid email is required"
	}
	if len(in.Password) < MinPasswordLength {
		details["password"] = "password must be at least 6 characters"
	} else if len(in.Password) > auth.MaxPasswordBytes {
		details["password"] = "password must be at most 72 bytes"
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		details["role"] = "role must be buyer or seller"
	}
	if len(details) > 0 {
		s.metrics.RecordSignup(observability.OutcomeInvalid)
		return nil, apperrors.NewValidationError("invalid signup request", details)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordSignup(observability.OutcomeError)
		return nil, apperrors.NewInternalError(err)
	}
	if exists {
		s.metrics.RecordSignup(observability.OutcomeConflict)
		return nil, apperrors.NewConflict("user already exists", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.metrics.RecordSignup(observability.OutcomeError)
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		Location:     strings.TrimSpace(in.Location),
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordSignup(observability.OutcomeConflict)
			return nil, apperrors.NewConflict("user already exists", nil)
		}
		s.metrics.RecordSignup(observability.OutcomeError)
		return nil, apperrors.NewInternalError(err)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.metrics.RecordSignup(observability.OutcomeError)
		return nil, err
	}
	s.metrics.RecordSignup(observability.OutcomeSuccess)
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Me returns the stored profile of the authenticated principal.
func (s *AuthService) Me(ctx context.Context, principal *domain.Principal) (*domain.User, error) {
	if _, err := auth.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	if s.isDemoPrincipal(principal) {
		return s.demoUser(principal.Role), nil
	}

	user, err := s.users.GetByID(ctx, principal.SubjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, principal *domain.Principal, currentPassword, newPassword string) error {
	if _, err := auth.RequireAuthenticated(principal); err != nil {
		return err
	}
	if s.isDemoPrincipal(principal) {
		return apperrors.NewForbidden("demo accounts cannot change their password")
	}
	if len(newPassword) < MinPasswordLength || len(newPassword) > auth.MaxPasswordBytes {
		return apperrors.NewValidationError("invalid password", map[string]any{
			"new_password": "password must be between 6 characters and 72 bytes",
		})
	}

	user, err := s.users.GetByID(ctx, principal.SubjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}
