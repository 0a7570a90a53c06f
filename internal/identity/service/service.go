// Package service implements sign up, sign in, profiles and user
// administration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"farmshop/internal/audit"
	"farmshop/internal/identity/models"
	"farmshop/internal/identity/token"
	"farmshop/internal/platform/metrics"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	fsemail "farmshop/pkg/email"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72
	defaultTokenTTL   = 24 * time.Hour
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	SetAdmin(ctx context.Context, userID id.UserID, isAdmin bool, at time.Time) error
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, isAdmin bool, expiresIn time.Duration) (*token.Issued, error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// OrderCounter guards user deletion.
type OrderCounter interface {
	CountByUser(ctx context.Context, userID id.UserID) (int, error)
}

type Service struct {
	users       UserStore
	tokens      TokenIssuer
	revocations RevocationList
	orders      OrderCounter
	tokenTTL    time.Duration
	bcryptCost  int
	audit       *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type Option func(*Service)

func WithOrderCounter(c OrderCounter) Option {
	return func(s *Service) { s.orders = c }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

// WithBcryptCost lowers the hashing cost in tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users UserStore, tokens TokenIssuer, revocations RevocationList, opts ...Option) *Service {
	s := &Service{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    defaultTokenTTL,
		bcryptCost:  bcrypt.DefaultCost,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp registers an account with an empty profile.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	u := &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "user already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersCreated()
	s.audit.Record(ctx, audit.EventUserSignedUp, u.ID, u.ID.String(), "email", u.Email)
	return u, nil
}

// SignIn verifies the password and issues an access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = models.NormalizeEmail(email)
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "sign in rejected",
			"user_id", u.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, invalid
	}

	issued, err := s.tokens.GenerateAccessToken(u.ID, u.IsAdmin, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	ua := useragent.New(requestcontext.UserAgent(ctx))
	browser, version := ua.Browser()
	s.audit.Record(ctx, audit.EventUserSignedIn, u.ID, u.ID.String(),
		"email", u.Email,
		"browser", strings.TrimSpace(browser+" "+version),
		"os", ua.OS(),
		"mobile", ua.Mobile(),
		"client_ip", requestcontext.ClientIP(ctx),
	)

	return &models.Session{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		User:        u,
	}, nil
}

// SignOut revokes the caller's token until it would expire.
func (s *Service) SignOut(ctx context.Context) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	ttl := requestcontext.TokenExpiry(ctx).Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to revoke token")
	}
	userID := requestcontext.UserID(ctx)
	s.audit.Record(ctx, audit.EventUserSignedOut, userID, userID.String())
	return nil
}

// CurrentSession returns the signed in user's profile.
func (s *Service) CurrentSession(ctx context.Context) (*models.User, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sign in required")
	}
	return s.GetProfile(ctx, userID)
}

// IsAdmin reads the current admin flag. Deleted users are not admins.
func (s *Service) IsAdmin(ctx context.Context, userID id.UserID) (bool, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load user")
	}
	return u.IsAdmin, nil
}

// Email resolves a user's address for notifications.
func (s *Service) Email(ctx context.Context, userID id.UserID) (string, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func validateCredentials(email, password string) error {
	var fields []dErrors.FieldError
	if !fsemail.LooksValid(email) {
		fields = append(fields, dErrors.FieldError{Field: "email", Message: "a valid email is required"})
	}
	if len(password) < minPasswordLength {
		fields = append(fields, dErrors.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	} else if len(password) > maxPasswordLength {
		fields = append(fields, dErrors.FieldError{Field: "password", Message: "password is too long"})
	}
	if len(fields) > 0 {
		return dErrors.Validation(fields)
	}
	return nil
}

func wrapUserErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "user has orders")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "user store failed")
	}
}
