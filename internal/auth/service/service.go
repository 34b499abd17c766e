package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
	"vms/pkg/requestcontext"
)

// VolunteerStore finds volunteers by their login name.
type VolunteerStore interface {
	FindVolunteerByName(ctx context.Context, name string) (*models.Volunteer, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateSessionToken(volunteerID int64, sessionID uuid.UUID, expiresIn time.Duration) (string, time.Time, error)
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token       string    `json:"token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	VolunteerID int64     `json:"volunteer_id"`
	Name        string    `json:"name"`
	IsManager   bool      `json:"is_manager"`
}

// Service authenticates volunteers.
type Service struct {
	volunteers VolunteerStore
	tokens     TokenIssuer
	sessionTTL time.Duration
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(volunteers VolunteerStore, tokens TokenIssuer, sessionTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		volunteers: volunteers,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dummyHash keeps the cost of a login for an unknown name equal to a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("vms-dummy-password"), bcrypt.DefaultCost)

// Login checks a name and password and issues a session token. Unknown names
// and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name and password are required")
	}

	volunteer, err := s.volunteers.FindVolunteerByName(ctx, name)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load volunteer")
	}
	hash := dummyHash
	if volunteer != nil && volunteer.PasswordHash != "" {
		hash = []byte(volunteer.PasswordHash)
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password)); cmpErr != nil || volunteer == nil {
		s.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"name", name,
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid name or password")
	}

	sessionID := uuid.New()
	token, expiresAt, err := s.tokens.GenerateSessionToken(volunteer.ID, sessionID, s.sessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	s.logger.InfoContext(ctx, "volunteer logged in",
		"request_id", requestcontext.RequestID(ctx),
		"volunteer_id", volunteer.ID,
		"session_id", sessionID.String(),
	)
	return &LoginResult{
		Token:       token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		VolunteerID: volunteer.ID,
		Name:        volunteer.Name,
		IsManager:   volunteer.IsManager,
	}, nil
}

// HashPassword returns the salted hash stored for a volunteer.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(hash), nil
}
