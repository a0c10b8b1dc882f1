package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialshop/internal/domain"
	profilerepo "socialshop/internal/repository/profile"
	tokenrepo "socialshop/internal/repository/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidInput wraps signup payload problems.
	ErrInvalidInput = errors.New("invalid input")
)

// Service handles buyer signup/login flows.
type Service struct {
	repo        profilerepo.Repository
	tokens      *tokenManager
	logger      *zap.Logger
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo profilerepo.Repository, tokens tokenrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		logger:      logger,
		accessTTL:   48 * time.Hour,
		refreshTTL:  30 * 24 * time.Hour,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Signup registers a new buyer profile.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Profile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email[:strings.Index(email, "@")]
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}

	p, err := s.repo.Create(ctx, domain.Profile{
		Email:        email,
		PasswordHash: string(hashed),
		Username:     username,
		DisplayName:  displayName,
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile created", zap.String("profile_id", p.ID))
	return p, nil
}

// Login validates credentials and returns issued tokens plus the profile.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Profile, string, string, error) {
	password = strings.TrimSpace(password)
	p, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(ctx, p.ID, "access", s.accessTTL)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.Issue(ctx, p.ID, "refresh", s.refreshTTL)
	if err != nil {
		return nil, "", "", err
	}
	return p, access, refresh, nil
}

// LookupByToken returns the profile bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.Profile, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	p, err := s.repo.GetByID(ctx, meta.ProfileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return p, nil
}

// PurgeExpiredTokens drops every token whose lifetime has ended.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired tokens purged", zap.Int64("count", n))
	}
	return n, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
