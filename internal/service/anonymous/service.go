package anonymous

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues guest tokens so a cart can be built before signing in.
// Tokens live in memory only; a restart logs every guest out.
type Service struct {
	tokens    *tokenManager
	accessTTL time.Duration
}

func New() *Service {
	return &Service{
		tokens:    newTokenManager(),
		accessTTL: 3 * time.Hour,
	}
}

func (s *Service) Issue(ctx context.Context) (accessToken, guestID string, err error) {
	guestID = uuid.NewString()
	accessToken, err = s.tokens.Issue(guestID, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, guestID, nil
}

func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	meta, ok := s.tokens.Validate(token)
	if !ok {
		return "", ErrInvalidToken
	}
	return meta.GuestID, nil
}

// Revoke forgets a guest token, used once its cart was adopted by a profile.
func (s *Service) Revoke(token string) {
	s.tokens.Delete(token)
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}
