package anonymous

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type tokenMeta struct {
	GuestID   string
	ExpiresAt time.Time
}

type tokenManager struct {
	mu     sync.RWMutex
	tokens map[string]tokenMeta
	now    func() time.Time
}

func newTokenManager() *tokenManager {
	return &tokenManager{
		tokens: make(map[string]tokenMeta),
		now:    time.Now,
	}
}

func (m *tokenManager) Issue(guestID string, ttl time.Duration) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	meta := tokenMeta{
		GuestID:   guestID,
		ExpiresAt: m.now().Add(ttl),
	}
	m.mu.Lock()
	m.tokens[token] = meta
	m.mu.Unlock()
	return token, nil
}

func (m *tokenManager) Validate(token string) (tokenMeta, bool) {
	m.mu.RLock()
	meta, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok {
		return tokenMeta{}, false
	}
	if m.now().After(meta.ExpiresAt) {
		m.Delete(token)
		return tokenMeta{}, false
	}
	return meta, true
}

func (m *tokenManager) Delete(token string) {
	m.mu.Lock()
	delete(m.tokens, token)
	m.mu.Unlock()
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
