package main

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore owns one PurchaseCalculator per open product card. A session
// that sits idle for longer than the TTL, or is pushed out by capacity, is
// gone for good: the next view starts again from quantity 0.
type SessionStore struct {
	mu        sync.Mutex
	sessions  *expirable.LRU[string, *PurchaseCalculator]
	formatter *CurrencyFormatter
}

func NewSessionStore(capacity int, ttl time.Duration, formatter *CurrencyFormatter) *SessionStore {
	onEvict := func(id string, c *PurchaseCalculator) {
		log.Debug().Str("session", id).Int64("qty", c.Quantity()).Msg("session closed")
	}
	return &SessionStore{
		sessions:  expirable.NewLRU[string, *PurchaseCalculator](capacity, onEvict, ttl),
		formatter: formatter,
	}
}

// Open creates a calculator for p and returns its id.
func (s *SessionStore) Open(p Product) (string, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := NewPurchaseCalculator(p, s.formatter)
	s.sessions.Add(id, c)
	return id, c.Snapshot()
}

func (s *SessionStore) View(id string) (Snapshot, error) {
	return s.apply(id, func(*PurchaseCalculator) {})
}

func (s *SessionStore) Increment(id string) (Snapshot, error) {
	return s.apply(id, (*PurchaseCalculator).Increment)
}

func (s *SessionStore) Decrement(id string) (Snapshot, error) {
	return s.apply(id, (*PurchaseCalculator).Decrement)
}

func (s *SessionStore) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Len() int { return s.sessions.Len() }

// apply runs fn and takes the snapshot under the same lock, so every
// interaction is observed whole. Touching a session renews its TTL.
func (s *SessionStore) apply(id string, fn func(*PurchaseCalculator)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions.Get(id)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	fn(c)
	s.sessions.Add(id, c)
	return c.Snapshot(), nil
}
