package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
)

const sweepThreshold = 1024

var _ infra.ClaimStore = (*claimStore)(nil)

type claim struct {
	token     string
	expiresAt time.Time
}

type claimStore struct {
	logger *zap.Logger
	claims map[string]claim
	mu     sync.Mutex
	now    func() time.Time
}

func NewClaimStore(log *zap.Logger) infra.ClaimStore {
	return &claimStore{
		logger: log,
		claims: make(map[string]claim),
		now:    time.Now,
	}
}

func (s *claimStore) TryClaim(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if key == "" {
		return "", false, ErrClaimKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.claims) >= sweepThreshold {
		s.sweep(now)
	}

	if c, ok := s.claims[key]; ok {
		if now.Before(c.expiresAt) {
			return "", false, nil
		}
		s.logger.Warn("захват истек, ключ снова доступен",
			zap.String("key", key),
			zap.Time("expired_at", c.expiresAt),
		)
	}

	token := uuid.NewString()
	s.claims[key] = claim{token: token, expiresAt: now.Add(ttl)}

	return token, true, nil
}

func (s *claimStore) Release(ctx context.Context, key, token string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if key == "" {
		return ErrClaimKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.claims[key]; ok && c.token == token {
		delete(s.claims, key)
	}
	return nil
}

func (s *claimStore) Refresh(ctx context.Context, key string, ttl time.Duration) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if key == "" {
		return "", ErrClaimKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.claims[key] = claim{token: token, expiresAt: s.now().Add(ttl)}

	return token, nil
}

func (s *claimStore) sweep(now time.Time) {
	for key, c := range s.claims {
		if !now.Before(c.expiresAt) {
			delete(s.claims, key)
		}
	}
}
