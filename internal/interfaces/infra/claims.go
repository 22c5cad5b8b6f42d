package infra

import (
	"context"
	"time"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=ClaimStore --output=../../../mocks
type ClaimStore interface {
	// TryClaim атомарно занимает ключ; занятый и не истекший ключ возвращает claimed=false.
	TryClaim(ctx context.Context, key string, ttl time.Duration) (token string, claimed bool, err error)
	Release(ctx context.Context, key, token string) error
	Refresh(ctx context.Context, key string, ttl time.Duration) (token string, err error)
}
