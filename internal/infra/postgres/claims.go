package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
)

const claimsTable = "archival_claims"

var _ infra.ClaimStore = (*claimStore)(nil)

// claimStore использует часы базы, чтобы реплики сервиса не расходились во времени.
type claimStore struct {
	db     *sqlx.DB
	qb     sq.StatementBuilderType
	logger *zap.Logger
}

func NewClaimStore(db *sqlx.DB, log *zap.Logger) infra.ClaimStore {
	return &claimStore{
		db:     db,
		qb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: log,
	}
}

func (s *claimStore) TryClaim(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrClaimKeyEmpty
	}

	token := uuid.NewString()
	n, err := s.upsert(ctx, key, token, ttl, "WHERE archival_claims.expires_at <= now()")
	if err != nil {
		return "", false, err
	}
	if n == 0 {
		return "", false, nil
	}
	return token, true, nil
}

func (s *claimStore) Refresh(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", ErrClaimKeyEmpty
	}

	token := uuid.NewString()
	if _, err := s.upsert(ctx, key, token, ttl, ""); err != nil {
		return "", err
	}
	return token, nil
}

func (s *claimStore) Release(ctx context.Context, key, token string) error {
	if key == "" {
		return ErrClaimKeyEmpty
	}

	query, args, err := s.qb.
		Delete(claimsTable).
		Where(sq.Eq{"claim_key": key, "token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *claimStore) upsert(ctx context.Context, key, token string, ttl time.Duration, where string) (int64, error) {
	query, args, err := s.qb.
		Insert(claimsTable).
		Columns("claim_key", "token", "expires_at").
		Values(key, token, sq.Expr("now() + make_interval(secs => ?)", ttl.Seconds())).
		Suffix("ON CONFLICT (claim_key) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at " + where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", infra.ErrStoreUnavailable, err)
	}

	s.logger.Debug("захват ключа",
		zap.String("key", key),
		zap.Bool("claimed", n > 0),
		zap.Duration("ttl", ttl),
	)
	return n, nil
}
