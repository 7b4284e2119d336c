package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Helmus101/confluence/internal/entity"
)

// ConnectorStatsRepository maintains per-connector request counters. ResponseRate
// is always derived from the counters on read.
type ConnectorStatsRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (entity.ConnectorStats, error)
	IncrementTotal(ctx context.Context, userID uuid.UUID) (entity.ConnectorStats, error)
	IncrementSuccess(ctx context.Context, userID uuid.UUID) (entity.ConnectorStats, error)
	List(ctx context.Context) ([]entity.ConnectorStats, error)
}

// WeeklyQuota counts indirect introduction requests per user and ISO week.
type WeeklyQuota interface {
	Count(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error)
	Increment(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error)
}

// PGXConnectorStatsRepository implements ConnectorStatsRepository with upserts.
type PGXConnectorStatsRepository struct {
	pool pgxPool
}

// NewPGXConnectorStatsRepository wires a pgx backed repository.
func NewPGXConnectorStatsRepository(pool *pgxpool.Pool) *PGXConnectorStatsRepository {
	return &PGXConnectorStatsRepository{pool: pool}
}

func scanStats(row pgx.Row) (entity.ConnectorStats, error) {
	var stats entity.ConnectorStats
	if err := row.Scan(&stats.UserID, &stats.TotalRequests, &stats.SuccessCount); err != nil {
		return entity.ConnectorStats{}, err
	}
	stats.Recompute()
	return stats, nil
}

// Get returns the stats for a connector, or zero stats if none were recorded.
func (r *PGXConnectorStatsRepository) Get(ctx context.Context, userID uuid.UUID) (entity.ConnectorStats, error) {
	stats, err := scanStats(r.pool.QueryRow(ctx,
		`SELECT user_id, total_requests, success_count FROM connector_stats WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ConnectorStats{UserID: userID}, nil
		}
		return entity.ConnectorStats{}, fmt.Errorf("query connector stats: %w", err)
	}
	return stats, nil
}

// IncrementTotal atomically bumps total_requests.
func (r *PGXConnectorStatsRepository) IncrementTotal(ctx context.Context, userID uuid.UUID) (entity.ConnectorStats, error) {
	return r.bump(ctx, userID, 1, 0)
}

// IncrementSuccess atomically bumps success_count.
func (r *PGXConnectorStatsRepository) IncrementSuccess(ctx context.Context, userID uuid.UUID) (entity.ConnectorStats, error) {
	return r.bump(ctx, userID, 0, 1)
}

func (r *PGXConnectorStatsRepository) bump(ctx context.Context, userID uuid.UUID, total, success int) (entity.ConnectorStats, error) {
	stats, err := scanStats(r.pool.QueryRow(ctx, `
        INSERT INTO connector_stats (user_id, total_requests, success_count, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            total_requests = connector_stats.total_requests + EXCLUDED.total_requests,
            success_count = connector_stats.success_count + EXCLUDED.success_count,
            updated_at = NOW()
        RETURNING user_id, total_requests, success_count`,
		userID, total, success))
	if err != nil {
		return entity.ConnectorStats{}, fmt.Errorf("upsert connector stats: %w", err)
	}
	return stats, nil
}

// List returns the stats of every connector that has received a request.
func (r *PGXConnectorStatsRepository) List(ctx context.Context) ([]entity.ConnectorStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, total_requests, success_count FROM connector_stats`)
	if err != nil {
		return nil, fmt.Errorf("list connector stats: %w", err)
	}
	defer rows.Close()

	out := make([]entity.ConnectorStats, 0)
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connector stats: %w", err)
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connector stats: %w", err)
	}
	return out, nil
}

// PGXRateLimitsRepository implements WeeklyQuota on the rate_limits table.
type PGXRateLimitsRepository struct {
	pool pgxPool
}

// NewPGXRateLimitsRepository wires a pgx backed repository.
func NewPGXRateLimitsRepository(pool *pgxpool.Pool) *PGXRateLimitsRepository {
	return &PGXRateLimitsRepository{pool: pool}
}

// Count returns the number of requests recorded for the week.
func (r *PGXRateLimitsRepository) Count(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT indirect_requests_count FROM rate_limits WHERE user_id = $1 AND week_start = $2`,
		userID, weekStart).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("query rate limit: %w", err)
	}
	return n, nil
}

// Increment creates the weekly row lazily and increments it in one statement.
func (r *PGXRateLimitsRepository) Increment(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
        INSERT INTO rate_limits (user_id, week_start, indirect_requests_count)
        VALUES ($1, $2, 1)
        ON CONFLICT (user_id, week_start) DO UPDATE SET
            indirect_requests_count = rate_limits.indirect_requests_count + 1
        RETURNING indirect_requests_count`,
		userID, weekStart).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment rate limit: %w", err)
	}
	return n, nil
}
