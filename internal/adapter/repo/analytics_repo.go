package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wellspring/internal/domain"
)

// AnalyticsRepositoryPG implements domain.AnalyticsStore using PostgreSQL.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// IncrementCounters upserts daily metrics for the provided day.
func (r *AnalyticsRepositoryPG) IncrementCounters(ctx context.Context, day string, counters map[string]int) error {
	query := `
INSERT INTO analytics_daily (
    day, donations, donated_amount, campaigns_created
) VALUES (
    $1, $2, $3, $4
) ON CONFLICT (day) DO UPDATE SET
    donations = analytics_daily.donations + EXCLUDED.donations,
    donated_amount = analytics_daily.donated_amount + EXCLUDED.donated_amount,
    campaigns_created = analytics_daily.campaigns_created + EXCLUDED.campaigns_created;
`
	_, err := r.pool.Exec(ctx, query,
		day,
		counters["donations"],
		counters["donated_amount"],
		counters["campaigns_created"],
	)
	return err
}

var _ domain.AnalyticsStore = (*AnalyticsRepositoryPG)(nil)
