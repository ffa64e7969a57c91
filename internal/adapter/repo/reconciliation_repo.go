package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wellspring/internal/domain"
)

// ReconciliationRepositoryPG implements domain.ReconciliationStore using
// PostgreSQL.
type ReconciliationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository creates a new reconciliation repo.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepositoryPG {
	return &ReconciliationRepositoryPG{pool: pool}
}

// Append records a charge the ledger could not absorb.
func (r *ReconciliationRepositoryPG) Append(ctx context.Context, rec *domain.Reconciliation) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO reconciliations (id, campaign_id, donor_id, amount, charge_id, reason, resolved, created_at)
VALUES ($1, $2, $3, $4, $5, $6, false, $7);
`, rec.ID, rec.CampaignID, rec.DonorID, rec.Amount, rec.ChargeID, rec.Reason, rec.CreatedAt)
	return err
}

// ListUnresolved returns pending reconciliation records, oldest first.
func (r *ReconciliationRepositoryPG) ListUnresolved(ctx context.Context, limit int) ([]domain.Reconciliation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, campaign_id, donor_id, amount, charge_id, reason, resolved, created_at
FROM reconciliations
WHERE NOT resolved
ORDER BY created_at ASC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Reconciliation
	for rows.Next() {
		var rec domain.Reconciliation
		if err := rows.Scan(&rec.ID, &rec.CampaignID, &rec.DonorID, &rec.Amount, &rec.ChargeID, &rec.Reason, &rec.Resolved, &rec.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.ReconciliationStore = (*ReconciliationRepositoryPG)(nil)
