package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wellspring/internal/domain"
)

// DonationRepositoryPG implements domain.DonationStore using PostgreSQL.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

// AppendDonationAndIncrement inserts the donation and bumps the campaign
// total in one transaction. The SELECT ... FOR UPDATE on the campaign row
// serializes concurrent donations per campaign: both writes see the locked
// row's total, so no increment can be lost. Donations to different
// campaigns lock different rows and proceed in parallel.
func (r *DonationRepositoryPG) AppendDonationAndIncrement(ctx context.Context, d *domain.Donation, authorizedAt time.Time) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin donation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var expiresAt time.Time
	err = tx.QueryRow(ctx, `
SELECT status, expires_at
FROM campaigns
WHERE id = $1
FOR UPDATE;
`, d.CampaignID).Scan(&status, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrCampaignNotFound
		}
		return 0, err
	}
	gate := domain.Campaign{Status: domain.CampaignStatus(status), ExpiresAt: expiresAt}
	if !gate.AcceptsChargeAuthorizedAt(authorizedAt) {
		return 0, domain.ErrCampaignNotOpen
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO donations (id, campaign_id, donor_id, amount, charge_id, donor_country, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`, d.ID, d.CampaignID, d.DonorID, d.Amount, d.ChargeID, d.DonorCountry, d.CreatedAt); err != nil {
		return 0, err
	}

	var newTotal int64
	err = tx.QueryRow(ctx, `
UPDATE campaigns
SET current_amount = current_amount + $2, updated_at = $3
WHERE id = $1
RETURNING current_amount;
`, d.CampaignID, d.Amount, d.CreatedAt).Scan(&newTotal)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit donation tx: %w", err)
	}
	return newTotal, nil
}

// ListByCampaign returns the campaign's donations, oldest first.
func (r *DonationRepositoryPG) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, campaign_id, donor_id, amount, charge_id, donor_country, created_at
FROM donations
WHERE campaign_id = $1
ORDER BY created_at ASC;
`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorID, &d.Amount, &d.ChargeID, &d.DonorCountry, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.DonationStore = (*DonationRepositoryPG)(nil)
