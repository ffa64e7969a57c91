package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wellspring/internal/domain"
)

// CampaignRepositoryPG implements domain.CampaignStore using PostgreSQL.
// Uniqueness of open campaigns per owner and per location is enforced by
// partial unique indexes, so racing creates resolve in the database.
type CampaignRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new campaign repo.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{pool: pool}
}

const campaignColumns = `id, owner_id, title, description, location, target_amount, current_amount, status, payout_token, expires_at, created_at, updated_at`

// Create inserts a new campaign record.
func (r *CampaignRepositoryPG) Create(ctx context.Context, c *domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO campaigns (id, owner_id, title, description, location, target_amount, current_amount, status, payout_token, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $10);
`, c.ID, c.OwnerID, c.Title, c.Description, c.Location, c.TargetAmount, string(c.Status), c.PayoutToken, c.ExpiresAt, c.CreatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// GetByID returns a single campaign.
func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
WHERE id = $1;
`, id)
	return scanCampaign(row)
}

// List returns all campaigns, newest first.
func (r *CampaignRepositoryPG) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindOpenByOwner returns the owner's open campaign.
func (r *CampaignRepositoryPG) FindOpenByOwner(ctx context.Context, ownerID string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
WHERE owner_id = $1 AND status = 'OPEN';
`, ownerID)
	return scanCampaign(row)
}

// FindOpenByLocation returns the open campaign claiming the location.
func (r *CampaignRepositoryPG) FindOpenByLocation(ctx context.Context, location string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
WHERE location = $1 AND status = 'OPEN';
`, location)
	return scanCampaign(row)
}

// MarkExpired transitions open campaigns past their expiry to EXPIRED.
func (r *CampaignRepositoryPG) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE campaigns
SET status = 'EXPIRED', updated_at = $1
WHERE status = 'OPEN' AND expires_at < $1;
`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var status string
	err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Location,
		&c.TargetAmount, &c.CurrentAmount, &status, &c.PayoutToken,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	c.Status = domain.CampaignStatus(status)
	return &c, nil
}

// mapUniqueViolation translates 23505 on the partial unique indexes into
// the matching domain conflict error.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "owner"):
			return domain.ErrDuplicateCampaign
		case strings.Contains(pgErr.ConstraintName, "location"):
			return domain.ErrDuplicateLocation
		}
	}
	return err
}

var _ domain.CampaignStore = (*CampaignRepositoryPG)(nil)
