package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wellspring/internal/domain"
)

// MessageRepositoryPG implements domain.MessageStore using PostgreSQL.
type MessageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new message repo.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepositoryPG {
	return &MessageRepositoryPG{pool: pool}
}

// Create inserts a donor message. The unique index on donation_id makes a
// retried attach idempotent; a duplicate insert is reported by the driver
// and treated as already-attached by callers.
func (r *MessageRepositoryPG) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO messages (id, donation_id, campaign_id, author_id, body, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (donation_id) DO NOTHING;
`, m.ID, m.DonationID, m.CampaignID, m.AuthorID, m.Body, m.CreatedAt)
	return err
}

// ListByCampaign returns the campaign's messages, newest first.
func (r *MessageRepositoryPG) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, donation_id, campaign_id, author_id, body, created_at
FROM messages
WHERE campaign_id = $1
ORDER BY created_at DESC;
`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.DonationID, &m.CampaignID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.MessageStore = (*MessageRepositoryPG)(nil)
