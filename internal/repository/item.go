package repository

import (
	"context"
	"fmt"

	"torgmailru/client/internal/normalize"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the repository uses
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type ItemRepository interface {
	SaveItem(ctx context.Context, resource, itemID string, item normalize.Node) error
}

type itemRepository struct {
	db DB
}

func NewItemRepository(db DB) ItemRepository {
	return &itemRepository{
		db: db,
	}
}

// SaveItem upserts the exported item as JSONB, keyed by resource and item id
func (r *itemRepository) SaveItem(ctx context.Context, resource, itemID string, item normalize.Node) error {
	data, err := item.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode item %s/%s: %w", resource, itemID, err)
	}

	query := `
	INSERT INTO catalog_items (resource, item_id, data, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (resource, item_id)
	DO UPDATE SET data = $3, updated_at = now()`
	if _, err := r.db.Exec(ctx, query, resource, itemID, data); err != nil {
		return fmt.Errorf("failed to save item %s/%s: %w", resource, itemID, err)
	}

	return nil
}
