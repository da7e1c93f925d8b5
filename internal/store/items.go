package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

const itemColumns = `id, name, description, category, location, date_reported, status,
	reported_by, held_by, claimed_by, image_mime, created_at, updated_at`

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description, category, location, dateReported, imageMime sql.NullString
	var heldBy, claimedBy sql.NullInt64
	err := row.Scan(&item.ID, &item.Name, &description, &category, &location, &dateReported,
		&item.Status, &item.ReportedBy, &heldBy, &claimedBy, &imageMime, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Category = category.String
	item.Location = location.String
	item.DateReported = dateReported.String
	item.ImageMime = imageMime.String
	item.HeldBy = nullableID(heldBy)
	item.ClaimedBy = nullableID(claimedBy)
	return item, nil
}

func nullableID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// CreateItem stores a new item and returns it as persisted.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (name, description, category, location, date_reported, status, reported_by, held_by, claimed_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Category, item.Location, item.DateReported,
		item.Status, item.ReportedBy, item.HeldBy, item.ClaimedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem returns an item by ID.
func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching every non-empty field of the filter,
// newest first.
func (s *Store) ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ReportedBy != 0 {
		where = append(where, "reported_by = ?")
		args = append(args, filter.ReportedBy)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites an item's mutable fields. The write only applies while
// the stored status still equals expectedStatus; otherwise ErrStale is returned.
func (s *Store) UpdateItem(ctx context.Context, item *model.Item, expectedStatus string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, category = ?, location = ?, date_reported = ?,
		        status = ?, held_by = ?, claimed_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		item.Name, item.Description, item.Category, item.Location, item.DateReported,
		item.Status, item.HeldBy, item.ClaimedBy, item.ID, expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return expectOneRow(result, "item", item.ID)
}

// DeleteItem removes an item together with all of its requests and reports how
// many requests went with it.
func (s *Store) DeleteItem(ctx context.Context, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM requests WHERE item_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting item requests: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking affected rows: %w", err)
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting item: %w", err)
	}
	if err := expectOneRow(result, "item", id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing item deletion: %w", err)
	}
	return removed, nil
}

// SetItemImage sets an item's image data.
func (s *Store) SetItemImage(ctx context.Context, id int64, image []byte, mime string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return expectOneRow(result, "item", id)
}

// GetItemImage returns an item's image data and MIME type. A missing item or
// an item without a photo both yield empty results.
func (s *Store) GetItemImage(ctx context.Context, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
