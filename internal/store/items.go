package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

const itemColumns = `i.id, i.name, i.description, i.category, i.urgency, i.type, i.status, i.owner_id,
	i.image_mime, i.created_at, i.updated_at, i.deleted_at, u.name, u.username`

const itemFrom = ` FROM items i JOIN users u ON u.id = i.owner_id`

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	OwnerID  int64
	Statuses []model.ItemStatus
	Type     model.ItemType
	Category string
	Urgency  string
}

// CreateItem creates a new available item owned by item.OwnerID.
func CreateItem(ctx context.Context, db DBTX, item *model.Item) (*model.Item, error) {
	urgency := item.Urgency
	if urgency == "" {
		urgency = model.DefaultUrgency
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, category, urgency, type, status, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Category, urgency, item.Type, model.ItemStatusAvailable, item.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db DBTX, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns non-deleted items matching f, newest first.
func ListItems(ctx context.Context, db DBTX, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + ` WHERE i.deleted_at IS NULL`
	var args []any

	if f.OwnerID > 0 {
		query += ` AND i.owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if len(f.Statuses) > 0 {
		query += ` AND i.status IN (?` + strings.Repeat(`, ?`, len(f.Statuses)-1) + `)`
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if f.Type != "" {
		query += ` AND i.type = ?`
		args = append(args, f.Type)
	}
	if f.Category != "" {
		query += ` AND i.category = ?`
		args = append(args, f.Category)
	}
	if f.Urgency != "" {
		query += ` AND i.urgency = ?`
		args = append(args, f.Urgency)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
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

// UpdateItem updates an item's descriptive fields. Type and status are
// not editable here.
func UpdateItem(ctx context.Context, db DBTX, id int64, name, description, category, urgency string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, category = ?, urgency = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, description, category, urgency, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// SetItemStatus moves an item from one status to another. It returns
// lending.ErrConflict if the item is no longer in status from.
func SetItemStatus(ctx context.Context, db DBTX, id int64, from, to model.ItemStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %d is no longer %s: %w", id, from, lending.ErrConflict)
	}
	return nil
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, db DBTX, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's photo.
func SetItemImage(ctx context.Context, db DBTX, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo and its MIME type.
func GetItemImage(ctx context.Context, db DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
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

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var imageMime sql.NullString
	var ownerName, ownerUsername string
	err := s.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &item.Urgency,
		&item.Type, &item.Status, &item.OwnerID, &imageMime,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt, &ownerName, &ownerUsername)
	if err != nil {
		return nil, err
	}
	item.ImageMime = imageMime.String
	item.OwnerName = orUsername(ownerName, ownerUsername)
	return item, nil
}
