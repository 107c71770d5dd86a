package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jnitin/flask-catalog/internal/models"
)

type ItemRepository struct {
	db DB
}

func NewItemRepository(db DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item models.Item) error {
	const query = `
		INSERT INTO items (id, name, description, user_id, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.Name, item.Description, item.OwnerID, item.CategoryID)
	if isUniqueViolation(err) {
		return fmt.Errorf("item %q: %w", item.Name, ErrDuplicate)
	}
	if err != nil {
		return itemReference(err, item)
	}
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (models.Item, error) {
	const query = `
		SELECT id, name, description, user_id, category_id, created_at
		FROM items WHERE id = $1
	`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	const query = `
		SELECT id, name, description, user_id, category_id, created_at
		FROM items
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR category_id = $2)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.OwnerID, filter.CategoryID, limitOrAll(filter.Page), filter.Page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Update(ctx context.Context, item models.Item) error {
	const query = `
		UPDATE items
		SET name = $2, description = $3, category_id = $4
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, item.ID, item.Name, item.Description, item.CategoryID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %q: %w", item.Name, ErrDuplicate)
		}
		return itemReference(err, item)
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// itemReference maps a foreign key violation to the missing parent row.
func itemReference(err error, item models.Item) error {
	constraint, ok := foreignKeyViolation(err)
	switch {
	case !ok:
		return err
	case strings.Contains(constraint, "category_id"):
		return fmt.Errorf("category %s: %w", item.CategoryID, ErrCategoryNotFound)
	default:
		return fmt.Errorf("owner %s: %w", item.OwnerID, ErrAccountNotFound)
	}
}

func scanItem(row pgx.Row) (models.Item, error) {
	var item models.Item
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.OwnerID, &item.CategoryID, &item.CreatedAt)
	return item, err
}
