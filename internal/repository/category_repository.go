package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jnitin/flask-catalog/internal/models"
)

type CategoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) error {
	const query = `
		INSERT INTO categories (id, name, user_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.OwnerID)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
	}
	if _, ok := foreignKeyViolation(err); ok {
		return fmt.Errorf("owner %s: %w", category.OwnerID, ErrAccountNotFound)
	}
	return err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (models.Category, error) {
	const query = `SELECT id, name, user_id, created_at FROM categories WHERE id = $1`
	var c models.Category
	if err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]models.Category, error) {
	const query = `
		SELECT id, name, user_id, created_at
		FROM categories
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, filter.OwnerID, limitOrAll(filter.Page), filter.Page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, category models.Category) error {
	const query = `UPDATE categories SET name = $2 WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, category.ID, category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
