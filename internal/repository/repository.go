package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrDuplicate        = errors.New("duplicate value")
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx so helpers run inside or
// outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the pool surface the repositories need. *pgxpool.Pool satisfies it.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Page struct {
	Limit  int
	Offset int
}

type CategoryFilter struct {
	OwnerID string
	Page    Page
}

type ItemFilter struct {
	OwnerID    string
	CategoryID string
	Page       Page
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// foreignKeyViolation reports a 23503 error and the violated constraint.
func foreignKeyViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// inTx runs fn in a transaction, committing when fn succeeds.
func inTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func limitOrAll(p Page) any {
	if p.Limit <= 0 {
		return nil
	}
	return p.Limit
}
