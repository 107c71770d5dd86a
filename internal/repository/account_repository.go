package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jnitin/flask-catalog/internal/models"
)

const selectAccount = `
	SELECT a.id, a.email, a.password_hash, a.first_name, a.last_name, a.confirmed, a.blocked,
	       a.failed_logins, a.registered_with_provider, a.profile_pic_url, a.created_at, a.updated_at,
	       COALESCE(r.id, 0), COALESCE(r.name, ''), COALESCE(r.is_default, FALSE), COALESCE(r.permissions, 0)
	FROM accounts a
	LEFT JOIN roles r ON r.id = a.role_id
`

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	const query = `
		INSERT INTO accounts (
			id, email, password_hash, first_name, last_name, confirmed, blocked, failed_logins,
			registered_with_provider, profile_pic_url, role_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, 0), NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Confirmed,
		account.Blocked,
		account.FailedLogins,
		account.RegisteredWithProvider,
		account.ProfilePicURL,
		account.Role.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("account %s: %w", account.Email, ErrDuplicate)
	}
	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (models.Account, error) {
	return getAccount(ctx, r.db, selectAccount+` WHERE a.id = $1`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return getAccount(ctx, r.db, selectAccount+` WHERE a.email = $1`, email)
}

func (r *AccountRepository) List(ctx context.Context, page Page) ([]models.Account, error) {
	query := selectAccount + ` ORDER BY a.created_at, a.id LIMIT $1 OFFSET $2`
	return listAccounts(ctx, r.db, query, limitOrAll(page), page.Offset)
}

// ListUnconfirmed returns unconfirmed accounts created in [from, to).
func (r *AccountRepository) ListUnconfirmed(ctx context.Context, from, to time.Time) ([]models.Account, error) {
	query := selectAccount + `
		WHERE a.confirmed = FALSE AND a.created_at >= $1 AND a.created_at < $2
		ORDER BY a.created_at
	`
	return listAccounts(ctx, r.db, query, from, to)
}

// Lock loads the account row with FOR UPDATE, applies fn and writes the
// result back in the same transaction. Concurrent callers on the same row
// are serialized, so read-modify-write sequences such as the failed login
// counter cannot lose updates.
func (r *AccountRepository) Lock(ctx context.Context, id string, fn func(*models.Account) error) (models.Account, error) {
	return r.lock(ctx, ` WHERE a.id = $1 FOR UPDATE OF a`, id, fn)
}

func (r *AccountRepository) LockByEmail(ctx context.Context, email string, fn func(*models.Account) error) (models.Account, error) {
	return r.lock(ctx, ` WHERE a.email = $1 FOR UPDATE OF a`, email, fn)
}

func (r *AccountRepository) lock(ctx context.Context, where string, arg any, fn func(*models.Account) error) (models.Account, error) {
	var result models.Account
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		account, err := getAccount(ctx, tx, selectAccount+where, arg)
		if err != nil {
			return err
		}
		if err := fn(&account); err != nil {
			return err
		}
		if err := saveAccount(ctx, tx, account); err != nil {
			return err
		}
		result = account
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return result, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	// categories and items go with the account through ON DELETE CASCADE
	const query = `DELETE FROM accounts WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func saveAccount(ctx context.Context, db DBTX, account models.Account) error {
	const query = `
		UPDATE accounts
		SET email = $2,
		    password_hash = $3,
		    first_name = $4,
		    last_name = $5,
		    confirmed = $6,
		    blocked = $7,
		    failed_logins = $8,
		    profile_pic_url = $9,
		    role_id = NULLIF($10, 0),
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := db.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Confirmed,
		account.Blocked,
		account.FailedLogins,
		account.ProfilePicURL,
		account.Role.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.Email, ErrDuplicate)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func getAccount(ctx context.Context, db DBTX, query string, args ...any) (models.Account, error) {
	account, err := scanAccount(db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	return account, nil
}

func listAccounts(ctx context.Context, db DBTX, query string, args ...any) ([]models.Account, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.Confirmed,
		&account.Blocked,
		&account.FailedLogins,
		&account.RegisteredWithProvider,
		&account.ProfilePicURL,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.Role.ID,
		&account.Role.Name,
		&account.Role.Default,
		&account.Role.Permissions,
	)
	return account, err
}
