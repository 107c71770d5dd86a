package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/models"
)

func expectSave(mock pgxmock.PgxPoolIface, a models.Account) *pgxmock.ExpectedExec {
	return mock.ExpectExec(sql("UPDATE accounts")).
		WithArgs(a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Confirmed, a.Blocked,
			a.FailedLogins, a.ProfilePicURL, a.Role.ID)
}

func TestLockByEmail_ReadModifyWriteInOneTransaction(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	stored := testAccount("acc-1", "a@x.com")
	stored.FailedLogins = 2
	want := stored
	want.FailedLogins = 3
	want.Blocked = true

	mock.ExpectBegin()
	mock.ExpectQuery(sql("WHERE a.email = $1 FOR UPDATE OF a")).
		WithArgs("a@x.com").
		WillReturnRows(accountRows(stored))
	expectSave(mock, want).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, err := repo.LockByEmail(context.Background(), "a@x.com", func(a *models.Account) error {
		a.FailedLogins++
		a.Blocked = a.FailedLogins >= models.MaxFailedLogins
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, got.FailedLogins)
	require.True(t, got.Blocked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_RollsBackWhenFnFails(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(sql("WHERE a.id = $1 FOR UPDATE OF a")).
		WithArgs("acc-1").
		WillReturnRows(accountRows(testAccount("acc-1", "a@x.com")))
	mock.ExpectRollback()

	boom := errors.New("rejected")
	_, err := repo.Lock(context.Background(), "acc-1", func(*models.Account) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_UnknownAccount(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(sql("FOR UPDATE OF a")).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	called := false
	_, err := repo.Lock(context.Background(), "missing", func(*models.Account) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrAccountNotFound)
	require.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_DuplicateEmailOnSave(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	stored := testAccount("acc-1", "a@x.com")
	changed := stored
	changed.Email = "taken@x.com"

	mock.ExpectBegin()
	mock.ExpectQuery(sql("FOR UPDATE OF a")).WithArgs("acc-1").WillReturnRows(accountRows(stored))
	expectSave(mock, changed).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Lock(context.Background(), "acc-1", func(a *models.Account) error {
		a.Email = "taken@x.com"
		return nil
	})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	mock.ExpectExec(sql("INSERT INTO accounts")).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), testAccount("acc-1", "a@x.com"))
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	want := testAccount("acc-1", "a@x.com")
	mock.ExpectQuery(sql("WHERE a.id = $1")).WithArgs("acc-1").WillReturnRows(accountRows(want))
	mock.ExpectQuery(sql("WHERE a.id = $1")).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_Paging(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	a, b := testAccount("acc-1", "a@x.com"), testAccount("acc-2", "b@x.com")
	// no limit is sent as NULL so postgres returns every row
	mock.ExpectQuery(sql("LIMIT $1 OFFSET $2")).WithArgs(nil, 0).WillReturnRows(accountRows(a, b))
	mock.ExpectQuery(sql("LIMIT $1 OFFSET $2")).WithArgs(1, 1).WillReturnRows(accountRows(b))

	all, err := repo.List(context.Background(), Page{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	second, err := repo.List(context.Background(), Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []models.Account{b}, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_UnknownAccount(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	mock.ExpectExec(sql("DELETE FROM accounts")).WithArgs("missing").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.ErrorIs(t, repo.Delete(context.Background(), "missing"), ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
