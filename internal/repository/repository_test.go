package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/models"
)

var accountColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name", "confirmed", "blocked",
	"failed_logins", "registered_with_provider", "profile_pic_url", "created_at", "updated_at",
	"role_id", "role_name", "role_is_default", "role_permissions",
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func accountRows(accounts ...models.Account) *pgxmock.Rows {
	rows := pgxmock.NewRows(accountColumns)
	for _, a := range accounts {
		rows.AddRow(
			a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Confirmed, a.Blocked,
			a.FailedLogins, a.RegisteredWithProvider, a.ProfilePicURL, a.CreatedAt, a.UpdatedAt,
			a.Role.ID, a.Role.Name, a.Role.Default, a.Role.Permissions,
		)
	}
	return rows
}

func testAccount(id, email string) models.Account {
	pic := "https://pics.example/" + id
	return models.Account{
		ID:            id,
		Email:         email,
		PasswordHash:  []byte("$argon2id$hash"),
		FirstName:     "Ann",
		LastName:      "Lee",
		Confirmed:     true,
		ProfilePicURL: &pic,
		CreatedAt:     fixedTime,
		UpdatedAt:     fixedTime,
		Role:          models.Role{ID: 1, Name: models.RoleUser, Default: true, Permissions: models.PermCRUDOwned},
	}
}

func sql(fragment string) string {
	return regexp.QuoteMeta(fragment)
}
