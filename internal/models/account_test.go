package models

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/security"
)

func TestMain(m *testing.M) {
	security.DefaultParams = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
	os.Exit(m.Run())
}

func newAccount(t *testing.T, password string) *Account {
	t.Helper()
	acc := &Account{ID: "a1", Email: "a@x.com"}
	require.NoError(t, acc.SetPassword(password))
	return acc
}

func TestVerifyPassword_SuccessResetsCounter(t *testing.T) {
	acc := newAccount(t, "pw1")
	acc.FailedLogins = 2

	require.True(t, acc.VerifyPassword("pw1"))
	require.Equal(t, 0, acc.FailedLogins)
	require.False(t, acc.Blocked)
}

func TestVerifyPassword_BlocksOnThirdFailure(t *testing.T) {
	acc := newAccount(t, "pw1")

	require.False(t, acc.VerifyPassword("bad"))
	require.False(t, acc.Blocked)
	require.False(t, acc.VerifyPassword("bad"))
	require.False(t, acc.Blocked)
	require.False(t, acc.VerifyPassword("bad"))
	require.True(t, acc.Blocked)
	require.Equal(t, 3, acc.FailedLogins)

	require.False(t, acc.VerifyPassword("bad"))
	require.Equal(t, 3, acc.FailedLogins)
}

func TestVerifyPassword_SuccessLeavesBlockUnchanged(t *testing.T) {
	acc := newAccount(t, "pw1")
	acc.Blocked = true
	acc.FailedLogins = 3

	require.True(t, acc.VerifyPassword("pw1"))
	require.True(t, acc.Blocked)
	require.Equal(t, 0, acc.FailedLogins)
}

func TestVerifyPassword_NoPasswordAlwaysFails(t *testing.T) {
	acc := &Account{RegisteredWithProvider: true}
	require.False(t, acc.VerifyPassword(""))
	require.Equal(t, 1, acc.FailedLogins)
}

func TestSetPassword_SamePlaintextDifferentHash(t *testing.T) {
	a := newAccount(t, "same")
	b := newAccount(t, "same")

	require.NotEqual(t, a.PasswordHash, b.PasswordHash)
	require.True(t, a.VerifyPassword("same"))
	require.True(t, b.VerifyPassword("same"))
}

func TestUnblock(t *testing.T) {
	acc := &Account{Blocked: true, FailedLogins: 5}
	acc.Unblock()
	require.False(t, acc.Blocked)
	require.Zero(t, acc.FailedLogins)
}

func TestAccountPermissions(t *testing.T) {
	user := Account{Role: Role{ID: 1, Name: RoleUser, Permissions: PermCRUDOwned}}
	manager := Account{Role: Role{ID: 2, Name: RoleUsermanager, Permissions: PermCRUDOwned | PermCRUDUsers}}
	admin := Account{Role: Role{ID: 3, Name: RoleAdministrator, Permissions: PermCRUDOwned | PermCRUDUsers | PermAdmin}}
	none := Account{}

	require.True(t, user.Can(PermCRUDOwned))
	require.False(t, user.IsUserManager())
	require.True(t, manager.IsUserManager())
	require.False(t, manager.IsAdministrator())
	require.True(t, admin.IsAdministrator())
	require.True(t, admin.Can(PermCRUDOwned|PermCRUDUsers))
	require.False(t, none.Can(PermCRUDOwned))
	require.False(t, admin.Can(0))
}

func TestDisplayName(t *testing.T) {
	acc := Account{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com"}
	require.Equal(t, "ADA LOVELACE <ada@x.com>", acc.DisplayName())
}
