package auth

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/security"
)

func TestMain(m *testing.M) {
	security.DefaultParams = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
	os.Exit(m.Run())
}

type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func newFakeStore(accounts ...models.Account) *fakeStore {
	s := &fakeStore{accounts: map[string]models.Account{}}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return a, nil
}

func (s *fakeStore) VerifyPassword(_ context.Context, email, password string) (models.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.accounts {
		if a.Email == email {
			ok := a.VerifyPassword(password)
			s.accounts[id] = a
			return a, ok, nil
		}
	}
	return models.Account{}, false, repository.ErrAccountNotFound
}

var userRole = models.Role{ID: 1, Name: models.RoleUser, Default: true, Permissions: models.PermCRUDOwned}

func newAccount(t *testing.T, id, email, password string) models.Account {
	t.Helper()
	a := models.Account{ID: id, Email: email, Confirmed: true, Role: userRole}
	require.NoError(t, a.SetPassword(password))
	return a
}

func newGate(store CredentialStore) (*Gate, *security.TokenIssuer) {
	issuer := security.NewTokenIssuer("secret")
	return NewGate(store, issuer, zerolog.Nop()), issuer
}

func TestResolve_Anonymous(t *testing.T) {
	gate, _ := newGate(newFakeStore())
	id, err := gate.Resolve(context.Background(), Credentials{})
	require.NoError(t, err)
	require.True(t, id.IsAnonymous())

	require.NoError(t, Admit(id, true, false))
	require.ErrorIs(t, Admit(id, false, true), ErrUnauthorized)
}

func TestResolve_Password(t *testing.T) {
	store := newFakeStore(newAccount(t, "a", "a@x.com", "pw1"))
	gate, _ := newGate(store)
	ctx := context.Background()

	id, err := gate.Resolve(ctx, Credentials{Username: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	require.Equal(t, "a", id.ID())
	require.False(t, id.UsedToken())

	_, err = gate.Resolve(ctx, Credentials{Username: "nobody@x.com", Password: "pw1"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolve_BlocksOnThirdFailure(t *testing.T) {
	store := newFakeStore(newAccount(t, "a", "a@x.com", "pw1"))
	gate, _ := newGate(store)
	ctx := context.Background()
	wrong := Credentials{Username: "a@x.com", Password: "nope"}

	_, err := gate.Resolve(ctx, wrong)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = gate.Resolve(ctx, wrong)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = gate.Resolve(ctx, wrong)
	require.ErrorIs(t, err, ErrBlocked)

	_, err = gate.Resolve(ctx, Credentials{Username: "a@x.com", Password: "pw1"})
	require.ErrorIs(t, err, ErrBlocked)

	a, _ := store.GetByID(ctx, "a")
	require.True(t, a.Blocked)
	require.Zero(t, a.FailedLogins)
}

func TestResolve_Token(t *testing.T) {
	store := newFakeStore(newAccount(t, "a", "a@x.com", "pw1"))
	gate, issuer := newGate(store)
	ctx := context.Background()

	tok, err := issuer.Issue(security.PurposeSession, "a", "", time.Hour)
	require.NoError(t, err)

	id, err := gate.Resolve(ctx, Credentials{Username: tok})
	require.NoError(t, err)
	require.Equal(t, "a", id.ID())
	require.True(t, id.UsedToken())

	confirm, err := issuer.Issue(security.PurposeConfirm, "a", "", time.Hour)
	require.NoError(t, err)
	_, err = gate.Resolve(ctx, Credentials{Username: confirm})
	require.ErrorIs(t, err, ErrUnauthorized)

	ghost, err := issuer.Issue(security.PurposeSession, "ghost", "", time.Hour)
	require.NoError(t, err)
	_, err = gate.Resolve(ctx, Credentials{Username: ghost})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = gate.Resolve(ctx, Credentials{Username: "garbage"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolve_TokenOfBlockedAccount(t *testing.T) {
	a := newAccount(t, "a", "a@x.com", "pw1")
	a.Blocked = true
	gate, issuer := newGate(newFakeStore(a))

	tok, err := issuer.Issue(security.PurposeSession, "a", "", time.Hour)
	require.NoError(t, err)

	_, err = gate.Resolve(context.Background(), Credentials{Username: tok})
	require.ErrorIs(t, err, ErrBlocked)
}

func TestAdmit_Unconfirmed(t *testing.T) {
	a := newAccount(t, "a", "a@x.com", "pw1")
	a.Confirmed = false
	id := Authenticated(a, MethodPassword)

	require.ErrorIs(t, Admit(id, false, false), ErrUnconfirmed)
	require.NoError(t, Admit(id, false, true))
}

func TestIdentity_Variants(t *testing.T) {
	anon := Anonymous()
	require.False(t, anon.Can(models.PermCRUDOwned))
	require.False(t, anon.Owns(""))
	require.False(t, anon.IsAdministrator())
	_, ok := anon.Account()
	require.False(t, ok)

	admin := Authenticated(models.Account{ID: "root", Role: models.Role{Permissions: models.PermCRUDOwned | models.PermCRUDUsers | models.PermAdmin}}, MethodPassword)
	require.True(t, admin.IsAdministrator())
	require.True(t, admin.IsUserManager())
	require.True(t, admin.Owns("root"))
	require.False(t, admin.Owns("other"))
	require.False(t, admin.UsedToken())
	require.False(t, anon.UsedToken())
	require.True(t, Authenticated(models.Account{ID: "root"}, MethodToken).UsedToken())

	ctx := WithIdentity(context.Background(), admin)
	require.Equal(t, "root", FromContext(ctx).ID())
	require.True(t, FromContext(context.Background()).IsAnonymous())
}

func TestAuthorizationChecks(t *testing.T) {
	user := Authenticated(models.Account{ID: "u", Role: userRole}, MethodToken)
	manager := Authenticated(models.Account{ID: "m", Role: models.Role{Permissions: models.PermCRUDOwned | models.PermCRUDUsers}}, MethodToken)
	admin := Authenticated(models.Account{ID: "root", Role: models.Role{Permissions: models.PermCRUDOwned | models.PermCRUDUsers | models.PermAdmin}}, MethodToken)

	require.NoError(t, CanManageAccount(user, "u"))
	require.ErrorIs(t, CanManageAccount(user, "m"), ErrForbidden)
	require.NoError(t, CanManageAccount(manager, "u"))
	require.NoError(t, CanManageAccount(admin, "u"))

	require.NoError(t, CanModifyOwned(user, "u"))
	require.ErrorIs(t, CanModifyOwned(manager, "u"), ErrForbidden)
	require.NoError(t, CanModifyOwned(admin, "u"))

	require.NoError(t, RequirePermission(user, models.PermCRUDOwned))
	require.ErrorIs(t, RequirePermission(user, models.PermCRUDUsers), ErrForbidden)
	require.ErrorIs(t, RequirePermission(manager, models.PermAdmin), ErrForbidden)

	scope, err := AccountListScope(user)
	require.NoError(t, err)
	require.Equal(t, "u", scope)
	scope, err = AccountListScope(manager)
	require.NoError(t, err)
	require.Empty(t, scope)
	_, err = AccountListScope(Anonymous())
	require.ErrorIs(t, err, ErrUnauthorized)
}
