package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/security"
)

func TestVerifyPassword_PersistsAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", models.RoleUser)

	for i := 1; i <= 2; i++ {
		account, ok, err := f.auth.VerifyPassword(ctx, "a@x.com", "bad")
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, i, account.FailedLogins)
	}

	account, ok, err := f.auth.VerifyPassword(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, account.FailedLogins)

	stored, err := f.store.Accounts().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Zero(t, stored.FailedLogins)
	require.False(t, stored.Blocked)

	_, _, err = f.auth.VerifyPassword(ctx, "nobody@x.com", "pw1")
	require.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestVerifyPassword_ConcurrentFailuresAreCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", models.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = f.auth.VerifyPassword(ctx, "a@x.com", "bad")
		}()
	}
	wg.Wait()

	stored, err := f.store.Accounts().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, models.MaxFailedLogins, stored.FailedLogins)
	require.True(t, stored.Blocked)
}

func TestIssueSessionToken(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "a@x.com", models.RoleUser)
	account, _ := id.Account()

	tok, ttl, err := f.auth.IssueSessionToken(account)
	require.NoError(t, err)
	require.Equal(t, securityCfg.SessionTTL, ttl)

	claims, err := f.tokens.VerifyFor(security.PurposeSession, tok, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.AccountID)
}
