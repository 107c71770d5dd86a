package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/repository/memory"
)

func TestSeedRoles_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, SeedRoles(ctx, store.Roles()))

	admin, err := store.Roles().GetByName(ctx, models.RoleAdministrator)
	require.NoError(t, err)
	admin.RemovePermission(models.PermAdmin)
	_, err = store.Roles().Upsert(ctx, admin)
	require.NoError(t, err)

	require.NoError(t, SeedRoles(ctx, store.Roles()))

	want := map[string]models.Permission{
		models.RoleUser:          1,
		models.RoleUsermanager:   3,
		models.RoleAdministrator: 7,
	}
	defaults := 0
	for name, perms := range want {
		role, err := store.Roles().GetByName(ctx, name)
		require.NoError(t, err)
		require.Equal(t, perms, role.Permissions, name)
		if role.Default {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)

	def, err := store.Roles().GetDefault(ctx)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, def.Name)
}

func TestSeedAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, SeedRoles(ctx, store.Roles()))

	cfg := config.SeedConfig{
		Enabled:     true,
		Admin:       config.SeedAccount{Email: "admin@x.com", Password: "a", FirstName: "Ad", LastName: "Min"},
		UserManager: config.SeedAccount{Email: "um@x.com", Password: "b"},
		User:        config.SeedAccount{Email: "user@x.com"},
	}
	require.NoError(t, SeedAccounts(ctx, store.Accounts(), store.Roles(), cfg, zerolog.Nop()))
	require.NoError(t, SeedAccounts(ctx, store.Accounts(), store.Roles(), cfg, zerolog.Nop()))

	admin, err := store.Accounts().FindByEmail(ctx, "admin@x.com")
	require.NoError(t, err)
	require.True(t, admin.Confirmed)
	require.True(t, admin.IsAdministrator())
	require.True(t, admin.VerifyPassword("a"))

	um, err := store.Accounts().FindByEmail(ctx, "um@x.com")
	require.NoError(t, err)
	require.True(t, um.IsUserManager())
	require.False(t, um.IsAdministrator())

	_, err = store.Accounts().FindByEmail(ctx, "user@x.com")
	require.Error(t, err)
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, SeedRoles(ctx, store.Roles()))

	cfg := config.SeedConfig{User: config.SeedAccount{Email: "user@x.com", Password: "u", FirstName: "De", LastName: "Mo"}}

	// no account yet
	require.NoError(t, SeedCatalog(ctx, store.Accounts(), store.Categories(), store.Items(), cfg, zerolog.Nop()))
	all, err := store.Categories().List(ctx, repository.CategoryFilter{})
	require.NoError(t, err)
	require.Empty(t, all)

	require.NoError(t, SeedAccounts(ctx, store.Accounts(), store.Roles(), cfg, zerolog.Nop()))
	require.NoError(t, SeedCatalog(ctx, store.Accounts(), store.Categories(), store.Items(), cfg, zerolog.Nop()))
	require.NoError(t, SeedCatalog(ctx, store.Accounts(), store.Categories(), store.Items(), cfg, zerolog.Nop()))

	user, err := store.Accounts().FindByEmail(ctx, "user@x.com")
	require.NoError(t, err)

	categories, err := store.Categories().List(ctx, repository.CategoryFilter{OwnerID: user.ID})
	require.NoError(t, err)
	require.Len(t, categories, len(defaultCatalog))

	items, err := store.Items().List(ctx, repository.ItemFilter{OwnerID: user.ID})
	require.NoError(t, err)
	want := 0
	for _, c := range defaultCatalog {
		want += len(c.items)
	}
	require.Len(t, items, want)
}

func TestSeedCatalog_SkipsOwnerWithCategories(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, SeedRoles(ctx, store.Roles()))

	cfg := config.SeedConfig{User: config.SeedAccount{Email: "user@x.com", Password: "u"}}
	require.NoError(t, SeedAccounts(ctx, store.Accounts(), store.Roles(), cfg, zerolog.Nop()))
	user, err := store.Accounts().FindByEmail(ctx, "user@x.com")
	require.NoError(t, err)
	require.NoError(t, store.Categories().Create(ctx, models.Category{ID: "c1", Name: "Mine", OwnerID: user.ID}))

	require.NoError(t, SeedCatalog(ctx, store.Accounts(), store.Categories(), store.Items(), cfg, zerolog.Nop()))

	categories, err := store.Categories().List(ctx, repository.CategoryFilter{})
	require.NoError(t, err)
	require.Len(t, categories, 1)
}
