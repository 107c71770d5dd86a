package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

func TestCatalog_OwnershipRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@x.com", models.RoleUser)
	stranger := f.register(t, "s@x.com", models.RoleUser)
	manager := f.register(t, "um@x.com", models.RoleUsermanager)
	admin := f.register(t, "admin@x.com", models.RoleAdministrator)

	_, err := f.catalog.CreateCategory(ctx, auth.Anonymous(), CategoryInput{Name: "Soccer"})
	require.ErrorIs(t, err, auth.ErrForbidden)

	cat, err := f.catalog.CreateCategory(ctx, owner, CategoryInput{Name: "Soccer"})
	require.NoError(t, err)
	require.Equal(t, owner.ID(), cat.OwnerID)

	_, err = f.catalog.CreateCategory(ctx, stranger, CategoryInput{Name: "Soccer"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.catalog.UpdateCategory(ctx, stranger, cat.ID, CategoryInput{Name: "Football"})
	require.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.catalog.UpdateCategory(ctx, manager, cat.ID, CategoryInput{Name: "Football"})
	require.ErrorIs(t, err, auth.ErrForbidden)
	renamed, err := f.catalog.UpdateCategory(ctx, admin, cat.ID, CategoryInput{Name: "Football"})
	require.NoError(t, err)
	require.Equal(t, "Football", renamed.Name)

	item, err := f.catalog.CreateItem(ctx, stranger, ItemInput{Name: "Ball", CategoryID: cat.ID})
	require.NoError(t, err)
	require.Equal(t, stranger.ID(), item.OwnerID)

	_, err = f.catalog.CreateItem(ctx, stranger, ItemInput{Name: "Net", CategoryID: "missing"})
	require.ErrorIs(t, err, repository.ErrCategoryNotFound)

	desc := "round"
	_, err = f.catalog.UpdateItem(ctx, owner, item.ID, ItemPatch{Description: &desc})
	require.ErrorIs(t, err, auth.ErrForbidden)
	updated, err := f.catalog.UpdateItem(ctx, stranger, item.ID, ItemPatch{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "round", updated.Description)

	missing := "missing"
	_, err = f.catalog.UpdateItem(ctx, stranger, item.ID, ItemPatch{CategoryID: &missing})
	require.ErrorIs(t, err, ErrInvalidInput)

	itemOwner, err := f.catalog.ItemOwner(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, stranger.ID(), itemOwner.ID)
	catOwner, err := f.catalog.CategoryOwner(ctx, cat.ID)
	require.NoError(t, err)
	require.Equal(t, owner.ID(), catOwner.ID)

	require.ErrorIs(t, f.catalog.DeleteCategory(ctx, stranger, cat.ID), auth.ErrForbidden)
	require.NoError(t, f.catalog.DeleteCategory(ctx, owner, cat.ID))
	_, err = f.catalog.GetItem(ctx, item.ID)
	require.ErrorIs(t, err, repository.ErrItemNotFound)
}

func TestCatalog_Lists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleUser)
	b := f.register(t, "b@x.com", models.RoleUser)

	catA, err := f.catalog.CreateCategory(ctx, a, CategoryInput{Name: "A"})
	require.NoError(t, err)
	_, err = f.catalog.CreateCategory(ctx, b, CategoryInput{Name: "B"})
	require.NoError(t, err)
	_, err = f.catalog.CreateItem(ctx, b, ItemInput{Name: "b-in-a", CategoryID: catA.ID})
	require.NoError(t, err)

	all, err := f.catalog.ListCategories(ctx, repository.CategoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := f.catalog.ListCategories(ctx, repository.CategoryFilter{OwnerID: a.ID()})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = f.catalog.ListCategories(ctx, repository.CategoryFilter{OwnerID: "ghost"})
	require.ErrorIs(t, err, repository.ErrAccountNotFound)

	items, err := f.catalog.ListItems(ctx, repository.ItemFilter{CategoryID: catA.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = f.catalog.ListItems(ctx, repository.ItemFilter{OwnerID: a.ID()})
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = f.catalog.ListItems(ctx, repository.ItemFilter{CategoryID: "ghost"})
	require.ErrorIs(t, err, repository.ErrCategoryNotFound)

	require.NoError(t, f.accounts.Delete(ctx, a, a.ID()))
	items, err = f.catalog.ListItems(ctx, repository.ItemFilter{})
	require.NoError(t, err)
	require.Empty(t, items)
}
