package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/ids"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

// CatalogService manages categories and items. Reads are open to every
// authenticated caller; changes need the owner or an administrator.
type CatalogService struct {
	accounts   AccountStore
	categories CategoryStore
	items      ItemStore
	log        zerolog.Logger
}

func NewCatalogService(accounts AccountStore, categories CategoryStore, items ItemStore, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		accounts:   accounts,
		categories: categories,
		items:      items,
		log:        log,
	}
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=96"`
}

type ItemInput struct {
	Name        string `json:"name" validate:"required,max=96"`
	Description string `json:"description" validate:"max=1024"`
	CategoryID  string `json:"category_id" validate:"required"`
}

type ItemPatch struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=96"`
	Description *string `json:"description" validate:"omitnil,max=1024"`
	CategoryID  *string `json:"category_id" validate:"omitnil,min=1"`
}

func (s *CatalogService) ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]models.Category, error) {
	if filter.OwnerID != "" {
		if _, err := s.accounts.GetByID(ctx, filter.OwnerID); err != nil {
			return nil, err
		}
	}
	return s.categories.List(ctx, filter)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor auth.Identity, input CategoryInput) (models.Category, error) {
	if err := auth.RequirePermission(actor, models.PermCRUDOwned); err != nil {
		return models.Category{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return models.Category{}, err
	}

	category := models.Category{ID: ids.New(), Name: input.Name, OwnerID: actor.ID()}
	if err := s.categories.Create(ctx, category); err != nil {
		return models.Category{}, duplicate(err, "category", input.Name)
	}
	return s.categories.GetByID(ctx, category.ID)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor auth.Identity, id string, input CategoryInput) (models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return models.Category{}, err
	}
	if err := auth.CanModifyOwned(actor, category.OwnerID); err != nil {
		return models.Category{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return models.Category{}, err
	}

	category.Name = input.Name
	if err := s.categories.Update(ctx, category); err != nil {
		return models.Category{}, duplicate(err, "category", input.Name)
	}
	return category, nil
}

// DeleteCategory removes the category and every item in it.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor auth.Identity, id string) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanModifyOwned(actor, category.OwnerID); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

func (s *CatalogService) CategoryOwner(ctx context.Context, id string) (models.Account, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	return s.accounts.GetByID(ctx, category.OwnerID)
}

func (s *CatalogService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]models.Item, error) {
	if filter.OwnerID != "" {
		if _, err := s.accounts.GetByID(ctx, filter.OwnerID); err != nil {
			return nil, err
		}
	}
	if filter.CategoryID != "" {
		if _, err := s.categories.GetByID(ctx, filter.CategoryID); err != nil {
			return nil, err
		}
	}
	return s.items.List(ctx, filter)
}

func (s *CatalogService) GetItem(ctx context.Context, id string) (models.Item, error) {
	return s.items.GetByID(ctx, id)
}

// CreateItem adds an item owned by the actor. Any category may hold items
// of any owner.
func (s *CatalogService) CreateItem(ctx context.Context, actor auth.Identity, input ItemInput) (models.Item, error) {
	if err := auth.RequirePermission(actor, models.PermCRUDOwned); err != nil {
		return models.Item{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return models.Item{}, err
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return models.Item{}, err
	}

	item := models.Item{
		ID:          ids.New(),
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     actor.ID(),
		CategoryID:  input.CategoryID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return models.Item{}, duplicate(err, "item", input.Name)
	}
	return s.items.GetByID(ctx, item.ID)
}

func (s *CatalogService) UpdateItem(ctx context.Context, actor auth.Identity, id string, patch ItemPatch) (models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if err := auth.CanModifyOwned(actor, item.OwnerID); err != nil {
		return models.Item{}, err
	}
	if err := validateInput(patch); err != nil {
		return models.Item{}, err
	}

	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.CategoryID != nil && *patch.CategoryID != item.CategoryID {
		if _, err := s.categories.GetByID(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return models.Item{}, fmt.Errorf("%w: category %s does not exist", ErrInvalidInput, *patch.CategoryID)
			}
			return models.Item{}, err
		}
		item.CategoryID = *patch.CategoryID
	}

	if err := s.items.Update(ctx, item); err != nil {
		return models.Item{}, duplicate(err, "item", item.Name)
	}
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, actor auth.Identity, id string) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanModifyOwned(actor, item.OwnerID); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}

func (s *CatalogService) ItemOwner(ctx context.Context, id string) (models.Account, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	return s.accounts.GetByID(ctx, item.OwnerID)
}

func duplicate(err error, kind, name string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %s %q already exists", ErrInvalidInput, kind, name)
	}
	return err
}
