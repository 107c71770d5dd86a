package memory

import (
	"context"
	"fmt"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

type CategoryStore struct {
	s *Store
}

func (c *CategoryStore) Create(_ context.Context, category models.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.accounts[category.OwnerID]; !ok {
		return repository.ErrAccountNotFound
	}
	if c.nameTaken(category.Name, "") {
		return fmt.Errorf("category %q: %w", category.Name, repository.ErrDuplicate)
	}
	category.CreatedAt = c.s.now()
	c.s.categories[category.ID] = category
	return nil
}

func (c *CategoryStore) GetByID(_ context.Context, id string) (models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	category, ok := c.s.categories[id]
	if !ok {
		return models.Category{}, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (c *CategoryStore) List(_ context.Context, filter repository.CategoryFilter) ([]models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []models.Category
	for _, category := range c.s.categories {
		if filter.OwnerID != "" && category.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, category)
	}
	sortBy(out, func(x, y models.Category) bool { return x.Name < y.Name })
	return page(out, filter.Page), nil
}

func (c *CategoryStore) Update(_ context.Context, category models.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	existing, ok := c.s.categories[category.ID]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	if c.nameTaken(category.Name, category.ID) {
		return fmt.Errorf("category %q: %w", category.Name, repository.ErrDuplicate)
	}
	existing.Name = category.Name
	c.s.categories[category.ID] = existing
	return nil
}

func (c *CategoryStore) Delete(_ context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	c.s.deleteCategory(id)
	return nil
}

func (c *CategoryStore) nameTaken(name, exceptID string) bool {
	for id, category := range c.s.categories {
		if category.Name == name && id != exceptID {
			return true
		}
	}
	return false
}

// deleteCategory removes the category and its items. Callers hold s.mu.
func (s *Store) deleteCategory(id string) {
	delete(s.categories, id)
	for itemID, item := range s.items {
		if item.CategoryID == id {
			delete(s.items, itemID)
		}
	}
}

type ItemStore struct {
	s *Store
}

func (i *ItemStore) Create(_ context.Context, item models.Item) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	if _, ok := i.s.accounts[item.OwnerID]; !ok {
		return repository.ErrAccountNotFound
	}
	if _, ok := i.s.categories[item.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if i.nameTaken(item.Name, "") {
		return fmt.Errorf("item %q: %w", item.Name, repository.ErrDuplicate)
	}
	item.CreatedAt = i.s.now()
	i.s.items[item.ID] = item
	return nil
}

func (i *ItemStore) GetByID(_ context.Context, id string) (models.Item, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	item, ok := i.s.items[id]
	if !ok {
		return models.Item{}, repository.ErrItemNotFound
	}
	return item, nil
}

func (i *ItemStore) List(_ context.Context, filter repository.ItemFilter) ([]models.Item, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	var out []models.Item
	for _, item := range i.s.items {
		if filter.OwnerID != "" && item.OwnerID != filter.OwnerID {
			continue
		}
		if filter.CategoryID != "" && item.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, item)
	}
	sortBy(out, func(x, y models.Item) bool { return x.Name < y.Name })
	return page(out, filter.Page), nil
}

func (i *ItemStore) Update(_ context.Context, item models.Item) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	existing, ok := i.s.items[item.ID]
	if !ok {
		return repository.ErrItemNotFound
	}
	if _, ok := i.s.categories[item.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if i.nameTaken(item.Name, item.ID) {
		return fmt.Errorf("item %q: %w", item.Name, repository.ErrDuplicate)
	}
	existing.Name = item.Name
	existing.Description = item.Description
	existing.CategoryID = item.CategoryID
	i.s.items[item.ID] = existing
	return nil
}

func (i *ItemStore) Delete(_ context.Context, id string) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	if _, ok := i.s.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(i.s.items, id)
	return nil
}

func (i *ItemStore) nameTaken(name, exceptID string) bool {
	for id, item := range i.s.items {
		if item.Name == name && id != exceptID {
			return true
		}
	}
	return false
}
