package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

type AccountStore struct {
	s *Store
}

func (a *AccountStore) Create(_ context.Context, account models.Account) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.accounts[account.ID]; ok {
		return fmt.Errorf("account %s: %w", account.ID, repository.ErrDuplicate)
	}
	if a.emailTaken(account.Email, "") {
		return fmt.Errorf("account %s: %w", account.Email, repository.ErrDuplicate)
	}
	now := a.s.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	a.s.accounts[account.ID] = account
	return nil
}

func (a *AccountStore) GetByID(_ context.Context, id string) (models.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	account, ok := a.s.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return a.withRole(account), nil
}

func (a *AccountStore) FindByEmail(_ context.Context, email string) (models.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	account, ok := a.byEmail(email)
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return a.withRole(account), nil
}

func (a *AccountStore) List(_ context.Context, p repository.Page) ([]models.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	out := make([]models.Account, 0, len(a.s.accounts))
	for _, account := range a.s.accounts {
		out = append(out, a.withRole(account))
	}
	sortBy(out, func(x, y models.Account) bool {
		if x.CreatedAt.Equal(y.CreatedAt) {
			return x.ID < y.ID
		}
		return x.CreatedAt.Before(y.CreatedAt)
	})
	return page(out, p), nil
}

func (a *AccountStore) ListUnconfirmed(_ context.Context, from, to time.Time) ([]models.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	var out []models.Account
	for _, account := range a.s.accounts {
		if account.Confirmed || account.CreatedAt.Before(from) || !account.CreatedAt.Before(to) {
			continue
		}
		out = append(out, a.withRole(account))
	}
	sortBy(out, func(x, y models.Account) bool { return x.CreatedAt.Before(y.CreatedAt) })
	return out, nil
}

// Lock runs fn with the store lock held and stores the result when fn
// succeeds.
func (a *AccountStore) Lock(_ context.Context, id string, fn func(*models.Account) error) (models.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	account, ok := a.s.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return a.apply(account, fn)
}

func (a *AccountStore) LockByEmail(_ context.Context, email string, fn func(*models.Account) error) (models.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	account, ok := a.byEmail(email)
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return a.apply(account, fn)
}

func (a *AccountStore) Delete(_ context.Context, id string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(a.s.accounts, id)
	for itemID, item := range a.s.items {
		if item.OwnerID == id {
			delete(a.s.items, itemID)
		}
	}
	for catID, c := range a.s.categories {
		if c.OwnerID == id {
			a.s.deleteCategory(catID)
		}
	}
	return nil
}

func (a *AccountStore) apply(account models.Account, fn func(*models.Account) error) (models.Account, error) {
	working := a.withRole(account)
	working.PasswordHash = append([]byte(nil), account.PasswordHash...)
	if err := fn(&working); err != nil {
		return models.Account{}, err
	}
	if a.emailTaken(working.Email, working.ID) {
		return models.Account{}, fmt.Errorf("account %s: %w", working.Email, repository.ErrDuplicate)
	}
	if working.Role.ID != 0 {
		if _, ok := a.s.roles[working.Role.ID]; !ok {
			return models.Account{}, repository.ErrRoleNotFound
		}
	}
	working.ID = account.ID
	working.CreatedAt = account.CreatedAt
	working.RegisteredWithProvider = account.RegisteredWithProvider
	working.UpdatedAt = a.s.now()
	a.s.accounts[working.ID] = working
	return a.withRole(working), nil
}

func (a *AccountStore) byEmail(email string) (models.Account, bool) {
	for _, account := range a.s.accounts {
		if account.Email == email {
			return account, true
		}
	}
	return models.Account{}, false
}

func (a *AccountStore) emailTaken(email, exceptID string) bool {
	account, ok := a.byEmail(email)
	return ok && account.ID != exceptID
}

// withRole refreshes the embedded role from the role table, like the join
// in the postgres repository.
func (a *AccountStore) withRole(account models.Account) models.Account {
	if role, ok := a.s.roles[account.Role.ID]; ok {
		account.Role = role
	} else {
		account.Role = models.Role{}
	}
	return account
}
