// Package memory keeps accounts, roles and catalog rows in process memory.
// It mirrors the postgres repositories, including unique names, row level
// locking of accounts and cascading deletes, and serves tests and local runs
// without a database.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	roles      map[int64]models.Role
	nextRoleID int64
	accounts   map[string]models.Account
	categories map[string]models.Category
	items      map[string]models.Item
}

func New() *Store {
	return &Store{
		now:        time.Now,
		roles:      map[int64]models.Role{},
		accounts:   map[string]models.Account{},
		categories: map[string]models.Category{},
		items:      map[string]models.Item{},
	}
}

// WithClock sets the clock used for created and updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) Accounts() *AccountStore    { return &AccountStore{s: s} }
func (s *Store) Roles() *RoleStore          { return &RoleStore{s: s} }
func (s *Store) Categories() *CategoryStore { return &CategoryStore{s: s} }
func (s *Store) Items() *ItemStore          { return &ItemStore{s: s} }

func page[T any](rows []T, p repository.Page) []T {
	if p.Offset >= len(rows) {
		return nil
	}
	rows = rows[p.Offset:]
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	return rows
}

func sortBy[T any](rows []T, less func(a, b T) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
