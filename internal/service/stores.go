package service

import (
	"context"
	"errors"
	"time"

	"github.com/jnitin/flask-catalog/internal/mail"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidToken     = errors.New("the link is invalid or has expired")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrAlreadyConfirmed = errors.New("account already confirmed")
)

// AccountStore is implemented by repository.AccountRepository and the
// in-memory store.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	GetByID(ctx context.Context, id string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	List(ctx context.Context, page repository.Page) ([]models.Account, error)
	ListUnconfirmed(ctx context.Context, from, to time.Time) ([]models.Account, error)
	Lock(ctx context.Context, id string, fn func(*models.Account) error) (models.Account, error)
	LockByEmail(ctx context.Context, email string, fn func(*models.Account) error) (models.Account, error)
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	Upsert(ctx context.Context, role models.Role) (models.Role, error)
	GetByName(ctx context.Context, name string) (models.Role, error)
	GetDefault(ctx context.Context) (models.Role, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category models.Category) error
	GetByID(ctx context.Context, id string) (models.Category, error)
	List(ctx context.Context, filter repository.CategoryFilter) ([]models.Category, error)
	Update(ctx context.Context, category models.Category) error
	Delete(ctx context.Context, id string) error
}

type ItemStore interface {
	Create(ctx context.Context, item models.Item) error
	GetByID(ctx context.Context, id string) (models.Item, error)
	List(ctx context.Context, filter repository.ItemFilter) ([]models.Item, error)
	Update(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, id string) error
}

// MailQueue is implemented by mail.Outbox and mail.Inline.
type MailQueue interface {
	Enqueue(ctx context.Context, msg mail.Message) error
}
