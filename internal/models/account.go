package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/jnitin/flask-catalog/internal/security"
)

// MaxFailedLogins consecutive password failures block an account.
const MaxFailedLogins = 3

type Account struct {
	ID                     string
	Email                  string
	PasswordHash           []byte
	FirstName              string
	LastName               string
	Confirmed              bool
	Blocked                bool
	FailedLogins           int
	RegisteredWithProvider bool
	ProfilePicURL          *string
	Role                   Role
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// SetPassword replaces the stored hash. The plaintext is never kept.
func (a *Account) SetPassword(plaintext string) error {
	hash, err := security.HashPassword(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) HasPassword() bool {
	return len(a.PasswordHash) > 0
}

// VerifyPassword checks plaintext and updates the failed login counter. The
// caller is expected to persist the account whatever the outcome.
func (a *Account) VerifyPassword(plaintext string) bool {
	if a.HasPassword() {
		if ok, err := security.VerifyPassword(plaintext, a.PasswordHash); err == nil && ok {
			a.FailedLogins = 0
			return true
		}
	}

	// the counter stops at the threshold while the account stays blocked
	if !a.Blocked || a.FailedLogins < MaxFailedLogins {
		a.FailedLogins++
	}
	if a.FailedLogins >= MaxFailedLogins {
		a.Blocked = true
	}
	return false
}

func (a *Account) Unblock() {
	a.FailedLogins = 0
	a.Blocked = false
}

func (a Account) Can(perm Permission) bool {
	return perm != 0 && a.Role.HasPermission(perm)
}

func (a Account) IsAdministrator() bool {
	return a.Can(PermAdmin)
}

func (a Account) IsUserManager() bool {
	return a.Can(PermCRUDUsers)
}

func (a Account) DisplayName() string {
	return fmt.Sprintf("%s %s <%s>", strings.ToUpper(a.FirstName), strings.ToUpper(a.LastName), a.Email)
}
