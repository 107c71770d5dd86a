package auth

import (
	"errors"

	"github.com/jnitin/flask-catalog/internal/models"
)

var ErrForbidden = errors.New("permission denied")

func RequirePermission(id Identity, perm models.Permission) error {
	if !id.Can(perm) {
		return ErrForbidden
	}
	return nil
}

// CanManageAccount allows the account itself and user managers or
// administrators.
func CanManageAccount(actor Identity, accountID string) error {
	if actor.Owns(accountID) || actor.IsUserManager() || actor.IsAdministrator() {
		return nil
	}
	return ErrForbidden
}

// CanModifyOwned allows the owner of a catalog entry and administrators.
func CanModifyOwned(actor Identity, ownerID string) error {
	if actor.Owns(ownerID) || actor.IsAdministrator() {
		return nil
	}
	return ErrForbidden
}

// AccountListScope narrows account listings. It returns the only account id
// the actor may see, or "" when every account is visible.
func AccountListScope(actor Identity) (string, error) {
	if actor.IsAnonymous() {
		return "", ErrUnauthorized
	}
	if actor.IsUserManager() || actor.IsAdministrator() {
		return "", nil
	}
	return actor.ID(), nil
}
