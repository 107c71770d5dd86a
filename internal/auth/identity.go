package auth

import (
	"context"

	"github.com/jnitin/flask-catalog/internal/models"
)

type identityKind int

const (
	kindAnonymous identityKind = iota
	kindAuthenticated
)

// Method records how an authenticated identity proved itself.
type Method int

const (
	MethodPassword Method = iota + 1
	MethodToken
)

// Identity is the caller of one request: either anonymous or a resolved
// account. The zero value is anonymous.
type Identity struct {
	kind    identityKind
	method  Method
	account models.Account
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(account models.Account, method Method) Identity {
	return Identity{kind: kindAuthenticated, method: method, account: account}
}

func (i Identity) IsAnonymous() bool { return i.kind == kindAnonymous }

// Account returns the resolved account and false for anonymous callers.
func (i Identity) Account() (models.Account, bool) {
	if i.kind != kindAuthenticated {
		return models.Account{}, false
	}
	return i.account, true
}

func (i Identity) ID() string {
	if i.kind != kindAuthenticated {
		return ""
	}
	return i.account.ID
}

func (i Identity) UsedToken() bool {
	return i.kind == kindAuthenticated && i.method == MethodToken
}

func (i Identity) Can(perm models.Permission) bool {
	switch i.kind {
	case kindAuthenticated:
		return i.account.Can(perm)
	default:
		return false
	}
}

func (i Identity) IsAdministrator() bool {
	return i.Can(models.PermAdmin)
}

func (i Identity) IsUserManager() bool {
	return i.Can(models.PermCRUDUsers)
}

// Owns reports whether the caller is the account identified by ownerID.
func (i Identity) Owns(ownerID string) bool {
	switch i.kind {
	case kindAuthenticated:
		return ownerID != "" && i.account.ID == ownerID
	default:
		return false
	}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity bound by the gate, or Anonymous.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}
