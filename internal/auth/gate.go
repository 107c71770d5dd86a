package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/security"
)

var (
	ErrUnauthorized = errors.New("invalid credentials")
	ErrBlocked      = errors.New("account has been blocked, contact the site administrator")
	ErrUnconfirmed  = errors.New("email not confirmed")
)

// CredentialStore looks up accounts and records password attempts.
type CredentialStore interface {
	GetByID(ctx context.Context, id string) (models.Account, error)
	// VerifyPassword checks password for the account registered with email
	// and persists the updated failed login state. It returns
	// repository.ErrAccountNotFound for unknown emails.
	VerifyPassword(ctx context.Context, email, password string) (models.Account, bool, error)
}

// Credentials are what the client sent in the Authorization header. A token
// travels as Username with an empty Password.
type Credentials struct {
	Username string
	Password string
}

type Gate struct {
	store  CredentialStore
	tokens *security.TokenIssuer
	logger zerolog.Logger
}

func NewGate(store CredentialStore, tokens *security.TokenIssuer, logger zerolog.Logger) *Gate {
	return &Gate{store: store, tokens: tokens, logger: logger}
}

// Resolve turns credentials into an identity. Empty credentials resolve to
// Anonymous; whether anonymous or unconfirmed callers may proceed is decided
// per route by the caller.
func (g *Gate) Resolve(ctx context.Context, creds Credentials) (Identity, error) {
	switch {
	case creds.Username == "" && creds.Password == "":
		return Anonymous(), nil
	case creds.Password == "":
		return g.resolveToken(ctx, creds.Username)
	default:
		return g.resolvePassword(ctx, creds.Username, creds.Password)
	}
}

func (g *Gate) resolveToken(ctx context.Context, token string) (Identity, error) {
	claims, err := g.tokens.Verify(security.PurposeSession, token)
	if err != nil {
		g.logger.Debug().Err(err).Msg("session token rejected")
		return Anonymous(), ErrUnauthorized
	}

	account, err := g.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return Anonymous(), ErrUnauthorized
		}
		return Anonymous(), err
	}
	if account.Blocked {
		return Anonymous(), ErrBlocked
	}
	return Authenticated(account, MethodToken), nil
}

func (g *Gate) resolvePassword(ctx context.Context, email, password string) (Identity, error) {
	account, ok, err := g.store.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return Anonymous(), ErrUnauthorized
		}
		return Anonymous(), err
	}
	// checked before ok: a correct password does not lift a block
	if account.Blocked {
		return Anonymous(), ErrBlocked
	}
	if !ok {
		return Anonymous(), ErrUnauthorized
	}
	return Authenticated(account, MethodPassword), nil
}

// Admit applies the confirmation rule to a resolved identity.
// allowUnconfirmed is true for the confirmation routes.
func Admit(id Identity, allowAnonymous, allowUnconfirmed bool) error {
	account, ok := id.Account()
	if !ok {
		if allowAnonymous {
			return nil
		}
		return ErrUnauthorized
	}
	if !account.Confirmed && !allowUnconfirmed {
		return ErrUnconfirmed
	}
	return nil
}
