package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags a token with the single flow it may be redeemed for.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposeConfirm       Purpose = "confirm"
	PurposeResetPassword Purpose = "reset_password"
	PurposeChangeEmail   Purpose = "change_email"
	PurposeInvitation    Purpose = "invitation"
)

var (
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrClaimMismatch    = errors.New("token claim mismatch")
)

type Claims struct {
	Purpose   Purpose `json:"pur"`
	AccountID string  `json:"uid,omitempty"`
	Email     string  `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies stateless HS512 tokens. Tokens stay valid
// until they expire; the only way to revoke them early is rotating the secret.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer reading time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	return &TokenIssuer{secret: t.secret, now: now}
}

func (t *TokenIssuer) Issue(purpose Purpose, accountID string, email string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Purpose:   purpose,
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   accountID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and purpose of tokenStr.
func (t *TokenIssuer) Verify(purpose Purpose, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.Purpose != purpose {
		return nil, ErrClaimMismatch
	}
	return claims, nil
}

// VerifyFor is Verify plus a check that the token was issued for accountID.
func (t *TokenIssuer) VerifyFor(purpose Purpose, tokenStr string, accountID string) (*Claims, error) {
	claims, err := t.Verify(purpose, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.AccountID == "" || claims.AccountID != accountID {
		return nil, ErrClaimMismatch
	}
	return claims, nil
}
