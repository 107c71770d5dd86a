package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/security"
)

// AuthService backs the authentication gate and issues session tokens.
type AuthService struct {
	accounts AccountStore
	tokens   *security.TokenIssuer
	cfg      config.SecurityConfig
	log      zerolog.Logger
}

func NewAuthService(
	accounts AccountStore,
	tokens *security.TokenIssuer,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		cfg:      cfg,
		log:      log,
	}
}

func (s *AuthService) GetByID(ctx context.Context, id string) (models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// VerifyPassword checks the password under the account row lock, so
// concurrent attempts against one account are counted one after another.
// The failed login state is stored whatever the outcome.
func (s *AuthService) VerifyPassword(ctx context.Context, email, password string) (models.Account, bool, error) {
	var ok, wasBlocked bool
	account, err := s.accounts.LockByEmail(ctx, email, func(a *models.Account) error {
		wasBlocked = a.Blocked
		ok = a.VerifyPassword(password)
		return nil
	})
	if err != nil {
		return models.Account{}, false, err
	}

	if !ok {
		s.log.Info().
			Str("account_id", account.ID).
			Int("failed_logins", account.FailedLogins).
			Msg("password verification failed")
	}
	if account.Blocked && !wasBlocked {
		s.log.Warn().Str("account_id", account.ID).Msg("account blocked after repeated failed logins")
	}
	return account, ok, nil
}

// IssueSessionToken returns a session token for account and its lifetime.
func (s *AuthService) IssueSessionToken(account models.Account) (string, time.Duration, error) {
	token, err := s.tokens.Issue(security.PurposeSession, account.ID, "", s.cfg.SessionTTL)
	if err != nil {
		return "", 0, fmt.Errorf("issue session token: %w", err)
	}
	return token, s.cfg.SessionTTL, nil
}
