package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/ids"
	"github.com/jnitin/flask-catalog/internal/mail"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/security"
)

// AccountService runs the account lifecycle: registration, confirmation,
// password and email changes, invitations and user administration.
type AccountService struct {
	accounts AccountStore
	roles    RoleStore
	tokens   *security.TokenIssuer
	mail     MailQueue
	cfg      config.SecurityConfig
	log      zerolog.Logger
}

func NewAccountService(
	accounts AccountStore,
	roles RoleStore,
	tokens *security.TokenIssuer,
	mail MailQueue,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		roles:    roles,
		tokens:   tokens,
		mail:     mail,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=64"`
	Password  string `json:"password" validate:"required,max=128"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
}

// Register creates an unconfirmed account with the default role and mails a
// confirmation link.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (models.Account, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return models.Account{}, err
	}

	account, err := s.create(ctx, input, false)
	if err != nil {
		return models.Account{}, err
	}

	s.sendConfirmation(ctx, account, mail.KindConfirmation)
	return account, nil
}

// CompleteInvitation registers the invited email. The account is confirmed
// since the invitation link already proved the address.
func (s *AccountService) CompleteInvitation(ctx context.Context, token string, input RegisterInput) (models.Account, error) {
	claims, err := s.tokens.Verify(security.PurposeInvitation, token)
	if err != nil || claims.Email == "" {
		return models.Account{}, invalidToken(err)
	}

	input.Email = claims.Email
	if err := validateInput(input); err != nil {
		return models.Account{}, err
	}
	return s.create(ctx, input, true)
}

func (s *AccountService) create(ctx context.Context, input RegisterInput, confirmed bool) (models.Account, error) {
	if err := s.checkEmailAvailable(ctx, input.Email); err != nil {
		return models.Account{}, err
	}

	role, err := s.roles.GetDefault(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("default role: %w", err)
	}

	account := models.Account{
		ID:        ids.New(),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Confirmed: confirmed,
		Role:      role,
	}
	if err := account.SetPassword(input.Password); err != nil {
		return models.Account{}, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Account{}, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
		}
		return models.Account{}, err
	}

	s.log.Info().Str("account_id", account.ID).Bool("confirmed", confirmed).Msg("account registered")
	return s.accounts.GetByID(ctx, account.ID)
}

// checkEmailAvailable rejects emails in use. An email held by a blocked
// account yields auth.ErrBlocked instead of ErrEmailTaken.
func (s *AccountService) checkEmailAvailable(ctx context.Context, email string) error {
	existing, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.Blocked:
		return auth.ErrBlocked
	case err == nil:
		return fmt.Errorf("%w: %s", ErrEmailTaken, email)
	case errors.Is(err, repository.ErrAccountNotFound):
		return nil
	default:
		return err
	}
}

func (s *AccountService) ResendConfirmation(ctx context.Context, actor auth.Identity) error {
	account, ok := actor.Account()
	if !ok {
		return auth.ErrUnauthorized
	}
	if account.Confirmed {
		return ErrAlreadyConfirmed
	}
	s.sendConfirmation(ctx, account, mail.KindConfirmation)
	return nil
}

// Confirm marks the actor confirmed. The token must have been issued for the
// actor's own account. Confirming twice is not an error.
func (s *AccountService) Confirm(ctx context.Context, actor auth.Identity, token string) (models.Account, error) {
	if actor.IsAnonymous() {
		return models.Account{}, auth.ErrUnauthorized
	}
	if _, err := s.tokens.VerifyFor(security.PurposeConfirm, token, actor.ID()); err != nil {
		return models.Account{}, invalidToken(err)
	}

	return s.accounts.Lock(ctx, actor.ID(), func(a *models.Account) error {
		a.Confirmed = true
		return nil
	})
}

// SendConfirmationReminders mails accounts created between
// now-after-24h and now-after that are still unconfirmed. Run daily, every
// such account gets a single reminder.
func (s *AccountService) SendConfirmationReminders(ctx context.Context, now time.Time, after time.Duration) (int, error) {
	to := now.Add(-after)
	accounts, err := s.accounts.ListUnconfirmed(ctx, to.Add(-24*time.Hour), to)
	if err != nil {
		return 0, fmt.Errorf("list unconfirmed: %w", err)
	}
	for _, account := range accounts {
		s.sendConfirmation(ctx, account, mail.KindConfirmationReminder)
	}
	return len(accounts), nil
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=128"`
}

// ChangePassword checks the old password like a login attempt, so failures
// count towards blocking.
func (s *AccountService) ChangePassword(ctx context.Context, actor auth.Identity, input ChangePasswordInput) error {
	if actor.IsAnonymous() {
		return auth.ErrUnauthorized
	}
	if err := validateInput(input); err != nil {
		return err
	}

	var ok bool
	account, err := s.accounts.Lock(ctx, actor.ID(), func(a *models.Account) error {
		if a.Blocked {
			return auth.ErrBlocked
		}
		if ok = a.VerifyPassword(input.OldPassword); ok {
			return a.SetPassword(input.NewPassword)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if account.Blocked {
		return auth.ErrBlocked
	}
	if !ok {
		return ErrInvalidPassword
	}
	s.log.Info().Str("account_id", account.ID).Msg("password changed")
	return nil
}

type ChangeEmailInput struct {
	NewEmail string `json:"email" validate:"required,email,max=64"`
	Password string `json:"password" validate:"required"`
}

// RequestEmailChange mails a change link to the new address.
func (s *AccountService) RequestEmailChange(ctx context.Context, actor auth.Identity, input ChangeEmailInput) error {
	if actor.IsAnonymous() {
		return auth.ErrUnauthorized
	}
	input.NewEmail = strings.TrimSpace(input.NewEmail)
	if err := validateInput(input); err != nil {
		return err
	}
	if err := s.checkEmailAvailable(ctx, input.NewEmail); err != nil {
		if errors.Is(err, auth.ErrBlocked) {
			return fmt.Errorf("%w: %s", ErrEmailTaken, input.NewEmail)
		}
		return err
	}

	var ok bool
	account, err := s.accounts.Lock(ctx, actor.ID(), func(a *models.Account) error {
		ok = a.VerifyPassword(input.Password)
		return nil
	})
	if err != nil {
		return err
	}
	if account.Blocked {
		return auth.ErrBlocked
	}
	if !ok {
		return ErrInvalidPassword
	}

	token, err := s.tokens.Issue(security.PurposeChangeEmail, account.ID, input.NewEmail, s.cfg.EmailChangeTTL)
	if err != nil {
		return err
	}
	s.enqueue(ctx, mail.Message{Kind: mail.KindEmailChange, To: input.NewEmail, Name: account.FirstName, Token: token})
	return nil
}

// ChangeEmail applies a change link. The confirmed flag is kept.
func (s *AccountService) ChangeEmail(ctx context.Context, actor auth.Identity, token string) (models.Account, error) {
	if actor.IsAnonymous() {
		return models.Account{}, auth.ErrUnauthorized
	}
	claims, err := s.tokens.VerifyFor(security.PurposeChangeEmail, token, actor.ID())
	if err != nil || claims.Email == "" {
		return models.Account{}, invalidToken(err)
	}

	account, err := s.accounts.Lock(ctx, actor.ID(), func(a *models.Account) error {
		a.Email = claims.Email
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return models.Account{}, fmt.Errorf("%w: %s", ErrEmailTaken, claims.Email)
	}
	if err != nil {
		return models.Account{}, err
	}
	s.log.Info().Str("account_id", account.ID).Msg("email changed")
	return account, nil
}

// RequestPasswordReset mails a reset link when email belongs to an account
// that is not blocked. Unknown emails are ignored so callers cannot probe
// for registered addresses.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if account.Blocked {
		s.log.Info().Str("account_id", account.ID).Msg("password reset skipped for blocked account")
		return nil
	}

	token, err := s.tokens.Issue(security.PurposeResetPassword, account.ID, "", s.cfg.ResetTTL)
	if err != nil {
		return err
	}
	s.enqueue(ctx, mail.Message{Kind: mail.KindPasswordReset, To: account.Email, Name: account.FirstName, Token: token})
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.tokens.Verify(security.PurposeResetPassword, token)
	if err != nil || claims.AccountID == "" {
		return invalidToken(err)
	}
	if err := validate.Var(password, "required,max=128"); err != nil {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	_, err = s.accounts.Lock(ctx, claims.AccountID, func(a *models.Account) error {
		if a.Blocked {
			return auth.ErrBlocked
		}
		return a.SetPassword(password)
	})
	if errors.Is(err, repository.ErrAccountNotFound) {
		return invalidToken(err)
	}
	return err
}

// Invite mails an invitation link to email. Administrators only.
func (s *AccountService) Invite(ctx context.Context, actor auth.Identity, email string) error {
	if err := auth.RequirePermission(actor, models.PermAdmin); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := s.checkEmailAvailable(ctx, email); err != nil {
		if errors.Is(err, auth.ErrBlocked) {
			return fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return err
	}

	token, err := s.tokens.Issue(security.PurposeInvitation, "", email, s.cfg.InvitationTTL)
	if err != nil {
		return err
	}
	s.enqueue(ctx, mail.Message{Kind: mail.KindInvitation, To: email, Token: token})
	s.log.Info().Str("invited_by", actor.ID()).Msg("invitation sent")
	return nil
}

func (s *AccountService) Get(ctx context.Context, actor auth.Identity, id string) (models.Account, error) {
	if err := auth.CanManageAccount(actor, id); err != nil {
		return models.Account{}, err
	}
	return s.accounts.GetByID(ctx, id)
}

// List returns every account to user managers and administrators and only
// the caller's own account to everybody else.
func (s *AccountService) List(ctx context.Context, actor auth.Identity, page repository.Page) ([]models.Account, error) {
	only, err := auth.AccountListScope(actor)
	if err != nil {
		return nil, err
	}
	if only == "" {
		return s.accounts.List(ctx, page)
	}
	if page.Offset > 0 {
		return nil, nil
	}
	account, err := s.accounts.GetByID(ctx, only)
	if err != nil {
		return nil, err
	}
	return []models.Account{account}, nil
}

type UpdateAccountInput struct {
	FirstName *string `json:"first_name" validate:"omitnil,min=1,max=64"`
	LastName  *string `json:"last_name" validate:"omitnil,min=1,max=64"`
	// ProfilePicURL set to "" clears the picture.
	ProfilePicURL *string `json:"profile_pic_url" validate:"-"`
}

func (s *AccountService) Update(ctx context.Context, actor auth.Identity, id string, input UpdateAccountInput) (models.Account, error) {
	if err := auth.CanManageAccount(actor, id); err != nil {
		return models.Account{}, err
	}
	if err := validateInput(input); err != nil {
		return models.Account{}, err
	}
	if input.ProfilePicURL != nil && *input.ProfilePicURL != "" {
		if err := validate.Var(*input.ProfilePicURL, "url,max=256"); err != nil {
			return models.Account{}, fmt.Errorf("%w: profile_pic_url (url)", ErrInvalidInput)
		}
	}

	return s.accounts.Lock(ctx, id, func(a *models.Account) error {
		if input.FirstName != nil {
			a.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			a.LastName = *input.LastName
		}
		if input.ProfilePicURL != nil {
			if *input.ProfilePicURL == "" {
				a.ProfilePicURL = nil
			} else {
				a.ProfilePicURL = input.ProfilePicURL
			}
		}
		return nil
	})
}

// Delete removes the account along with its categories and items.
func (s *AccountService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if err := auth.CanManageAccount(actor, id); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("account_id", id).Str("deleted_by", actor.ID()).Msg("account deleted")
	return nil
}

// Unblock clears the block and the failed login counter. User managers and
// administrators only.
func (s *AccountService) Unblock(ctx context.Context, actor auth.Identity, id string) (models.Account, error) {
	if !actor.IsUserManager() && !actor.IsAdministrator() {
		return models.Account{}, auth.ErrForbidden
	}
	account, err := s.accounts.Lock(ctx, id, func(a *models.Account) error {
		a.Unblock()
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	s.log.Info().Str("account_id", id).Str("unblocked_by", actor.ID()).Msg("account unblocked")
	return account, nil
}

// AssignRole moves the account to the named role. Administrators only.
func (s *AccountService) AssignRole(ctx context.Context, actor auth.Identity, id, roleName string) (models.Account, error) {
	if err := auth.RequirePermission(actor, models.PermAdmin); err != nil {
		return models.Account{}, err
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if errors.Is(err, repository.ErrRoleNotFound) {
		return models.Account{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, roleName)
	}
	if err != nil {
		return models.Account{}, err
	}

	return s.accounts.Lock(ctx, id, func(a *models.Account) error {
		a.Role = role
		return nil
	})
}

func (s *AccountService) sendConfirmation(ctx context.Context, account models.Account, kind mail.Kind) {
	token, err := s.tokens.Issue(security.PurposeConfirm, account.ID, "", s.cfg.ConfirmationTTL)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", account.ID).Msg("issue confirmation token failed")
		return
	}
	s.enqueue(ctx, mail.Message{Kind: kind, To: account.Email, Name: account.FirstName, Token: token})
}

// enqueue logs delivery failures instead of failing the request that
// triggered the mail.
func (s *AccountService) enqueue(ctx context.Context, msg mail.Message) {
	if err := s.mail.Enqueue(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("kind", string(msg.Kind)).Msg("enqueue mail failed")
	}
}

func invalidToken(err error) error {
	if err == nil {
		return ErrInvalidToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
