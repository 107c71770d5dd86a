// Package mail carries account emails from the api to the worker. The api
// appends messages to a Redis stream; the worker reads them back and hands
// them to a Mailer.
package mail

import (
	"errors"
	"fmt"
	"net/url"
)

type Kind string

const (
	KindConfirmation         Kind = "confirmation"
	KindConfirmationReminder Kind = "confirmation_reminder"
	KindInvitation           Kind = "invitation"
	KindPasswordReset        Kind = "password_reset"
	KindEmailChange          Kind = "email_change"
)

var ErrMalformedMessage = errors.New("malformed mail message")

type Message struct {
	Kind  Kind
	To    string
	Name  string
	Token string
}

// Values is the stream entry representation of m.
func (m Message) Values() map[string]any {
	return map[string]any{
		"kind":  string(m.Kind),
		"to":    m.To,
		"name":  m.Name,
		"token": m.Token,
	}
}

// Decode parses a stream entry written by Values.
func Decode(values map[string]any) (Message, error) {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}

	msg := Message{
		Kind:  Kind(str("kind")),
		To:    str("to"),
		Name:  str("name"),
		Token: str("token"),
	}
	if msg.To == "" || msg.Token == "" {
		return Message{}, fmt.Errorf("%w: missing recipient or token", ErrMalformedMessage)
	}
	if _, err := msg.Path(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (m Message) Subject() string {
	switch m.Kind {
	case KindConfirmation:
		return "Confirm Your Account"
	case KindConfirmationReminder:
		return "Reminder: Confirm Your Account"
	case KindInvitation:
		return "You Are Invited"
	case KindPasswordReset:
		return "Reset Your Password"
	case KindEmailChange:
		return "Confirm Your New Email Address"
	}
	return ""
}

// Path is the api route that redeems the message token.
func (m Message) Path() (string, error) {
	token := url.PathEscape(m.Token)
	switch m.Kind {
	case KindConfirmation, KindConfirmationReminder:
		return "/api/v1/confirm/" + token, nil
	case KindInvitation:
		return "/api/v1/auth/register/" + token, nil
	case KindPasswordReset:
		return "/api/v1/auth/reset-password/" + token, nil
	case KindEmailChange:
		return "/api/v1/email/" + token, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedMessage, m.Kind)
}
