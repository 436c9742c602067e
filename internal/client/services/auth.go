package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/client/session"
	"github.com/jimalvess/diario-cli/internal/logging"
)

var (
	ErrInvalidResetLink = errors.New("invalid or missing password reset link")
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", client.ErrValidation)
)

// AuthAPI is the part of the backend used for authentication.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error)
	Register(ctx context.Context, creds models.Credentials) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange credentials for a token and make it the current session.
//   - Register: create an account; the caller is not logged in.
//   - RequestPasswordReset: ask the backend to e-mail a reset link.
//   - ResetPassword: complete a reset with the token from that link.
//   - Logout: forget the current session.
//
// Client-side validation failures wrap client.ErrValidation and never reach
// the network.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (session.Session, error)
	Register(ctx context.Context, username string, password []byte) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password, confirmation []byte) error
	Logout(ctx context.Context) error
}

type authService struct {
	client AuthAPI
	store  *session.Store
	log    logging.Logger
}

// NewAuthService binds the service to the backend and the session store it
// updates.
func NewAuthService(api AuthAPI, store *session.Store, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Discard()
	}
	return &authService{client: api, store: store, log: log.With("component", "auth")}
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (session.Session, error) {
	if err := requireCredentials(username, password); err != nil {
		return session.Session{}, err
	}

	res, err := a.client.Login(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{Token: res.Token, UserID: string(res.UserID)}
	if err := a.store.Login(ctx, sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	if err := requireCredentials(username, password); err != nil {
		return err
	}
	if err := a.client.Register(ctx, models.Credentials{Username: username, Password: string(password)}); err != nil {
		return err
	}
	a.log.Info(ctx, "account registered", "username", username)
	return nil
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid e-mail address is required", client.ErrValidation)
	}
	return a.client.ForgotPassword(ctx, email)
}

// ResetPassword checks the link token and that password equals confirmation
// exactly before anything is sent. No strength policy is applied.
func (a *authService) ResetPassword(ctx context.Context, token string, password, confirmation []byte) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetLink
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: new password is required", client.ErrValidation)
	}
	if !bytes.Equal(password, confirmation) {
		return ErrPasswordMismatch
	}
	return a.client.ResetPassword(ctx, models.ResetPasswordRequest{Token: token, NewPassword: string(password)})
}

func (a *authService) Logout(ctx context.Context) error {
	return a.store.Logout(ctx)
}

func requireCredentials(username string, password []byte) error {
	if strings.TrimSpace(username) == "" || len(password) == 0 {
		return fmt.Errorf("%w: username and password are required", client.ErrValidation)
	}
	return nil
}

// ParseResetToken extracts the token of a reset link. It accepts the full
// e-mailed URL, a bare "?token=..." query or the token itself.
func ParseResetToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidResetLink
	}
	if !strings.ContainsAny(raw, "?=/") {
		return raw, nil
	}

	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	} else if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		query = u.RawQuery
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResetLink, err)
	}
	token := values.Get("token")
	if token == "" {
		return "", ErrInvalidResetLink
	}
	return token, nil
}
