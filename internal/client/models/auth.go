package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Credentials is the login and registration payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"senha"`
}

// LoginResult is what a successful login returns.
type LoginResult struct {
	Token  string `json:"token"`
	UserID UserID `json:"usuarioId"`
}

// UserID is the backend user identifier. It arrives as a JSON number and is
// persisted as a string, so both encodings are accepted.
type UserID string

func (u *UserID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*u = UserID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*u = UserID(s)
	return nil
}

func (u UserID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(u), 10, 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(u))
}

// ForgotPasswordRequest asks the backend to e-mail a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a reset with the token from the e-mailed link.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"novaSenha"`
}
