package api

import (
	"net/mail"
	"strings"
	"time"

	"credo/cmd/security/password"
)

type signupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (r signupRequest) validate() []string {
	var problems []string
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		problems = append(problems, "email must be a valid address")
	}
	if strings.TrimSpace(r.FullName) == "" {
		problems = append(problems, "full_name is required")
	}
	if len(r.Password) < password.MinLength {
		problems = append(problems, "password must be at least 8 characters")
	}
	if len(r.Password) > password.MaxLength {
		problems = append(problems, "password must be at most 72 characters")
	}
	return problems
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	envelope
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	envelope
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       int64  `json:"user_id"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type validationResponse struct {
	envelope
	Errors []string `json:"errors"`
}

type logoutAllResponse struct {
	envelope
	RevokedSessions int64 `json:"revoked_sessions"`
}
