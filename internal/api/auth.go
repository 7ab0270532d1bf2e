package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"contraseña"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"contraseña"`
	Role     string `json:"rol"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token    string   `json:"token,omitempty"`
	Identity Identity `json:"usuario"`
}

// AuthClient talks to the login and register endpoints.
type AuthClient struct {
	c *Client
}

// NewAuthClient creates an auth gateway on top of c.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// Login exchanges credentials for an identity. Rejections come back as
// *StatusError carrying the gateway message.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body, err := a.c.do(ctx, http.MethodPost, "/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

// Register creates an account and returns the new identity.
func (a *AuthClient) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	body, err := a.c.do(ctx, http.MethodPost, "/register", req)
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

// Logout revokes token on the backend. An empty token is a no-op.
func (a *AuthClient) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := a.c.send(ctx, http.MethodPost, "/logout", nil, token)
	return err
}

// decodeAuth accepts {token, usuario}, {token, user} or a bare identity,
// with or without the success envelope.
func decodeAuth(body []byte) (*AuthResult, error) {
	data, err := openEnvelope(body)
	if err != nil {
		return nil, err
	}

	var w struct {
		Token   string    `json:"token"`
		Usuario *Identity `json:"usuario"`
		User    *Identity `json:"user"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	res := &AuthResult{Token: w.Token}
	switch {
	case w.Usuario != nil:
		res.Identity = *w.Usuario
	case w.User != nil:
		res.Identity = *w.User
	default:
		if err := json.Unmarshal(data, &res.Identity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if res.Identity.ID == "" && res.Identity.Email == "" {
		return nil, fmt.Errorf("%w: no identity in response", ErrMalformed)
	}
	return res, nil
}
