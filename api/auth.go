package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/octabyte/alumni-portal/models"
)

const (
	loginPath    = "/users/login/"
	registerPath = "/users/register/"
	mePath       = "/users/me/"
)

var (
	ErrEmptyToken   = errors.New("login response carried no access token")
	ErrEmptyRefresh = errors.New("login response carried no refresh token")
)

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, username, password string) (models.Tokens, error) {
	var tokens models.Tokens
	err := c.do(ctx, call{
		op:     "users.login",
		method: http.MethodPost,
		path:   loginPath,
		body:   models.Credentials{Username: username, Password: password},
		out:    &tokens,
	})
	if err != nil {
		return models.Tokens{}, err
	}
	switch {
	case tokens.Access == "":
		return models.Tokens{}, &Error{Op: "users.login", StatusCode: http.StatusOK, Err: ErrEmptyToken}
	case tokens.Refresh == "":
		return models.Tokens{}, &Error{Op: "users.login", StatusCode: http.StatusOK, Err: ErrEmptyRefresh}
	}
	return tokens, nil
}

// Register creates an account. The created record is not needed by callers.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, call{
		op:     "users.register",
		method: http.MethodPost,
		path:   registerPath,
		body:   reg,
	})
}

// Me resolves the identity behind the current bearer credential.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, call{op: "users.me", method: http.MethodGet, path: mePath, out: &user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe changes the signed-in user's name and email.
func (c *Client) UpdateMe(ctx context.Context, in models.UserUpdate) error {
	return c.do(ctx, call{op: "users.update_me", method: http.MethodPut, path: mePath, body: in})
}
