package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/pkg/errors"
)

// RegisterRequest is the sign-up form. ConfirmPassword is checked locally
// and never sent.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and starts a session with the returned token.
func (c *Client) Register(ctx context.Context, in RegisterRequest) Result[models.AuthResponse] {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Username == "", in.Email == "", in.Password == "":
		return Failed[models.AuthResponse](errors.Wrap(ErrMissingField, "register: username, email and password are required"))
	case in.Password != in.ConfirmPassword:
		return Failed[models.AuthResponse](errors.Wrap(ErrPasswordMismatch, "register"))
	}
	return c.authenticate(ctx, "register", "/register", in, in.Username, in.Email)
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, username, password string) Result[models.AuthResponse] {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Failed[models.AuthResponse](errors.Wrap(ErrMissingField, "login: username and password are required"))
	}
	return c.authenticate(ctx, "login", "/login", loginRequest{Username: username, Password: password}, username, "")
}

// Logout ends the session locally. The backend keeps no session state.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.End(ctx)
}

// authenticate differs from call: a decodable {success:false} body is an
// explicit refusal and is never masked with demo data.
func (c *Client) authenticate(ctx context.Context, op, path string, payload any, username, email string) (res Result[models.AuthResponse]) {
	start := time.Now()
	defer func() { c.metrics.observe(op, res.Status, start) }()
	req, err := c.jsonRequest(ctx, "POST", path, payload)
	if err != nil {
		return Failed[models.AuthResponse](errors.Wrap(err, op))
	}

	var out models.AuthResponse
	reason := c.sendAuth(req, &out)
	if reason == nil {
		if !out.Success {
			msg := out.Error
			if msg == "" {
				msg = op + " failed"
			}
			return Failed[models.AuthResponse](errors.Wrap(ErrRejected, msg))
		}
		if out.Token != "" {
			user := out.User
			if user == nil {
				user = demoUser(username, email)
				out.User = user
			}
			if err := c.session.Begin(ctx, out.Token, user); err != nil {
				return Failed[models.AuthResponse](errors.Wrap(err, op))
			}
		}
		return OK(out)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failed[models.AuthResponse](errors.Wrap(ctxErr, op))
	}
	c.log.Warn().Stack().Err(reason).Str("op", op).Msg("backend unavailable, logging in demo user")
	user := demoUser(username, email)
	if err := c.session.Begin(ctx, demoToken, user); err != nil {
		return Failed[models.AuthResponse](errors.Wrap(err, op))
	}
	return Degraded(models.AuthResponse{Success: true, Token: demoToken, User: user}, errors.Wrap(reason, op))
}

// sendAuth decodes the body whatever the status, since the backend reports
// bad credentials as a 4xx with {success:false,error}.
func (c *Client) sendAuth(req *http.Request, out *models.AuthResponse) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Code: resp.StatusCode}
		}
		return errors.Wrap(err, "decode response")
	}
	if !out.Success && out.Error == "" && resp.StatusCode >= 500 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
