/*
Package api provides the HTTP client for the collaboration server's account
endpoints.

It covers login and registration, which supply the bearer token that seeds the
real-time channel. A 401 from any call is reported as a credential rejection so
the owner can apply the same reset behavior as an explicit logout.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"liveroom/internal/app/user"
	"liveroom/internal/pkg/errs"
	"liveroom/internal/pkg/logx"
)

const (
	// requestTimeout bounds every account call.
	requestTimeout = 10 * time.Second

	// maxResponseBytes bounds the response body read from the server.
	maxResponseBytes = 1 << 20
)

// Credentials are the fields submitted to login and register.
type Credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResponse is the server's answer to a successful login or registration.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	User        user.User `json:"user"`
}

// errorBody is the error shape the server uses for refused account calls.
type errorBody struct {
	Message string `json:"message"`
}

// AuthClient performs login and registration against the collaboration server.
type AuthClient struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewAuthClient constructs an AuthClient for the given HTTP base URL.
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logx.Logger().With().Str("component", "AuthClient").Logger(),
	}
}

// Login exchanges credentials for a bearer token and the account identity.
func (c *AuthClient) Login(ctx context.Context, email, password string) (AuthResponse, *errs.CustomError) {
	return c.post(ctx, "/auth/login", Credentials{Email: email, Password: password})
}

// Register creates an account and returns its first bearer token.
func (c *AuthClient) Register(ctx context.Context, creds Credentials) (AuthResponse, *errs.CustomError) {
	return c.post(ctx, "/auth/register", creds)
}

// post submits one JSON account request and decodes the response.
func (c *AuthClient) post(ctx context.Context, path string, body any) (AuthResponse, *errs.CustomError) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return AuthResponse{}, errs.NewError(errs.ErrUnknown, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return AuthResponse{}, errs.NewError(errs.ErrUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Account request failed.")
		return AuthResponse{}, errs.NewError(errs.ErrNotConnected)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return AuthResponse{}, errs.NewError(errs.ErrUnknown, err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		// Same reset behavior as an explicit logout.
		return AuthResponse{}, errs.NewError(errs.ErrAuthRejected)

	case res.StatusCode >= 400:
		var body errorBody
		if err := json.Unmarshal(resBytes, &body); err == nil && body.Message != "" {
			c.logger.Info().Int("status", res.StatusCode).Str("message", body.Message).Msg("Account request refused.")
		}
		return AuthResponse{}, errs.NewError(errs.ErrLoginFailed)
	}

	var auth AuthResponse
	if err := json.Unmarshal(resBytes, &auth); err != nil {
		return AuthResponse{}, errs.NewError(errs.ErrUnknown, fmt.Errorf("decoding auth response: %w", err))
	}

	if auth.AccessToken == "" {
		return AuthResponse{}, errs.NewError(errs.ErrLoginFailed)
	}

	return auth, nil
}
