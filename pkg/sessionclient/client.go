// Package sessionclient is the client side of LearnFlow sessions: an HTTP
// client for the auth API, a local identity cache and a Provider that keeps
// the two consistent.
package sessionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const DefaultTimeout = 8 * time.Second

// User is the public identity the server asserts for a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid teacher code")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrRateLimited        = errors.New("rate limited")
)

var codeErrors = map[string]error{
	"duplicate_email":     ErrDuplicateEmail,
	"invalid_credentials": ErrInvalidCredentials,
	"invalid_code":        ErrInvalidCode,
	"unauthorized":        ErrUnauthorized,
	"forbidden":           ErrForbidden,
	"invalid_payload":     ErrInvalidPayload,
	"rate_limited":        ErrRateLimited,
}

// APIError is a non-2xx answer from the server. errors.Is matches it against
// the sentinel for its code.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return codeErrors[e.Code] }

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// Client talks to the auth API. The session cookie lives in its jar.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Jar must be set for the
// session cookie to survive between calls.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout bounds every call; zero or negative keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{base: u, http: &http.Client{Jar: jar}, timeout: DefaultTimeout}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type userData struct {
	User *User `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	var out userData
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-up", map[string]string{"name": name, "email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	var out userData
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-in", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/sign-out", nil, nil)
}

// Session returns the server's view of the current session, or nil when
// the caller is anonymous.
func (c *Client) Session(ctx context.Context) (*User, error) {
	var out userData
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Sync asks the server to re-issue the cookie for a cached identity.
func (c *Client) Sync(ctx context.Context, u User) (*User, error) {
	var out userData
	if err := c.do(ctx, http.MethodPost, "/api/auth/session/sync", u, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Elevate submits the teacher code and returns the new role.
func (c *Client) Elevate(ctx context.Context, teacherCode string) (string, error) {
	var out struct {
		Role string `json:"role"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/role/elevate", map[string]string{"teacherCode": teacherCode}, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message, Details: env.Details}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
