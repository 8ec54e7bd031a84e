package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Header names sent with every request.
const (
	HeaderAuthToken = "X-Auth-Token"
	HeaderRequestID = "X-Request-Id"
)

// TokenSource supplies the current auth token. An empty token is sent as an
// empty header, which the remote answers with 401.
type TokenSource interface {
	Token() string
}

// Endpoints holds the four remote function URLs.
type Endpoints struct {
	Auth          string
	Goals         string
	Notifications string
	Profile       string
}

// Client talks to the remote TaskBuddy functions.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	tokens    TokenSource
	log       *slog.Logger
}

// NewClient creates a Client. A nil logger discards output.
func NewClient(endpoints Endpoints, tokens TokenSource, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		endpoints: endpoints,
		http:      &http.Client{Timeout: timeout},
		tokens:    tokens,
		log:       log,
	}
}

// Login exchanges credentials for a user record and token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, withQuery(c.endpoints.Auth, "action", "login"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns it with a fresh token.
func (c *Client) Register(ctx context.Context, email, password, username string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password, "username": username}
	var out AuthResponse
	if err := c.do(ctx, "registration", http.MethodPost, withQuery(c.endpoints.Auth, "action", "register"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify checks the current token against the auth endpoint.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, "token verification", http.MethodGet, withQuery(c.endpoints.Auth, "action", "verify"), nil, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// ListGoals returns every goal of the current user, soft-deleted ones included.
func (c *Client) ListGoals(ctx context.Context) ([]Goal, error) {
	var out struct {
		Goals []Goal `json:"goals"`
	}
	if err := c.do(ctx, "loading goals", http.MethodGet, c.endpoints.Goals, nil, &out); err != nil {
		return nil, err
	}
	return out.Goals, nil
}

// CreateGoal creates a goal and returns the canonical record.
func (c *Client) CreateGoal(ctx context.Context, in GoalInput) (*Goal, error) {
	var out struct {
		Goal Goal `json:"goal"`
	}
	if err := c.do(ctx, "creating goal", http.MethodPost, c.endpoints.Goals, in, &out); err != nil {
		return nil, err
	}
	return &out.Goal, nil
}

// UpdateGoal applies a partial update and returns the canonical record.
func (c *Client) UpdateGoal(ctx context.Context, in GoalUpdate) (*Goal, error) {
	var out struct {
		Goal Goal `json:"goal"`
	}
	if err := c.do(ctx, "updating goal", http.MethodPut, c.endpoints.Goals, in, &out); err != nil {
		return nil, err
	}
	return &out.Goal, nil
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	u := withQuery(c.endpoints.Goals, "id", strconv.FormatInt(id, 10))
	return c.do(ctx, "deleting goal", http.MethodDelete, u, nil, nil)
}

// ListNotifications returns the notification feed.
func (c *Client) ListNotifications(ctx context.Context) (*NotificationList, error) {
	var out NotificationList
	if err := c.do(ctx, "loading notifications", http.MethodGet, c.endpoints.Notifications, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	body := map[string]int64{"id": id}
	return c.do(ctx, "updating notification", http.MethodPut, c.endpoints.Notifications, body, nil)
}

// GetProfile returns the profile of the current user.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out struct {
		Profile Profile `json:"profile"`
	}
	if err := c.do(ctx, "loading profile", http.MethodGet, c.endpoints.Profile, nil, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Profile, error) {
	var out struct {
		Profile Profile `json:"profile"`
	}
	if err := c.do(ctx, "updating profile", http.MethodPut, c.endpoints.Profile, in, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// do sends one JSON request. out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, op, method, rawURL string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	req.Header.Set(HeaderAuthToken, token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "op", op, "method", method, "url", rawURL, "request_id", reqID, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request", "op", op, "method", method, "url", rawURL, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Op: op, Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Error
		}
		c.log.Warn("request rejected", "op", op, "request_id", reqID, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// withQuery appends one query parameter, keeping any already on the URL.
func withQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
