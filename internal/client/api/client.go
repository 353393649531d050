// Package api is the HTTP client for the remote planner service. It
// speaks the four documented endpoints: login, health, sync push and
// planner pull. All calls are best-effort; failures map to the
// sentinel errors in errors.go and never carry partial results.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/models"
)

// authTokenHeader carries the bearer token the server mints on login.
const authTokenHeader = "X-Auth-Token"

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for the service at baseURL (no trailing slash
// required). Every request is bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken installs the bearer token sent with subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
		}
	}
	if token := resp.Header.Get(authTokenHeader); token != "" {
		c.token = token
	}
	return resp.StatusCode, nil
}

// Login authenticates against the remote service. The response body is
// the server's user record; a session token, when issued, arrives in a
// response header and is retained for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var user models.User
	status, err := c.do(ctx, http.MethodPost, "/api/login", req, &user)
	if err != nil {
		return models.User{}, err
	}
	switch {
	case status >= 200 && status < 300:
		return user, nil
	case status == http.StatusUnauthorized || status == http.StatusBadRequest:
		return models.User{}, ErrUnauthorized
	default:
		return models.User{}, fmt.Errorf("%w: login returned %d", ErrUnavailable, status)
	}
}

// Health probes service liveness. Any non-2xx response is a failure.
func (c *Client) Health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/api/health", nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, status)
	}
	return nil
}

// Push ships the user's full dataset in one request.
func (c *Client) Push(ctx context.Context, payload models.SyncPayload) error {
	status, err := c.do(ctx, http.MethodPost, "/api/sync", payload, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: sync returned %d", ErrUnavailable, status)
	}
	return nil
}

// Pull fetches the remote aggregate for userID: every stored date's
// document keyed by date.
func (c *Client) Pull(ctx context.Context, userID string) (map[string]models.PlannerDocument, error) {
	var planner map[string]models.PlannerDocument
	status, err := c.do(ctx, http.MethodGet, "/api/planner/"+userID, nil, &planner)
	if err != nil {
		return nil, err
	}
	switch {
	case status >= 200 && status < 300:
		return planner, nil
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: planner returned %d", ErrUnavailable, status)
	}
}
