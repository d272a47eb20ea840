// Package api is the HTTP client for the PolicyKeeper server. It speaks the
// JSON API under /api/v1 and maps transport and status failures to sentinel
// errors so callers can branch with errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Session is the authenticated identity returned by Login.
type Session struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
}

// PolicyRecord is the wire form of a policy record. Dates travel as
// "2006-01-02" strings.
type PolicyRecord struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PolicyType   string `json:"policyType"`
	PolicyNumber string `json:"policyNumber"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// Violation is a single broken field rule reported by the server.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validateResponse struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to one PolicyKeeper server. It is not safe for concurrent use:
// Login mutates the bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Authenticated reports whether a bearer token is held.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Logout drops the bearer token.
func (c *Client) Logout() {
	c.token = ""
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
		return resp.StatusCode, nil
	}

	// Error bodies are drained so the connection can be reused; the payload
	// is decoded lazily by the caller when it needs the message.
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, statusError(resp.StatusCode, data)
}

// statusError turns an HTTP error status into a sentinel, falling back to the
// server's message for statuses without one.
func statusError(status int, body []byte) error {
	if status < http.StatusBadRequest {
		return nil
	}
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusServiceUnavailable:
		return ErrStoreUnavailable
	case http.StatusUnprocessableEntity:
		var vr validateResponse
		if err := json.Unmarshal(body, &vr); err == nil {
			return &ValidationError{Violations: vr.Violations}
		}
		return fmt.Errorf("server returned status %d", status)
	default:
		var er errorResponse
		if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
			return fmt.Errorf("server error: %s", er.Error)
		}
		return fmt.Errorf("server returned status %d", status)
	}
}

// Ping checks server reachability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
	return err
}

// Login authenticates and stores the bearer token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	req := map[string]string{"username": username, "password": password}
	var session Session
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &session); err != nil {
		return nil, err
	}
	c.token = session.AccessToken
	return &session, nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password, fullName, email string) error {
	req := map[string]string{
		"username": username,
		"password": password,
		"fullName": fullName,
		"email":    email,
	}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, nil)
	return err
}

// PolicyTypes returns the policy type choices offered by the server.
func (c *Client) PolicyTypes(ctx context.Context) ([]string, error) {
	var resp map[string][]string
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/policy-types", nil, &resp); err != nil {
		return nil, err
	}
	return resp["policyTypes"], nil
}

// Validate checks rec against the server's field rules without saving it.
// A nil slice means the record is valid.
func (c *Client) Validate(ctx context.Context, rec PolicyRecord) ([]Violation, error) {
	var resp validateResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/policies/validate", rec, &resp); err != nil {
		return nil, err
	}
	if resp.Valid {
		return nil, nil
	}
	return resp.Violations, nil
}

// Save persists rec and returns the server-assigned id. A rejected record
// comes back as *ValidationError.
func (c *Client) Save(ctx context.Context, rec PolicyRecord) (int64, error) {
	var resp map[string]int64
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/policies", rec, &resp); err != nil {
		return 0, err
	}
	return resp["id"], nil
}

// Get fetches a saved record by id.
func (c *Client) Get(ctx context.Context, id int64) (*PolicyRecord, error) {
	var rec PolicyRecord
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/policies/%d", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
