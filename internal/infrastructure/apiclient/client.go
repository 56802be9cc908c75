// Package apiclient talks to the remote ParkSphere REST API.
//
// Expected refusals (wrong password, expired code, duplicate account) are
// decoded into result values. Only transport failures, server errors and
// undecodable bodies are returned as errors, all wrapping
// domain.ErrUpstreamUnavailable.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

const maxBodySize = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New returns a client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "apiclient").Logger(),
	}
}

var _ ports.Backend = (*Client)(nil)

type authResponse struct {
	Token      string           `json:"token"`
	User       *domain.Identity `json:"user"`
	Require2FA bool             `json:"require2FA"`
	UserID     int64            `json:"userId"`
	Message    string           `json:"message"`
	Error      string           `json:"error"`
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	status, raw, err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", body)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if status == http.StatusUnauthorized {
		return domain.LoginResult{Kind: domain.LoginRejected, Message: "Invalid credentials"}, nil
	}
	return c.authResult(status, raw, "Login failed")
}

func (c *Client) VerifyTwoFactor(ctx context.Context, userID int64, code string) (domain.LoginResult, error) {
	body := map[string]any{"userId": userID, "code": code}
	status, raw, err := c.do(ctx, http.MethodPost, "/auth/verify-2fa", nil, "", body)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return c.authResult(status, raw, "Verification failed")
}

func (c *Client) authResult(status int, raw []byte, fallback string) (domain.LoginResult, error) {
	var resp authResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		if status < http.StatusBadRequest {
			return domain.LoginResult{}, fmt.Errorf("%w: decode auth response: %v", domain.ErrUpstreamUnavailable, err)
		}
		resp.Error = strings.TrimSpace(string(raw))
	}

	if status >= http.StatusBadRequest {
		return domain.LoginResult{Kind: domain.LoginRejected, Message: firstNonEmpty(resp.Error, resp.Message, fallback)}, nil
	}
	if resp.Require2FA {
		return domain.LoginResult{Kind: domain.LoginChallenge, UserID: resp.UserID, Message: resp.Message}, nil
	}
	if resp.User != nil {
		resp.User.Role = domain.ParseRole(string(resp.User.Role))
	}
	return domain.LoginResult{Kind: domain.LoginAuthenticated, Token: resp.Token, Identity: resp.User, Message: resp.Message}, nil
}

func (c *Client) ResendTwoFactor(ctx context.Context, userID int64) (domain.ActionResult, error) {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	return c.action(ctx, "/auth/resend-2fa", q, nil, "Failed to resend code")
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (domain.ActionResult, error) {
	q := url.Values{"email": {email}}
	return c.action(ctx, "/auth/forgot-password", q, nil, "Failed to send reset code")
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error) {
	body := map[string]string{"email": email, "otp": otp, "newPassword": newPassword}
	return c.action(ctx, "/auth/reset-password", nil, body, "Failed to reset password")
}

func (c *Client) Signup(ctx context.Context, req ports.SignupRequest) (domain.ActionResult, error) {
	return c.action(ctx, "/auth/signup", nil, req, "Signup failed")
}

func (c *Client) action(ctx context.Context, path string, q url.Values, body any, fallback string) (domain.ActionResult, error) {
	status, raw, err := c.do(ctx, http.MethodPost, path, q, "", body)
	if err != nil {
		return domain.ActionResult{}, err
	}

	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	// Some endpoints answer with plain text; keep it as the message.
	if err := json.Unmarshal(raw, &resp); err != nil {
		resp.Message = strings.TrimSpace(string(raw))
	}

	if status >= http.StatusBadRequest {
		return domain.ActionResult{OK: false, Message: firstNonEmpty(resp.Error, resp.Message, fallback)}, nil
	}
	return domain.ActionResult{OK: true, Message: resp.Message}, nil
}

func (c *Client) SearchGlobal(ctx context.Context, token, query string) (*ports.GlobalSearchResponse, error) {
	var out ports.GlobalSearchResponse
	if err := c.search(ctx, "/admin/search/global", token, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchSpots(ctx context.Context, token, query string) ([]ports.SpotItem, error) {
	var out []ports.SpotItem
	if err := c.search(ctx, "/staff/spots/search", token, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchAccount(ctx context.Context, token, query string) (*ports.AccountSearchResponse, error) {
	var out ports.AccountSearchResponse
	if err := c.search(ctx, "/users/search", token, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) search(ctx context.Context, path, token, query string, out any) error {
	status, raw, err := c.do(ctx, http.MethodGet, path, url.Values{"q": {query}}, token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", domain.ErrUpstreamUnavailable, path, status)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstreamUnavailable, path, err)
	}
	return nil
}

// do sends one request. 5xx answers are turned into errors; everything
// else is handed back with its status for the caller to interpret.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, token string, body any) (int, []byte, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s: %v", domain.ErrUpstreamUnavailable, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, raw, fmt.Errorf("%w: %s %s returned %d", domain.ErrUpstreamUnavailable, method, path, resp.StatusCode)
	}
	return resp.StatusCode, raw, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
