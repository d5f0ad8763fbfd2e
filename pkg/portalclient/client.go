// Package portalclient talks to the nhance API and keeps a session.Tracker in
// step with what the server reports, so a UI can subscribe to one value
// instead of polling.
package portalclient

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
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/session"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/validation"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Code    dto.ErrorCode
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("portal: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("portal: %s (%d): %s", e.Code, e.Status, e.Message)
}

// Client is safe for concurrent use. Tokens are held in memory only.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracker    *session.Tracker
	logger     zerolog.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for transition and transport messages
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTokens resumes a session from previously issued tokens
func WithTokens(accessToken, refreshToken string) Option {
	return func(c *Client) {
		c.accessToken = accessToken
		c.refreshToken = refreshToken
	}
}

// New creates a client for the server at baseURL. A nil tracker gets a fresh one.
func New(baseURL string, tracker *session.Tracker, opts ...Option) *Client {
	if tracker == nil {
		tracker = session.NewTracker()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tracker:    tracker,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracker returns the session tracker the client drives
func (c *Client) Tracker() *session.Tracker {
	return c.tracker
}

// Tokens returns the current access and refresh tokens
func (c *Client) Tokens() (accessToken, refreshToken string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) setTokens(t *dto.TokenResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t == nil {
		c.accessToken, c.refreshToken = "", ""
		return
	}
	c.accessToken, c.refreshToken = t.AccessToken, t.RefreshToken
}

// Start subscribes l (when non-nil) and then runs the initial session check,
// so l observes the whole lifecycle from AnonymousLoading onwards. The
// returned id can be passed to Tracker().Unsubscribe.
func (c *Client) Start(ctx context.Context, l session.Listener) (int, error) {
	id := 0
	if l != nil {
		id = c.tracker.Subscribe(l)
	}
	c.tracker.Begin()
	_, err := c.CheckSession(ctx)
	return id, err
}

// CheckSession asks the server who the caller is and resolves the tracker.
// Without an access token no request is made. Transport failures leave the
// session Anonymous and are returned.
func (c *Client) CheckSession(ctx context.Context) (*dto.SessionResponse, error) {
	if access, _ := c.Tokens(); access == "" {
		c.tracker.Resolve(nil)
		return &dto.SessionResponse{State: dto.SessionAnonymous}, nil
	}

	var resp dto.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &resp); err != nil {
		c.tracker.Resolve(nil)
		return nil, err
	}
	if resp.State != dto.SessionAuthenticated || resp.User == nil {
		c.setTokens(nil)
		c.tracker.Resolve(nil)
		return &resp, nil
	}
	c.tracker.Resolve(toSessionUser(resp.User))
	return &resp, nil
}

// Login signs in. The email is checked locally first; a malformed address
// fails with a validation error without touching the network or the tracker.
func (c *Client) Login(ctx context.Context, email, password string) (*session.User, error) {
	email = strings.TrimSpace(email)
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("email", "Please enter a valid email address.")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password", "Password is required.")
	}

	c.tracker.StartLogin()
	var resp dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		c.logger.Debug().Err(err).Str("email", email).Msg("Login failed")
		c.setTokens(nil)
		c.tracker.Resolve(nil)
		return nil, err
	}

	c.setTokens(&resp.Token)
	user := toSessionUser(resp.User)
	c.tracker.Resolve(user)
	return user, nil
}

// Register creates an account. When the server wants the address verified
// first the tracker stays Anonymous; otherwise the new session is adopted.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if !validation.IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError("email", "Please enter a valid email address.")
	}

	var resp dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.NeedsVerification || resp.Token == nil {
		if c.tracker.Current().State != session.Authenticated {
			c.tracker.Resolve(nil)
		}
		return &resp, nil
	}

	c.setTokens(resp.Token)
	c.tracker.Resolve(toSessionUser(resp.User))
	return &resp, nil
}

// Refresh rotates the refresh token and keeps the session
func (c *Client) Refresh(ctx context.Context) error {
	_, refresh := c.Tokens()
	if refresh == "" {
		return apperrors.ErrTokenInvalid
	}
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: refresh}, &resp); err != nil {
		return err
	}
	c.setTokens(&resp.Token)
	c.tracker.Resolve(toSessionUser(resp.User))
	return nil
}

// Logout revokes the refresh token. Local state is cleared even when the
// server cannot be reached; that error is still returned.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	var err error
	if refresh != "" {
		err = c.do(ctx, http.MethodPost, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: refresh}, nil)
	}
	c.setTokens(nil)
	c.tracker.Logout()
	return err
}

// ResolveRoute asks the server how a client path is handled for this session
func (c *Client) ResolveRoute(ctx context.Context, path string) (*dto.RouteResolution, error) {
	var resp dto.RouteResolution
	if err := c.do(ctx, http.MethodGet, "/routes/resolve?path="+url.QueryEscape(path), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMaterials lists materials of a semester, optionally narrowed to a subject
func (c *Client) ListMaterials(ctx context.Context, semester int, subjectID string) ([]*dto.MaterialResponse, error) {
	q := url.Values{"semester": {strconv.Itoa(semester)}}
	if subjectID != "" {
		q.Set("subjectId", subjectID)
	}
	var resp []*dto.MaterialResponse
	if err := c.do(ctx, http.MethodGet, "/materials?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// MaterialSubjectView fetches the module slots of one subject
func (c *Client) MaterialSubjectView(ctx context.Context, semester int, subjectID string) (*dto.MaterialSubjectView, error) {
	var resp dto.MaterialSubjectView
	path := fmt.Sprintf("/materials/semester/%d/subject/%s", semester, url.PathEscape(subjectID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReferenceSubjectView fetches the reference books of one subject
func (c *Client) ReferenceSubjectView(ctx context.Context, semester int, subjectID string) (*dto.ReferenceSubjectView, error) {
	var resp dto.ReferenceSubjectView
	path := fmt.Sprintf("/references/semester/%d/subject/%s", semester, url.PathEscape(subjectID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadLink returns a signed link for a material or reference book
func (c *Client) DownloadLink(ctx context.Context, kind, id string) (*dto.DownloadResponse, error) {
	var collection string
	switch kind {
	case "material":
		collection = "materials"
	case "reference":
		collection = "references"
	default:
		return nil, apperrors.NewValidationError("type", "Unknown content type.")
	}
	var resp dto.DownloadResponse
	if err := c.do(ctx, http.MethodGet, "/"+collection+"/"+url.PathEscape(id)+"/download", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// envelope mirrors dto.APIResponse with the payload left raw
type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

// do sends a JSON request and decodes the data field of the envelope into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.Tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && res.StatusCode < 300 {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if res.StatusCode >= 300 || env.Error != nil {
		apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Field = env.Error.Field
		}
		c.logger.Debug().Int("status", res.StatusCode).Str("code", string(apiErr.Code)).Str("path", path).Msg("API error")
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func toSessionUser(u *dto.UserResponse) *session.User {
	if u == nil {
		return nil
	}
	return &session.User{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Branch:  u.Branch,
		IsAdmin: u.IsAdmin,
	}
}
