// Package kakera is the Go client for the Kakera API. It wraps the HTTP
// surface (auth, projects, entries, uploads, feed, search) and carries the
// client-side session, navigation, and list-reconciliation machinery that
// every Kakera frontend shares.
package kakera

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SessionEventType identifies a session-state change.
type SessionEventType string

const (
	// SessionSignedIn fires when credentials are exchanged for tokens.
	SessionSignedIn SessionEventType = "signed_in"
	// SessionSignedOut fires when the session is revoked or dropped.
	SessionSignedOut SessionEventType = "signed_out"
	// SessionRefreshed fires when tokens are rotated.
	SessionRefreshed SessionEventType = "refreshed"
)

// SessionEvent describes a session-state change delivered to subscribers.
type SessionEvent struct {
	Type SessionEventType
	User *User // nil on sign-out
}

// Client talks to a Kakera server. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu          sync.Mutex
	session     *Session
	user        *User
	subscribers []func(SessionEvent)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionChange registers a callback for sign-in, sign-out, and token
// refresh events. The subscription lasts for the client's lifetime.
func (c *Client) OnSessionChange(fn func(SessionEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// CurrentUser returns the signed-in user, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Authenticated reports whether a session is held.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// SetSession installs a previously saved session, e.g. restored from disk.
// No event is emitted; Resolve treats it as the restored state.
func (c *Client) SetSession(session *Session, user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.user = user
}

func (c *Client) setSession(session *Session, user *User, event SessionEventType) {
	c.mu.Lock()
	c.session = session
	c.user = user
	subs := make([]func(SessionEvent), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(SessionEvent{Type: event, User: user})
	}
}

// === Auth ===

// Signup registers a new account. When the server requires email
// confirmation the result carries no session and Login fails until the
// account is confirmed.
func (c *Client) Signup(ctx context.Context, email, password, displayName string) (*SignupResult, error) {
	body := map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}
	var result SignupResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", body, &result); err != nil {
		return nil, err
	}
	if result.Session != nil {
		c.setSession(result.Session, &result.User, SessionSignedIn)
	}
	return &result, nil
}

// Confirm redeems a confirmation token and signs the account in.
func (c *Client) Confirm(ctx context.Context, token string) (*Auth, error) {
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/confirm", map[string]string{"token": token}, &auth); err != nil {
		return nil, err
	}
	c.setSession(&auth.Session, &auth.User, SessionSignedIn)
	return &auth, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Auth, error) {
	body := map[string]string{"email": email, "password": password}
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &auth); err != nil {
		return nil, err
	}
	c.setSession(&auth.Session, &auth.User, SessionSignedIn)
	return &auth, nil
}

// Refresh rotates the session's tokens using the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (*Auth, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "no session to refresh"}
	}

	body := map[string]string{"refresh_token": session.RefreshToken}
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &auth); err != nil {
		return nil, err
	}
	c.setSession(&auth.Session, &auth.User, SessionRefreshed)
	return &auth, nil
}

// Logout revokes the current session. The local session is dropped even
// if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", map[string]string{"session_id": session.SessionID}, nil)
	c.setSession(nil, nil, SessionSignedOut)
	return err
}

// GetSession fetches the signed-in user's profile.
func (c *Client) GetSession(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// === Projects ===

// ListProjects returns the caller's projects, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]*Project, error) {
	var resp struct {
		Projects []*Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// CreateProject makes a new project. The share token is minted at
// creation, so the result is immediately shareable.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject fetches one of the caller's projects.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject applies partial changes. The share token never changes.
func (c *Client) UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPatch, "/api/v1/projects/"+url.PathEscape(projectID), req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project and its entries.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(projectID), nil, nil)
}

// EnsureShareLink returns the project's share link, backfilling a token
// for rows created before tokens were minted at creation.
func (c *Client) EnsureShareLink(ctx context.Context, projectID string) (*ShareLink, error) {
	var link ShareLink
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(projectID)+"/share", nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// GetShared resolves a share token into a read-only project snapshot.
// No authentication is required.
func (c *Client) GetShared(ctx context.Context, shareToken string) (*SharedProject, error) {
	var shared SharedProject
	if err := c.do(ctx, http.MethodGet, "/api/v1/shared/"+url.PathEscape(shareToken), nil, &shared); err != nil {
		return nil, err
	}
	return &shared, nil
}

// === Entries ===

// ListEntries returns a project's entries, newest first. A non-empty
// category restricts the listing to that category.
func (c *Client) ListEntries(ctx context.Context, projectID, category string) ([]*Entry, error) {
	path := "/api/v1/projects/" + url.PathEscape(projectID) + "/entries"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var resp struct {
		Entries []*Entry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// CreateEntry adds an entry to a project.
func (c *Client) CreateEntry(ctx context.Context, projectID string, req CreateEntryRequest) (*Entry, error) {
	var entry Entry
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(projectID)+"/entries", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry applies partial changes. The entry's timestamp and project
// are immutable; omitting url keeps the stored media reference.
func (c *Client) UpdateEntry(ctx context.Context, entryID string, req UpdateEntryRequest) (*Entry, error) {
	var entry Entry
	if err := c.do(ctx, http.MethodPatch, "/api/v1/entries/"+url.PathEscape(entryID), req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry.
func (c *Client) DeleteEntry(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/entries/"+url.PathEscape(entryID), nil, nil)
}

// Feed returns public entries across all users, newest first.
func (c *Client) Feed(ctx context.Context, limit int) ([]*Entry, error) {
	path := "/api/v1/feed"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Entries []*Entry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// === Activity ===

// Heatmap returns the caller's per-day entry counts for the trailing
// window. Zero days means the server default (one year).
func (c *Client) Heatmap(ctx context.Context, days int) (*Heatmap, error) {
	path := "/api/v1/activity/heatmap"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var heatmap Heatmap
	if err := c.do(ctx, http.MethodGet, path, nil, &heatmap); err != nil {
		return nil, err
	}
	return &heatmap, nil
}

// === Search ===

// Search queries the caller's projects and entries.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	var result SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/search?q="+url.QueryEscape(query), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// === Uploads ===

// Upload stores a media file and returns its durable URL. The kind is
// classified server-side from the file extension.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/uploads", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result UploadResult
	if err := decodeEnvelope(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// === Transport ===

// envelope is the superset of the server's success and error envelopes.
type envelope struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    jsontext.Value `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details any            `json:"details"`
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			Details: env.Details,
		}
		if apiErr.Message == "" {
			apiErr.Message = env.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
