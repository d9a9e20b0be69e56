package kakera

import "time"

// User is an account as returned by the API.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// Session contains the tokens issued at sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Auth is a session plus the user it belongs to.
type Auth struct {
	Session
	User User `json:"user"`
}

// SignupResult is the outcome of a registration. Session is nil when the
// account still needs email confirmation.
type SignupResult struct {
	User                 User     `json:"user"`
	Session              *Session `json:"session"`
	ConfirmationRequired bool     `json:"confirmation_required"`
}

// Project is a creation box: a named collection of progress entries.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	ShareID     string    `json:"share_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Entry is a single fragment of progress: an image, audio clip, or note.
type Entry struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	URL        string    `json:"url,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	IsPublic   bool      `json:"is_public"`
	Category   string    `json:"category,omitempty"`
	Color      string    `json:"color,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	BlurHash   string    `json:"blur_hash,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ShareLink is a project's share token plus the URL granting read-only
// access.
type ShareLink struct {
	ShareID string `json:"share_id"`
	URL     string `json:"url"`
}

// SharedProject is the read-only view a share token resolves to.
type SharedProject struct {
	Project *Project `json:"project"`
	Entries []*Entry `json:"entries"`
}

// DayCount is one heatmap cell.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Heatmap is a dense day-by-day activity series.
type Heatmap struct {
	Since string     `json:"since"`
	Until string     `json:"until"`
	Total int        `json:"total"`
	Days  []DayCount `json:"days"`
}

// UploadResult describes a stored media object.
type UploadResult struct {
	URL        string `json:"url"`
	Kind       string `json:"kind"`
	SizeBytes  int64  `json:"size_bytes"`
	BlurHash   string `json:"blur_hash,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// SearchHit is a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Score      float64           `json:"score"`
	Text       string            `json:"text"`
	ProjectID  string            `json:"project_id,omitempty"`
	Category   string            `json:"category,omitempty"`
	EntryType  string            `json:"entry_type,omitempty"`
	Timestamp  int64             `json:"timestamp,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchResult contains search results with timing metadata.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  int64       `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// CreateProjectRequest contains new project data.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest contains partial project updates. Nil fields are
// left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateEntryRequest contains new entry data.
type CreateEntryRequest struct {
	Type      string     `json:"type"`
	URL       string     `json:"url,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Category  string     `json:"category,omitempty"`
	Color     string     `json:"color,omitempty"`
	IsPublic  bool       `json:"is_public"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// UpdateEntryRequest contains partial entry updates. Nil fields are left
// unchanged; the entry's timestamp and project cannot be changed.
type UpdateEntryRequest struct {
	Type     *string `json:"type,omitempty"`
	URL      *string `json:"url,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Category *string `json:"category,omitempty"`
	Color    *string `json:"color,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}
