package domain

// Project is a creation box: a container a user attaches progress entries to.
type Project struct {
	Entity
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UserID      string `json:"user_id"`

	// ShareID is the opaque read-only share token. Stable once issued;
	// a project without one has never been shared (older rows only —
	// new projects get a token at creation). It grants viewing, never
	// mutation.
	ShareID string `json:"share_id,omitempty"`
}

// HasShareLink returns true if a share token has been issued for this project.
func (p *Project) HasShareLink() bool {
	return p.ShareID != ""
}
