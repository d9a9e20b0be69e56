package kakera

import "sync"

// ScreenKind is a base screen of the application.
type ScreenKind string

const (
	// ScreenHome is the landing view with the auth form.
	ScreenHome ScreenKind = "home"
	// ScreenDashboard is the owner's project grid plus heatmap.
	ScreenDashboard ScreenKind = "dashboard"
	// ScreenProject is a single project's entry feed.
	ScreenProject ScreenKind = "project"
	// ScreenPublic is the cross-user public feed.
	ScreenPublic ScreenKind = "public"
)

// Screen is the current base view. ProjectID is set only for ScreenProject.
type Screen struct {
	Kind      ScreenKind
	ProjectID string
}

// ProjectModal is the open project editor. A nil Target means "create".
type ProjectModal struct {
	Target *Project
}

// EntryModal is the open entry editor. A nil Target means "create".
type EntryModal struct {
	Target *Entry
}

// State is the navigation state machine: one base screen plus two
// independent modal slots. All transitions are explicit methods, so
// illegal combinations (e.g. an entry list with no selected project)
// cannot be reached.
type State struct {
	mu           sync.Mutex
	screen       Screen
	category     string // entry list filter, "" = all
	lastProject  string // last project whose filter was set
	projectModal *ProjectModal
	entryModal   *EntryModal
	sharedView   bool // entered via share token, owner actions hidden
	cache        *Cache
}

// NewState creates a state machine starting at home, backed by the cache
// the transitions keep consistent.
func NewState(cache *Cache) *State {
	return &State{
		screen: Screen{Kind: ScreenHome},
		cache:  cache,
	}
}

// Screen returns the current base screen.
func (s *State) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Category returns the current entry list filter, "" meaning all.
func (s *State) Category() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// ProjectEditor returns the open project modal, or nil.
func (s *State) ProjectEditor() *ProjectModal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectModal
}

// EntryEditor returns the open entry modal, or nil.
func (s *State) EntryEditor() *EntryModal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryModal
}

// SharedView reports whether the current project view came from a share
// token; owner-only actions are hidden in that case.
func (s *State) SharedView() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sharedView
}

// ShowDashboard moves to the owner's project grid.
func (s *State) ShowDashboard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveProjectLocked()
	s.screen = Screen{Kind: ScreenDashboard}
}

// ShowPublic moves to the public feed.
func (s *State) ShowPublic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveProjectLocked()
	s.screen = Screen{Kind: ScreenPublic}
}

// OpenProject selects a project and moves to its entry feed. The
// category filter resets only when the project differs from the one the
// filter was set on; reopening the same project keeps it.
func (s *State) OpenProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if projectID != s.lastProject {
		s.category = ""
		s.lastProject = projectID
	}
	s.sharedView = false
	s.screen = Screen{Kind: ScreenProject, ProjectID: projectID}
}

// EnterShared opens a project resolved from a share token: the project
// view, read-only.
func (s *State) EnterShared(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if projectID != s.lastProject {
		s.category = ""
		s.lastProject = projectID
	}
	s.sharedView = true
	s.screen = Screen{Kind: ScreenProject, ProjectID: projectID}
}

// Back leaves the current screen: project returns to the dashboard,
// public and dashboard return home. Leaving a project clears the cached
// entry list so a later visit never shows stale rows.
func (s *State) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.screen.Kind {
	case ScreenProject:
		s.leaveProjectLocked()
		if s.sharedView {
			s.sharedView = false
			s.screen = Screen{Kind: ScreenHome}
			return
		}
		s.screen = Screen{Kind: ScreenDashboard}
	case ScreenDashboard, ScreenPublic:
		s.screen = Screen{Kind: ScreenHome}
	case ScreenHome:
	}
}

// SetCategory sets the entry list filter for the selected project.
func (s *State) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
}

// OpenProjectEditor opens the project modal. Target nil creates a new
// project. The base screen does not change.
func (s *State) OpenProjectEditor(target *Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectModal = &ProjectModal{Target: target}
}

// CloseProjectEditor closes the project modal.
func (s *State) CloseProjectEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectModal = nil
}

// OpenEntryEditor opens the entry modal. Target nil creates a new entry.
// The base screen does not change, and the category filter is untouched.
func (s *State) OpenEntryEditor(target *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryModal = &EntryModal{Target: target}
}

// CloseEntryEditor closes the entry modal.
func (s *State) CloseEntryEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryModal = nil
}

// HandleSessionEvent reacts to session-state changes. Sign-out clears
// every cached list and returns home, unless a share token is still
// active; shared viewing survives sign-out.
func (s *State) HandleSessionEvent(event SessionEvent, route Route) {
	if event.Type != SessionSignedOut {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		s.cache.Clear()
	}
	if route.HasShare() && s.screen.Kind == ScreenProject && s.sharedView {
		return
	}
	s.sharedView = false
	s.projectModal = nil
	s.entryModal = nil
	s.screen = Screen{Kind: ScreenHome}
}

// leaveProjectLocked clears the selected project's entry list on the way
// out. Callers hold the mutex.
func (s *State) leaveProjectLocked() {
	if s.screen.Kind == ScreenProject && s.cache != nil {
		s.cache.ClearEntries()
	}
}
