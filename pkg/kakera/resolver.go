package kakera

import "context"

// StartMode is the initial condition the resolver lands on.
type StartMode string

const (
	// StartShared means the URL carried a valid share token; the app
	// opens directly on the shared project, read-only.
	StartShared StartMode = "shared"
	// StartOwner means a session was restored; the dashboard data is
	// loaded eagerly.
	StartOwner StartMode = "owner"
	// StartAnonymous means no token and no session; the app shows the
	// authentication view with nothing loaded.
	StartAnonymous StartMode = "anonymous"
)

// Resolution is the resolver's verdict on how the application starts.
type Resolution struct {
	Mode  StartMode
	Route Route

	// Shared is set in StartShared mode.
	Shared *SharedProject

	// Owner-mode data, loaded eagerly so the dashboard renders without
	// a second round trip. Either may be missing if its fetch failed.
	User     *User
	Projects []*Project
	Heatmap  *Heatmap

	// ShareErr records a share token that failed to resolve. The token
	// has already been stripped from Route; the caller surfaces the
	// error and proceeds with whatever mode resolution fell through to.
	ShareErr error
}

// Resolver determines the application's initial state from its entry URL
// and any restored session.
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver backed by the given client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve inspects the entry URL and the client's session and picks
// exactly one starting condition, in priority order: shared-link visitor,
// authenticated owner, anonymous. Every failure degrades to the next
// case; Resolve never aborts startup.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) *Resolution {
	route := ParseRoute(rawURL)
	res := &Resolution{Route: route}

	// Case 1: shared-link visitor. An invalid token is surfaced, the
	// token stripped, and resolution falls through.
	if route.HasShare() {
		shared, err := r.client.GetShared(ctx, route.ShareToken())
		if err == nil {
			res.Mode = StartShared
			res.Shared = shared
			return res
		}
		res.ShareErr = err
		res.Route, _ = route.StripShare()
	}

	// Case 2: authenticated owner. The session must still verify; a
	// stale token degrades to anonymous.
	if r.client.Authenticated() {
		user, err := r.client.GetSession(ctx)
		if err == nil {
			res.Mode = StartOwner
			res.User = user

			// Eager dashboard loads. Failures leave the field empty;
			// the fetch can be retried from the UI.
			if projects, err := r.client.ListProjects(ctx); err == nil {
				res.Projects = projects
			}
			if heatmap, err := r.client.Heatmap(ctx, 0); err == nil {
				res.Heatmap = heatmap
			}
			return res
		}
	}

	// Case 3: anonymous.
	res.Mode = StartAnonymous
	return res
}
