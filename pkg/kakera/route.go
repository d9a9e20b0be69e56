package kakera

import "net/url"

// shareParam is the query parameter carrying a read-only share token.
const shareParam = "share"

// Route is the application's entry URL, parsed once at startup. It is an
// immutable value: navigation never mutates it, and the share token is
// the only piece of URL state the application reads.
type Route struct {
	url        *url.URL
	shareToken string
}

// ParseRoute parses an entry URL. An unparseable URL yields an empty
// route rather than an error; a visitor with a broken URL is just an
// anonymous visitor.
func ParseRoute(rawURL string) Route {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Route{}
	}
	return Route{
		url:        u,
		shareToken: u.Query().Get(shareParam),
	}
}

// ShareToken returns the share token, or "" when the URL carries none.
func (r Route) ShareToken() string {
	return r.shareToken
}

// HasShare reports whether the URL carries a share token.
func (r Route) HasShare() bool {
	return r.shareToken != ""
}

// StripShare returns the route with the share token removed, and the URL
// string a frontend should display in its place.
func (r Route) StripShare() (Route, string) {
	if r.url == nil {
		return Route{}, ""
	}
	u := *r.url
	q := u.Query()
	q.Del(shareParam)
	u.RawQuery = q.Encode()
	return Route{url: &u}, u.String()
}

// String returns the route's URL.
func (r Route) String() string {
	if r.url == nil {
		return ""
	}
	return r.url.String()
}
