// Package router resolves screen paths and gates them on the session's authentication state.
//
// Every navigation passes through [Guard], a pure function of the target's auth requirement and
// the current authentication flag:
//  1. an auth-required target while logged out redirects to /login?redirect=<full path>
//  2. /login while logged in redirects to /home
//  3. anything else proceeds unchanged
package router

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/shared"
)

const (
	PathRoot     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathHome     = "/home"
	PathProfile  = "/profile"
	PathSettings = "/settings"

	// RedirectParam carries the originally requested path through the login screen.
	RedirectParam = "redirect"

	maxRedirects = 5
)

// Route is one entry of the route table.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	Redirect     string // static redirect target, resolved before the guard runs
}

// Routes returns the application route table.
func Routes() []Route {
	return []Route{
		{Path: PathRoot, Redirect: PathLogin},
		{Path: PathLogin, Name: "Login"},
		{Path: PathRegister, Name: "Register"},
		{Path: PathHome, Name: "HomePage", RequiresAuth: true},
		{Path: PathProfile, Name: "Profile", RequiresAuth: true},
		{Path: PathSettings, Name: "Settings", RequiresAuth: true},
	}
}

// Location is a navigation target: a path plus query parameters.
type Location struct {
	Path  string
	Query url.Values

	rawQuery string // query as written when parsed, kept for FullPath
}

// ParseLocation splits raw ("/home?tab=1") into a [Location].
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty path", shared.ErrInvalidArgument)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return Location{}, fmt.Errorf("%w: %q is not an application path", shared.ErrInvalidArgument, raw)
	}

	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Location{Path: path, Query: u.Query(), rawQuery: u.RawQuery}, nil
}

// FullPath renders the location with its query string.
//
// A parsed location keeps its query exactly as written; key order and value-less keys survive.
func (l Location) FullPath() string {
	if l.rawQuery != "" {
		return l.Path + "?" + l.rawQuery
	}
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

func (l Location) String() string { return l.FullPath() }

// Decision is the outcome of [Guard]. Redirect is set exactly when Allow is false.
type Decision struct {
	Allow    bool
	Redirect *Location
}

// Guard decides whether navigation to target (matching route) may proceed.
func Guard(target Location, route Route, authenticated bool) Decision {
	if route.RequiresAuth && !authenticated {
		query := url.Values{}
		query.Set(RedirectParam, target.FullPath())
		return Decision{Redirect: &Location{Path: PathLogin, Query: query}}
	}

	if route.Path == PathLogin && authenticated {
		return Decision{Redirect: &Location{Path: PathHome}}
	}

	return Decision{Allow: true}
}

// AuthState reports whether a session is held. Implemented by session.Store.
type AuthState interface {
	IsAuthenticated() bool
}

// Router applies the route table and the guard to navigation requests.
type Router struct {
	routes map[string]Route
	auth   AuthState
	logger *log.Logger
}

// New creates a [Router] over routes; with none given, [Routes] is used.
func New(auth AuthState, logger *log.Logger, routes ...Route) *Router {
	if len(routes) == 0 {
		routes = Routes()
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		table[normalize(r.Path)] = r
	}
	return &Router{routes: table, auth: auth, logger: logger}
}

// normalize matches paths case-insensitively and ignores a trailing slash.
func normalize(path string) string {
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return PathRoot
	}
	return path
}

// Resolve looks up the route for path.
func (r *Router) Resolve(path string) (Route, bool) {
	route, ok := r.routes[normalize(path)]
	return route, ok
}

// Check runs the guard for raw without following redirects.
func (r *Router) Check(raw string) (Location, Route, Decision, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return Location{}, Route{}, Decision{}, err
	}
	route, ok := r.Resolve(loc.Path)
	if !ok {
		return loc, Route{}, Decision{}, fmt.Errorf("%w: %s", shared.ErrRouteNotFound, loc.Path)
	}
	return loc, route, Guard(loc, route, r.authenticated()), nil
}

// Navigate resolves raw to the location that is finally shown, following static and guard redirects.
func (r *Router) Navigate(raw string) (Location, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return Location{}, err
	}

	for hop := 0; hop <= maxRedirects; hop++ {
		route, ok := r.Resolve(loc.Path)
		if !ok {
			return loc, fmt.Errorf("%w: %s", shared.ErrRouteNotFound, loc.Path)
		}

		if route.Redirect != "" {
			next, err := ParseLocation(route.Redirect)
			if err != nil {
				return loc, err
			}
			if len(next.Query) == 0 && next.rawQuery == "" {
				next.Query, next.rawQuery = loc.Query, loc.rawQuery
			}
			loc = next
			continue
		}

		decision := Guard(loc, route, r.authenticated())
		if decision.Allow {
			loc.Path = route.Path
			return loc, nil
		}

		r.logger.Debug("navigation redirected", "from", loc.FullPath(), "to", decision.Redirect.FullPath())
		loc = *decision.Redirect
	}

	return loc, fmt.Errorf("%w: %s", shared.ErrRedirectTooDeep, raw)
}

// AfterLogin returns where to go once the user has signed in from loc: the redirect parameter when it
// names an application path, otherwise /home.
func (r *Router) AfterLogin(loc Location) string {
	target := loc.Query.Get(RedirectParam)
	if target == "" {
		return PathHome
	}

	next, err := ParseLocation(target)
	if err != nil || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return PathHome
	}
	if _, ok := r.Resolve(next.Path); !ok {
		return PathHome
	}
	return next.FullPath()
}

func (r *Router) authenticated() bool {
	return r.auth != nil && r.auth.IsAuthenticated()
}
