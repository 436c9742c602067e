// Package router maps the client's navigation paths to handlers.
//
// Paths are the ones the web client used (/login, /entradas/{id}, ...), so
// links such as a password reset URL resolve to the same views. Guard wraps
// handlers that need an authenticated session.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/jimalvess/diario-cli/internal/common"
	"github.com/jimalvess/diario-cli/internal/logging"
)

// Paths of the client views.
const (
	PathRoot          = "/"
	PathLogin         = "/login"
	PathResetPassword = "/redefinir-senha"
	PathHome          = "/home"
	PathEntries       = "/entradas"
	PathNewEntry      = "/entradas/nova"
	PathEntry         = "/entradas/{id}"
	PathEditEntry     = "/entradas/editar/{id}"
)

// maxRedirects bounds redirect chains so a misconfigured guard cannot loop.
const maxRedirects = 8

var (
	ErrNoRoute          = errors.New("no route")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Request is the matched navigation target passed to a handler.
type Request struct {
	Pattern string
	Path    string
	Params  map[string]string
	Query   url.Values
}

func (r *Request) Param(name string) string {
	return r.Params[name]
}

// ParamID parses a positive integer path parameter.
func (r *Request) ParamID(name string) (int64, error) {
	return common.ParseID(r.Params[name])
}

type Handler func(ctx context.Context, req *Request) error

type Middleware func(Handler) Handler

// Redirect is returned by a handler to send navigation elsewhere.
type Redirect struct {
	To string
}

func (r *Redirect) Error() string { return "redirect to " + r.To }

func RedirectTo(path string) error {
	return &Redirect{To: path}
}

// Router resolves paths to handlers and remembers the current route.
type Router struct {
	mu       sync.RWMutex
	mux      *chi.Mux
	handlers map[string]Handler
	current  string
	log      logging.Logger
}

func New(log logging.Logger) *Router {
	if log == nil {
		log = logging.Discard()
	}
	return &Router{
		mux:      chi.NewRouter(),
		handlers: make(map[string]Handler),
		log:      log.With("component", "router"),
	}
}

// Handle registers h for pattern. Segments written as {name} match any single
// non-empty segment, and static segments win over parameters. Middlewares
// are applied outermost first.
func (r *Router) Handle(pattern string, h Handler, mws ...Middleware) {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// The mux only resolves patterns; views run through handlers.
	r.mux.Method(http.MethodGet, pattern, http.NotFoundHandler())
	r.handlers[pattern] = h
}

// Navigate runs the handler for target, following redirects. The current
// route is updated to the final path before its handler runs.
func (r *Router) Navigate(ctx context.Context, target string) error {
	for hops := 0; hops <= maxRedirects; hops++ {
		req, h, err := r.match(target)
		if err != nil {
			return err
		}

		r.mu.Lock()
		r.current = req.Path
		r.mu.Unlock()

		err = h(ctx, req)
		var redirect *Redirect
		if !errors.As(err, &redirect) {
			return err
		}
		r.log.Debug(ctx, "redirect", "from", req.Path, "to", redirect.To)
		target = redirect.To
	}
	return fmt.Errorf("navigate: %w", ErrTooManyRedirects)
}

// Current is the path of the last route navigated to.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Router) match(target string) (*Request, Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, nil, fmt.Errorf("navigate %q: %w", target, err)
	}
	path := u.Path
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		path = trimmed
	} else {
		path = PathRoot
	}

	rctx := chi.NewRouteContext()

	r.mu.RLock()
	pattern := r.mux.Find(rctx, http.MethodGet, path)
	h, ok := r.handlers[pattern]
	r.mu.RUnlock()
	if pattern == "" || !ok {
		return nil, nil, fmt.Errorf("navigate %q: %w", path, ErrNoRoute)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return &Request{Pattern: pattern, Path: path, Params: params, Query: u.Query()}, h, nil
}
