// Package router wraps chi with named routes and prefix groups.
//
//	r := router.New()
//	api := r.Group("/api")
//	api.Get("/products/{id}", "products.show", h.Show)
//	r.URL("products.show", map[string]string{"id": p.ID}) // "/api/products/<id>"
//
// Every registration is recorded so `b2zi route:list` can print the table.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// Route describes one registered endpoint.
type Route struct {
	Method string
	Path   string
	Name   string
}

// Router owns the chi mux and the route table. Its Get/Post/... register at
// the root with no group middleware.
type Router struct {
	mux  chi.Router
	root *Group

	mu    sync.RWMutex
	names map[string]string
	table []Route
}

// Group is a path prefix plus the middleware applied to every route in it.
type Group struct {
	r      *Router
	prefix string
	mws    []Middleware
}

func New() *Router {
	r := &Router{mux: chi.NewRouter(), names: map[string]string{}}
	r.root = &Group{r: r, prefix: "/"}
	return r
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds middleware that runs before routing, for every request including
// unmatched ones. chi requires it before any route is added.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.mux.Use(mw)
	}
}

func (r *Router) NotFound(h http.HandlerFunc)         { r.mux.NotFound(h) }
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

func (r *Router) Group(prefix string, mws ...Middleware) *Group { return r.root.Group(prefix, mws...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Get(path, name, h, mws...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.root.Post(path, name, h, mws...)
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.names[name]
	return p, ok
}

// URL fills the {params} of a named route.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	p, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}
	for k, v := range params {
		p = strings.ReplaceAll(p, "{"+k+"}", v)
	}
	if strings.Contains(p, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}
	return p, nil
}

// Routes lists every registered endpoint ordered by path then method.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	out := append([]Route(nil), r.table...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) add(method, path, name string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != "" {
		if prev, dup := r.names[name]; dup {
			panic(fmt.Sprintf("router: route name %q already used by %s", name, prev))
		}
		r.names[name] = path
	}
	r.table = append(r.table, Route{Method: method, Path: path, Name: name})
	r.mux.Method(method, path, h)
}

// Group nests a prefix; the child runs the parent's middleware first.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	return &Group{
		r:      g.r,
		prefix: joinPath(g.prefix, prefix),
		mws:    append(append([]Middleware(nil), g.mws...), mws...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodGet, path, name, h, mws)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodPost, path, name, h, mws)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodPut, path, name, h, mws)
}

func (g *Group) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodPatch, path, name, h, mws)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.handle(http.MethodDelete, path, name, h, mws)
}

func (g *Group) handle(method, path, name string, h http.HandlerFunc, mws []Middleware) {
	var wrapped http.Handler = h
	all := append(append([]Middleware(nil), g.mws...), mws...)
	for i := len(all) - 1; i >= 0; i-- {
		wrapped = all[i](wrapped)
	}
	g.r.add(method, joinPath(g.prefix, path), name, wrapped)
}

func joinPath(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if t := strings.Trim(p, "/"); t != "" {
			segs = append(segs, t)
		}
	}
	return "/" + strings.Join(segs, "/")
}
