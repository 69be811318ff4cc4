package router

import (
	"sync"

	"go.uber.org/zap"
)

// routeKey identifies one registry entry.
type routeKey struct {
	method Method
	path   string
}

// Registrable is implemented by values the registry accepts: *Route and
// *Group.
type Registrable interface {
	registerInto(r *Registry)
}

// Registry is the in-memory store of routes and route groups, keyed by
// (method, normalized path). Registration is idempotent for a given key.
// Mutations are guarded so plugins may install routes while requests are
// being served.
type Registry struct {
	mu     sync.RWMutex
	routes map[routeKey]*Route
	groups map[string]*Group
	logger *zap.Logger
}

// NewRegistry creates a new route registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		routes: make(map[routeKey]*Route),
		groups: make(map[string]*Group),
		logger: logger,
	}
}

// Register stores routes and groups. A group is stored by its prefix and
// flattened into its (already prefixed) member routes, so both group-level
// and route-level lookup succeed.
func (r *Registry) Register(items ...Registrable) {
	for _, item := range items {
		item.registerInto(r)
	}
}

func (rt *Route) registerInto(r *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range rt.Methods {
		for _, p := range rt.Paths {
			key := routeKey{method: m, path: NormalizePath(p)}
			if _, exists := r.routes[key]; exists && r.logger != nil {
				r.logger.Debug("Route re-registered",
					zap.String("method", string(m)),
					zap.String("path", key.path))
			}
			r.routes[key] = rt
		}
	}
}

func (g *Group) registerInto(r *Registry) {
	r.mu.Lock()
	r.groups[NormalizePath(g.Prefix)] = g
	r.mu.Unlock()

	for _, rt := range g.Routes() {
		rt.registerInto(r)
	}
}

// Route returns the route registered under (method, path), or nil.
func (r *Registry) Route(method Method, path string) *Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes[routeKey{method: method, path: NormalizePath(path)}]
}

// Group returns the group registered under the prefix, or nil.
func (r *Registry) Group(path string) *Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups[NormalizePath(path)]
}

// Routes returns every distinct registered route. A route occupying several
// keys appears once.
func (r *Registry) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Route]struct{}, len(r.routes))
	routes := make([]*Route, 0, len(r.routes))
	for _, rt := range r.routes {
		if _, ok := seen[rt]; ok {
			continue
		}
		seen[rt] = struct{}{}
		routes = append(routes, rt)
	}
	return routes
}

// Groups returns all registered groups.
func (r *Registry) Groups() []*Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]*Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	return groups
}

// Remove deletes the entry under (method, path), reporting whether one
// existed. Plugins use this to clean up routes they installed.
func (r *Registry) Remove(method Method, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := routeKey{method: method, path: NormalizePath(path)}
	_, ok := r.routes[key]
	delete(r.routes, key)
	return ok
}

// Clear wipes both route and group stores.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = make(map[routeKey]*Route)
	r.groups = make(map[string]*Group)
}
