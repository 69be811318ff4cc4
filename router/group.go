package router

// Group collects routes under a shared path prefix, shared options, and an
// optional shared IO mapper. Member routes keep their own options for keys
// they set; the group's options fill the rest.
type Group struct {
	Prefix  string
	Options *Options
	IO      *IO

	routes []*Route
}

// NewGroup creates a route group with the given path prefix.
func NewGroup(prefix string) *Group {
	return &Group{Prefix: prefix}
}

// WithOptions returns the group with its shared option bag set.
func (g *Group) WithOptions(opts *Options) *Group {
	g.Options = opts
	return g
}

// WithIO returns the group with its shared IO mapper set.
func (g *Group) WithIO(io *IO) *Group {
	g.IO = io
	return g
}

// Add appends a prefixed copy of the route to the group. Every path is
// rewritten to the normalized join of the group prefix and the route path;
// options are merged with the route's keys winning; the route's IO falls
// back to the group's. The route passed in is never mutated.
func (g *Group) Add(routes ...*Route) *Group {
	for _, r := range routes {
		paths := make([]string, len(r.Paths))
		for i, p := range r.Paths {
			paths[i] = JoinPaths(g.Prefix, p)
		}

		io := r.IO
		if io == nil {
			io = g.IO
		}

		g.routes = append(g.routes, &Route{
			Methods: append([]Method(nil), r.Methods...),
			Paths:   paths,
			Handler: r.Handler,
			Options: MergeOptions(g.Options, r.Options),
			IO:      io,
		})
	}
	return g
}

// Routes returns a copy of the group's member routes.
func (g *Group) Routes() []*Route {
	return append([]*Route(nil), g.routes...)
}
