package router_helper

import (
	"net/http"
	"path"
	"sort"

	"github.com/julienschmidt/httprouter"
)

type Route struct {
	Method string
	Path   string
}

// RouteGroup registers handlers on a shared httprouter under a path prefix and remembers every
// registered route.
type RouteGroup struct {
	router *httprouter.Router
	prefix string
	routes *[]Route
}

func NewRouteGroup(router *httprouter.Router, prefix string) *RouteGroup {
	return &RouteGroup{router: router, prefix: prefix, routes: &[]Route{}}
}

// Group returns a sub group sharing the router and the route list.
func (g *RouteGroup) Group(prefix string) *RouteGroup {
	return &RouteGroup{router: g.router, prefix: g.path(prefix), routes: g.routes}
}

func (g *RouteGroup) path(p string) string {
	if g.prefix == "" {
		return p
	}
	return path.Join(g.prefix, p)
}

func (g *RouteGroup) Handle(method, p string, handle httprouter.Handle) {
	full := g.path(p)
	*g.routes = append(*g.routes, Route{Method: method, Path: full})
	g.router.Handle(method, full, handle)
}

func (g *RouteGroup) Handler(method, p string, handler http.Handler) {
	full := g.path(p)
	*g.routes = append(*g.routes, Route{Method: method, Path: full})
	g.router.Handler(method, full, handler)
}

func (g *RouteGroup) GET(p string, handle httprouter.Handle) {
	g.Handle(http.MethodGet, p, handle)
}

func (g *RouteGroup) POST(p string, handle httprouter.Handle) {
	g.Handle(http.MethodPost, p, handle)
}

func (g *RouteGroup) DELETE(p string, handle httprouter.Handle) {
	g.Handle(http.MethodDelete, p, handle)
}

// Routes returns every route registered through this group or its relatives, sorted by path.
func (g *RouteGroup) Routes() []Route {
	routes := append([]Route(nil), *g.routes...)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}
