package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine  *gin.Engine
	prefix  string
	entries []entry
}

type entry struct {
	registrar  RouteRegistrar
	middleware []gin.HandlerFunc
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithPrefix sets the API path prefix
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:  engine,
		prefix:  "/api",
		entries: make([]entry, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar, optionally wrapped in extra middleware
// that applies only to that registrar's routes.
func (r *Router) Register(registrar RouteRegistrar, middleware ...gin.HandlerFunc) *Router {
	r.entries = append(r.entries, entry{registrar: registrar, middleware: middleware})
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.prefix)
	for _, e := range r.entries {
		group := api.Group("", e.middleware...)
		e.registrar.RegisterRoutes(group)
	}
}
