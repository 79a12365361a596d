package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router with JSON 404/405 handlers
// and trailing-slash redirects.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	WriteError(ctx, StatusNotFound, "not_found", StatusText(StatusNotFound))
}

func MethodNotAllowedHandler(ctx *RequestCtx) {
	WriteError(ctx, StatusMethodNotAllowed, "method_not_allowed", StatusText(StatusMethodNotAllowed))
}
