package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Access is the guard a route sits behind
type Access int

const (
	// Public routes need no credentials
	Public Access = iota
	// Throttled routes are public but share the verification rate limit
	Throttled
	// Authenticated routes require a bearer token carrying a tenant
	Authenticated
)

func (a Access) String() string {
	switch a {
	case Throttled:
		return "throttled"
	case Authenticated:
		return "authenticated"
	default:
		return "public"
	}
}

// Route is one entry of the API table
type Route struct {
	Method  string
	Path    string // relative to /api/v1
	Access  Access
	Handler gin.HandlerFunc
}

// Routes returns the voucher API table. get-pdf answers both GET with a query
// parameter and POST with a JSON body.
func Routes(h Handlers) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/receipts/verify", Access: Throttled, Handler: h.Verify.Verify},
		{Method: http.MethodPost, Path: "/receipts/generate-pdf", Access: Authenticated, Handler: h.Receipts.GeneratePDF},
		{Method: http.MethodGet, Path: "/receipts/get-pdf", Access: Authenticated, Handler: h.Receipts.GetPDF},
		{Method: http.MethodPost, Path: "/receipts/get-pdf", Access: Authenticated, Handler: h.Receipts.GetPDF},
		{Method: http.MethodGet, Path: "/health", Access: Public, Handler: h.System.Health},
		{Method: http.MethodGet, Path: "/system/info", Access: Public, Handler: h.System.GetSystemInfo},
	}
}

// Guards holds the middleware chain of each access level. A level without
// an entry is mounted bare.
type Guards map[Access][]gin.HandlerFunc

// Mount registers routes under /api/v1 of engine. Routes of one access level
// share a router group, so a guard never leaks onto another level.
func Mount(engine *gin.Engine, routes []Route, guards Guards, log *zap.Logger) {
	api := engine.Group(apiPrefix)
	groups := make(map[Access]*gin.RouterGroup)
	for _, r := range routes {
		g, ok := groups[r.Access]
		if !ok {
			g = api.Group("", guards[r.Access]...)
			groups[r.Access] = g
		}
		g.Handle(r.Method, r.Path, r.Handler)
		if log != nil {
			log.Debug("Route registered",
				zap.String("method", r.Method),
				zap.String("path", apiPrefix+r.Path),
				zap.Stringer("access", r.Access),
			)
		}
	}
}
