package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sanad/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func status(code int) gin.HandlerFunc {
	return func(c *gin.Context) { c.Status(code) }
}

func TestRoutes(t *testing.T) {
	routes := Routes(Handlers{
		Receipts: &handler.ReceiptHandler{},
		Verify:   &handler.VerifyHandler{},
		System:   &handler.SystemHandler{},
	})

	access := make(map[string]Access, len(routes))
	for _, r := range routes {
		assert.NotNil(t, r.Handler, r.Path)
		access[r.Method+" "+r.Path] = r.Access
	}
	assert.Equal(t, Throttled, access["GET /receipts/verify"])
	assert.Equal(t, Authenticated, access["POST /receipts/generate-pdf"])
	assert.Equal(t, Authenticated, access["GET /receipts/get-pdf"])
	assert.Equal(t, Authenticated, access["POST /receipts/get-pdf"])
	assert.Equal(t, Public, access["GET /health"])
}

func TestAccessString(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "throttled", Throttled.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}

func TestMount(t *testing.T) {
	routes := []Route{
		{Method: http.MethodGet, Path: "/receipts/verify", Access: Throttled, Handler: status(http.StatusOK)},
		{Method: http.MethodGet, Path: "/receipts/get-pdf", Access: Authenticated, Handler: status(http.StatusOK)},
		{Method: http.MethodGet, Path: "/health", Access: Public, Handler: status(http.StatusOK)},
	}

	t.Run("guards stay on their level", func(t *testing.T) {
		engine := gin.New()
		Mount(engine, routes, Guards{
			Authenticated: {func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }},
			Throttled:     {func(c *gin.Context) { c.Header("X-Throttled", "1") }},
		}, nil)

		w := serve(engine, http.MethodGet, "/api/v1/receipts/verify")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-Throttled"))

		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/receipts/get-pdf").Code)

		w = serve(engine, http.MethodGet, "/api/v1/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Throttled"))
	})

	t.Run("missing guard mounts bare", func(t *testing.T) {
		engine := gin.New()
		Mount(engine, routes, nil, nil)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/receipts/get-pdf").Code)
	})

	t.Run("logs each route", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		Mount(gin.New(), routes, nil, zap.New(core))

		entries := logs.FilterMessage("Route registered").All()
		assert.Len(t, entries, len(routes))
		assert.Equal(t, "/api/v1/receipts/verify", entries[0].ContextMap()["path"])
		assert.Equal(t, "throttled", entries[0].ContextMap()["access"])
	})
}
