package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fresh/cart"
	"fresh/idempotency"
	"fresh/ratelim"
	"fresh/salehub"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	router := httprouter.New()
	h := cart.NewHandler(cart.NewService(cart.NewMemoryStore(), cart.NewMemoryCatalog()))
	require.NotPanics(t, func() {
		RoutesWrapper(router, ratelim.NewRateLimiter(10, 10), Deps{
			Cart:           h,
			Idempotency:    idempotency.NewGuard(idempotency.NewMemoryStore(), time.Hour),
			Hub:            salehub.NewHub(),
			AllowedOrigins: []string{"*"},
		})
	})
	return router
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "200", rec.Body.String())
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	router := newRouter(t)
	for _, rt := range []struct{ method, path string }{
		{http.MethodPost, "/cart/add-item/i1"},
		{http.MethodPatch, "/cart/remove-item/i1"},
		{http.MethodGet, "/cart"},
		{http.MethodGet, "/cart/r1"},
		{http.MethodDelete, "/cart/r1"},
		{http.MethodGet, "/users/me"},
		{http.MethodPost, "/menu/items"},
		{http.MethodPost, "/menu/sale"},
		{http.MethodDelete, "/menu/items/i1/sale"},
		{http.MethodPatch, "/restaurant/me/publish"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}
}
