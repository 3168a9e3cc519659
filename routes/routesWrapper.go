package routes

import (
	"fresh/cart"
	"fresh/idempotency"
	"fresh/ratelim"
	"fresh/salehub"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the long-lived objects some route groups need.
type Deps struct {
	Cart           *cart.Handler
	Idempotency    *idempotency.Guard
	Hub            *salehub.Hub
	AllowedOrigins []string
}

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, deps Deps) {
	router.GET("/health", Index)

	AddAuthRoutes(router, rateLimiter)
	AddCartRoutes(router, rateLimiter, deps.Cart, deps.Idempotency)
	AddMenuRoutes(router)
	AddRestaurantRoutes(router)
	AddUserRoutes(router)
	AddSaleStreamRoutes(router, deps.Hub, deps.AllowedOrigins)
}
