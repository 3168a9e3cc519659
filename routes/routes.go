package routes

import (
	"fmt"
	"net/http"

	"fresh/auth"
	"fresh/cart"
	"fresh/idempotency"
	"fresh/menu"
	"fresh/middleware"
	"fresh/ratelim"
	"fresh/restaurant"
	"fresh/salehub"
	"fresh/users"

	"github.com/julienschmidt/httprouter"
)

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/auth/register", rateLimiter.Limit(auth.Register))
	router.POST("/auth/login", rateLimiter.Limit(auth.Login))
	router.POST("/auth/logout", auth.Logout)

	router.POST("/auth/restaurant/register", rateLimiter.Limit(auth.RegisterRestaurant))
	router.POST("/auth/restaurant/login", rateLimiter.Limit(auth.LoginRestaurant))
	router.POST("/auth/restaurant/logout", auth.LogoutRestaurant)
}

func AddCartRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, h *cart.Handler, guard *idempotency.Guard) {
	router.POST("/cart/add-item/:itemId", rateLimiter.Limit(middleware.Authenticate(guard.Wrap(h.AddItem))))
	router.PATCH("/cart/remove-item/:itemId", rateLimiter.Limit(middleware.Authenticate(guard.Wrap(h.RemoveItem))))
	router.GET("/cart", middleware.Authenticate(h.ListCarts))
	router.GET("/cart/:restaurantId", middleware.Authenticate(h.GetCart))
	router.DELETE("/cart/:restaurantId", middleware.Authenticate(h.ClearCart))
}

func AddMenuRoutes(router *httprouter.Router) {
	router.GET("/menu/items", middleware.AuthenticateRestaurant(menu.GetItems))
	router.POST("/menu/items", middleware.AuthenticateRestaurant(menu.CreateItem))
	router.GET("/menu/items/:itemId", middleware.AuthenticateRestaurant(menu.GetItem))
	router.PUT("/menu/items/:itemId", middleware.AuthenticateRestaurant(menu.EditItem))
	router.DELETE("/menu/items/:itemId", middleware.AuthenticateRestaurant(menu.DeleteItem))

	router.POST("/menu/items/:itemId/sale", middleware.AuthenticateRestaurant(menu.ApplyItemSale))
	router.DELETE("/menu/items/:itemId/sale", middleware.AuthenticateRestaurant(menu.RemoveItemSale))
	router.POST("/menu/sale", middleware.AuthenticateRestaurant(menu.ApplyMenuSale))
	router.DELETE("/menu/sale", middleware.AuthenticateRestaurant(menu.RemoveMenuSale))

	router.GET("/menu/categories", middleware.AuthenticateRestaurant(menu.GetCategories))
	router.POST("/menu/categories", middleware.AuthenticateRestaurant(menu.CreateCategory))
	router.DELETE("/menu/categories/:categoryId", middleware.AuthenticateRestaurant(menu.DeleteCategory))
}

func AddRestaurantRoutes(router *httprouter.Router) {
	router.GET("/restaurants", restaurant.GetRestaurants)
	router.GET("/restaurants/:restaurantId", restaurant.GetRestaurant)
	router.GET("/restaurants/:restaurantId/menu", restaurant.GetRestaurantMenu)
	router.GET("/restaurants/:restaurantId/categories", menu.GetCategories)

	router.GET("/restaurant/me", middleware.AuthenticateRestaurant(restaurant.GetMine))
	router.PUT("/restaurant/me", middleware.AuthenticateRestaurant(restaurant.UpdateMine))
	router.GET("/restaurant/me/menu", middleware.AuthenticateRestaurant(restaurant.GetMyMenu))
	router.PATCH("/restaurant/me/publish", middleware.AuthenticateRestaurant(restaurant.Publish))
	router.PATCH("/restaurant/me/unpublish", middleware.AuthenticateRestaurant(restaurant.Unpublish))
}

func AddUserRoutes(router *httprouter.Router) {
	router.GET("/users/me", middleware.Authenticate(users.GetMe))
	router.GET("/users/favorites", middleware.Authenticate(users.GetFavorites))
	router.POST("/users/favorites/:restaurantId", middleware.Authenticate(users.AddFavorite))
	router.DELETE("/users/favorites/:restaurantId", middleware.Authenticate(users.RemoveFavorite))
}

func AddSaleStreamRoutes(router *httprouter.Router, hub *salehub.Hub, allowedOrigins []string) {
	router.GET("/ws/restaurants/:restaurantId/sales", middleware.OptionalAuth(salehub.WebSocketHandler(hub, allowedOrigins)))
}
