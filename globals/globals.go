package globals

import "time"

var (
	// JwtSecret is replaced from config at startup.
	JwtSecret = []byte("your_secret_key")

	// CookieSecure marks auth cookies Secure; off for local http development.
	CookieSecure = false
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
const RestaurantIDKey ContextKey = "restaurantId"

const (
	UserTokenCookie       = "Fresh_V2_Access_Token"
	RestaurantTokenCookie = "Fresh_V2_Access_Token_RESTAURANT"
	TokenTTL              = 7 * 24 * time.Hour
)

const (
	RoleUser       = "user"
	RoleRestaurant = "restaurant"
)
