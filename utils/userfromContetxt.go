package utils

import (
	"net/http"

	"fresh/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRestaurantIDFromRequest(r *http.Request) string {
	restaurantID, ok := r.Context().Value(globals.RestaurantIDKey).(string)
	if !ok || restaurantID == "" {
		return ""
	}
	return restaurantID
}
