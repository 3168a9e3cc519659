package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fresh/apperr"
	"fresh/db"
	"fresh/models"
	"fresh/restaurant"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const requestTimeout = 5 * time.Second

var errNoUser = apperr.NotFound("User not found")

func findUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNoUser
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if u.Carts == nil {
		u.Carts = []string{}
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	return &u, nil
}

// GetMe handles GET /users/me.
func GetMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := findUser(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// GetFavorites handles GET /users/favorites, returning listing cards of the
// favorite restaurants that are still published.
func GetFavorites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := findUser(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	summaries, err := restaurant.Summaries(ctx, bson.M{"_id": bson.M{"$in": u.Favorites}, "isPublished": true})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summaries)
}

// AddFavorite handles POST /users/favorites/:restaurantId.
func AddFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	restaurantID := ps.ByName("restaurantId")

	n, err := db.RestaurantsCollection.CountDocuments(ctx, bson.M{"_id": restaurantID, "isPublished": true})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if n == 0 {
		utils.RespondWithAppError(w, apperr.NotFound("Restaurant not found"))
		return
	}

	updateFavorites(w, ctx, userID, bson.M{"$addToSet": bson.M{"favorites": restaurantID}})
}

// RemoveFavorite handles DELETE /users/favorites/:restaurantId.
func RemoveFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	updateFavorites(w, ctx, userID, bson.M{"$pull": bson.M{"favorites": ps.ByName("restaurantId")}})
}

func updateFavorites(w http.ResponseWriter, ctx context.Context, userID string, update bson.M) {
	res, err := db.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithAppError(w, errNoUser)
		return
	}

	u, err := findUser(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"favorites": u.Favorites})
}
