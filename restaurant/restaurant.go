package restaurant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fresh/apperr"
	"fresh/db"
	"fresh/hours"
	"fresh/menu"
	"fresh/models"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const requestTimeout = 5 * time.Second

var errNotFound = apperr.NotFound("Restaurant not found")

func findRestaurant(ctx context.Context, filter bson.M) (*models.Restaurant, error) {
	var r models.Restaurant
	err := db.RestaurantsCollection.FindOne(ctx, filter).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &r, nil
}

// GetRestaurants handles GET /restaurants. Only published restaurants are
// listed; ?cuisine= filters.
func GetRestaurants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := bson.M{"isPublished": true}
	if c := strings.TrimSpace(r.URL.Query().Get("cuisine")); c != "" {
		filter["cuisine"] = c
	}

	result, err := Summaries(ctx, filter)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

// Summaries loads the restaurants matching filter as listing cards, sorted
// by name.
func Summaries(ctx context.Context, filter bson.M) ([]Summary, error) {
	restaurants, err := db.FindAndDecode[models.Restaurant](ctx, db.RestaurantsCollection, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	result := make([]Summary, 0, len(restaurants))
	for _, rest := range restaurants {
		result = append(result, buildSummary(rest, now))
	}
	return result, nil
}

// GetRestaurant handles GET /restaurants/:restaurantId.
func GetRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rest, err := findRestaurant(ctx, bson.M{"_id": ps.ByName("restaurantId"), "isPublished": true})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, buildDetail(*rest, time.Now()))
}

// GetRestaurantMenu handles GET /restaurants/:restaurantId/menu.
func GetRestaurantMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rest, err := findRestaurant(ctx, bson.M{"_id": ps.ByName("restaurantId"), "isPublished": true})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	items, err := menu.LoadItems(ctx, rest.ID)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if c := r.URL.Query().Get("categoryId"); c != "" {
		filtered := items[:0]
		for _, it := range items {
			if it.CategoryID == c {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	utils.RespondWithJSON(w, http.StatusOK, buildMenu(items, rest, time.Now(), false))
}

// GetMine handles GET /restaurant/me for the signed-in admin.
func GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rest, err := findRestaurant(ctx, bson.M{"_id": restaurantID})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, buildDetail(*rest, time.Now()))
}

// GetMyMenu handles GET /restaurant/me/menu: every item, hidden ones
// included, priced as customers would see them.
func GetMyMenu(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rest, err := findRestaurant(ctx, bson.M{"_id": restaurantID})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	items, err := menu.LoadItems(ctx, rest.ID)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, buildMenu(items, rest, time.Now(), true))
}

type profileInput struct {
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	Address      *string              `json:"address"`
	Cuisine      []string             `json:"cuisine"`
	OpeningHours *models.OpeningHours `json:"openingHours"`
}

// profileUpdate validates in and returns the fields to $set.
func profileUpdate(in profileInput) (bson.M, error) {
	set := bson.M{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 100 {
			return nil, apperr.BadRequest("Name must be between 1 and 100 characters.")
		}
		set["name"] = name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Address != nil {
		set["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Cuisine != nil {
		set["cuisine"] = in.Cuisine
	}
	if in.OpeningHours != nil {
		if err := hours.Validate(*in.OpeningHours); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}
		set["openingHours"] = *in.OpeningHours
	}
	if len(set) == 0 {
		return nil, apperr.BadRequest("No fields to update")
	}
	set["updatedAt"] = time.Now()
	return set, nil
}

// UpdateMine handles PUT /restaurant/me.
func UpdateMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in profileInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	set, err := profileUpdate(in)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	rest, err := setFields(ctx, restaurantID, set)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, buildDetail(*rest, time.Now()))
}

// Publish handles PATCH /restaurant/me/publish.
func Publish(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	setPublished(w, r, true)
}

// Unpublish handles PATCH /restaurant/me/unpublish. Customers can no longer
// add its items to carts.
func Unpublish(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	setPublished(w, r, false)
}

func setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rest, err := setFields(ctx, restaurantID, bson.M{"isPublished": published, "updatedAt": time.Now()})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	log.Info().Str("restaurant", restaurantID).Bool("published", published).Msg("restaurant visibility changed")
	utils.RespondWithJSON(w, http.StatusOK, buildDetail(*rest, time.Now()))
}

func setFields(ctx context.Context, restaurantID string, set bson.M) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := db.RestaurantsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": restaurantID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &rest, nil
}
