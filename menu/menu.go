package menu

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fresh/apperr"
	"fresh/db"
	"fresh/models"
	"fresh/rdx"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	requestTimeout = 10 * time.Second
	menuCacheTTL   = 10 * time.Minute
)

var errItemNotFound = apperr.NotFound("Item not found")

// LoadItems returns every item of the restaurant, from the Redis cache when
// it is warm. Prices are stored values; discounts are resolved by callers.
func LoadItems(ctx context.Context, restaurantID string) ([]models.Item, error) {
	key := rdx.MenuKey(restaurantID)

	cached, err := rdx.RdxGet(ctx, key)
	if err == nil && cached != "" {
		var items []models.Item
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
		log.Warn().Str("key", key).Msg("discarding unreadable menu cache entry")
	} else if err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, rdx.ErrDisabled) {
		log.Warn().Err(err).Str("key", key).Msg("menu cache read failed")
	}

	items, err := db.FindAndDecode[models.Item](ctx, db.ItemsCollection,
		bson.M{"restaurantId": restaurantID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := rdx.RdxSet(ctx, key, string(data), menuCacheTTL); err != nil && !errors.Is(err, rdx.ErrDisabled) {
			log.Warn().Err(err).Str("key", key).Msg("menu cache write failed")
		}
	}
	return items, nil
}

// invalidate drops the cached menu after any write to the restaurant's items.
func invalidate(ctx context.Context, restaurantID string) {
	if err := rdx.RdxDel(ctx, rdx.MenuKey(restaurantID)); err != nil && !errors.Is(err, rdx.ErrDisabled) {
		log.Warn().Err(err).Str("restaurant", restaurantID).Msg("menu cache invalidation failed")
	}
}

func categoryExists(ctx context.Context, restaurantID, categoryID string) (bool, error) {
	n, err := db.CategoriesCollection.CountDocuments(ctx,
		bson.M{"_id": categoryID, "restaurantId": restaurantID}, options.Count().SetLimit(1))
	return n > 0, err
}

func checkCategory(ctx context.Context, restaurantID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	ok, err := categoryExists(ctx, restaurantID, categoryID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.BadRequest("Unknown category")
	}
	return nil
}

// CreateItem handles POST /menu/items.
func CreateItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in itemInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validateItem(in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := checkCategory(ctx, restaurantID, in.CategoryID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	item := toItem(in)
	item.ID = utils.GetUUID()
	item.RestaurantID = restaurantID
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	if _, err := db.ItemsCollection.InsertOne(ctx, item); err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	invalidate(ctx, restaurantID)

	log.Info().Str("restaurant", restaurantID).Str("item", item.ID).Msg("menu item created")
	utils.RespondWithJSON(w, http.StatusCreated, item)
}

// GetItems handles GET /menu/items for the signed-in restaurant.
func GetItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := LoadItems(ctx, restaurantID)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// GetItem handles GET /menu/items/:itemId.
func GetItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var item models.Item
	err := db.ItemsCollection.FindOne(ctx, bson.M{"_id": ps.ByName("itemId"), "restaurantId": restaurantID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithAppError(w, errItemNotFound)
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, item)
}

// EditItem handles PUT /menu/items/:itemId.
func EditItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in itemInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validateItem(in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := checkCategory(ctx, restaurantID, in.CategoryID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	next := toItem(in)
	set := bson.M{
		"title":       next.Title,
		"description": next.Description,
		"price":       next.Price,
		"categoryId":  next.CategoryID,
		"tags":        next.Tags,
		"ingredients": next.Ingredients,
		"variants":    next.Variants,
		"addons":      next.Addons,
		"updatedAt":   time.Now(),
	}
	if in.IsAvailable != nil {
		set["isAvailable"] = *in.IsAvailable
	}

	var updated models.Item
	err := db.ItemsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": ps.ByName("itemId"), "restaurantId": restaurantID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithAppError(w, errItemNotFound)
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	invalidate(ctx, restaurantID)

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /menu/items/:itemId. Carts keep their line
// snapshots of deleted items.
func DeleteItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := db.ItemsCollection.DeleteOne(ctx, bson.M{"_id": ps.ByName("itemId"), "restaurantId": restaurantID})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithAppError(w, errItemNotFound)
		return
	}
	invalidate(ctx, restaurantID)

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Item deleted successfully",
	})
}
