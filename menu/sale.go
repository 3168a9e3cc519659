package menu

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fresh/apperr"
	"fresh/db"
	"fresh/models"
	"fresh/mq"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// saleUpdate is the update document that stores sale on an item or
// restaurant. Absent dates are unset so an older window does not linger.
func saleUpdate(sale models.SaleFields, now time.Time) bson.M {
	set := bson.M{
		"onSale":     true,
		"saleType":   sale.SaleType,
		"saleAmount": sale.SaleAmount,
		"updatedAt":  now,
	}
	unset := bson.M{}
	if sale.SaleStartDate != nil {
		set["saleStartDate"] = *sale.SaleStartDate
	} else {
		unset["saleStartDate"] = ""
	}
	if sale.SaleEndDate != nil {
		set["saleEndDate"] = *sale.SaleEndDate
	} else {
		unset["saleEndDate"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func clearSaleUpdate(now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{"onSale": false, "updatedAt": now},
		"$unset": bson.M{
			"saleType":      "",
			"saleAmount":    "",
			"saleStartDate": "",
			"saleEndDate":   "",
		},
	}
}

func emit(ctx context.Context, event mq.SaleEvent) {
	go mq.Emit(context.WithoutCancel(ctx), event)
}

func readSale(r *http.Request) (models.SaleFields, error) {
	var in saleInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		return models.SaleFields{}, err
	}
	return validateSale(in, time.Now())
}

func updateItem(ctx context.Context, restaurantID, itemID string, update bson.M) (*models.Item, error) {
	var item models.Item
	err := db.ItemsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": itemID, "restaurantId": restaurantID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errItemNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &item, nil
}

func updateRestaurant(ctx context.Context, restaurantID string, update bson.M) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := db.RestaurantsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": restaurantID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&restaurant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Restaurant not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &restaurant, nil
}

// ApplyItemSale handles POST /menu/items/:itemId/sale.
func ApplyItemSale(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sale, err := readSale(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	item, err := updateItem(ctx, restaurantID, ps.ByName("itemId"), saleUpdate(sale, time.Now()))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	invalidate(ctx, restaurantID)
	emit(ctx, mq.SaleEvent{Type: mq.ItemSaleApplied, RestaurantID: restaurantID, ItemID: item.ID, Sale: item.SaleFields, At: time.Now()})

	log.Info().Str("restaurant", restaurantID).Str("item", item.ID).Str("type", string(sale.SaleType)).
		Float64("amount", sale.SaleAmount).Msg("item sale applied")
	utils.RespondWithJSON(w, http.StatusOK, item)
}

// RemoveItemSale handles DELETE /menu/items/:itemId/sale.
func RemoveItemSale(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	item, err := updateItem(ctx, restaurantID, ps.ByName("itemId"), clearSaleUpdate(time.Now()))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	invalidate(ctx, restaurantID)
	emit(ctx, mq.SaleEvent{Type: mq.ItemSaleRemoved, RestaurantID: restaurantID, ItemID: item.ID, At: time.Now()})

	utils.RespondWithJSON(w, http.StatusOK, item)
}

// ApplyMenuSale handles POST /menu/sale. The restaurant sale replaces every
// item sale, so those are cleared in the same request.
func ApplyMenuSale(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sale, err := readSale(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	now := time.Now()
	restaurant, err := updateRestaurant(ctx, restaurantID, saleUpdate(sale, now))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	res, err := db.ItemsCollection.UpdateMany(ctx,
		bson.M{"restaurantId": restaurantID, "onSale": true},
		clearSaleUpdate(now),
	)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	invalidate(ctx, restaurantID)
	emit(ctx, mq.SaleEvent{Type: mq.MenuSaleApplied, RestaurantID: restaurantID, Sale: restaurant.SaleFields, At: now})

	log.Info().Str("restaurant", restaurantID).Int64("itemSalesCleared", res.ModifiedCount).Msg("menu sale applied")
	utils.RespondWithJSON(w, http.StatusOK, restaurant)
}

// RemoveMenuSale handles DELETE /menu/sale.
func RemoveMenuSale(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	restaurant, err := updateRestaurant(ctx, restaurantID, clearSaleUpdate(time.Now()))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	invalidate(ctx, restaurantID)
	emit(ctx, mq.SaleEvent{Type: mq.MenuSaleRemoved, RestaurantID: restaurantID, At: time.Now()})

	utils.RespondWithJSON(w, http.StatusOK, restaurant)
}
