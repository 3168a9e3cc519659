package menu

import (
	"context"
	"net/http"
	"strings"
	"time"

	"fresh/apperr"
	"fresh/db"
	"fresh/models"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateCategory handles POST /menu/categories.
func CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || len(name) > 50 {
		utils.RespondWithAppError(w, apperr.BadRequest("Name must be between 1 and 50 characters."))
		return
	}

	category := models.Category{
		ID:           utils.GetUUID(),
		RestaurantID: restaurantID,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	if _, err := db.CategoriesCollection.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithAppError(w, apperr.Conflict("Category already exists"))
			return
		}
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, category)
}

// GetCategories handles GET /menu/categories and the public
// GET /restaurants/:restaurantId/categories.
func GetCategories(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := ps.ByName("restaurantId")
	if restaurantID == "" {
		restaurantID = utils.GetRestaurantIDFromRequest(r)
	}
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Restaurant ID is required")
		return
	}

	categories, err := db.FindAndDecode[models.Category](ctx, db.CategoriesCollection,
		bson.M{"restaurantId": restaurantID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, categories)
}

// DeleteCategory handles DELETE /menu/categories/:categoryId. Items in the
// category stay on the menu without one.
func DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurantID := utils.GetRestaurantIDFromRequest(r)
	if restaurantID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryID := ps.ByName("categoryId")

	res, err := db.CategoriesCollection.DeleteOne(ctx, bson.M{"_id": categoryID, "restaurantId": restaurantID})
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithAppError(w, apperr.NotFound("Category not found"))
		return
	}

	if _, err := db.ItemsCollection.UpdateMany(ctx,
		bson.M{"restaurantId": restaurantID, "categoryId": categoryID},
		bson.M{"$unset": bson.M{"categoryId": ""}, "$set": bson.M{"updatedAt": time.Now()}},
	); err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	invalidate(ctx, restaurantID)

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Category deleted successfully",
	})
}
