package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fresh/apperr"
	"fresh/db"
	"fresh/globals"
	"fresh/middleware"
	"fresh/models"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const requestTimeout = 10 * time.Second

var errBadCredentials = apperr.Unauthorized("Invalid username or password")

type registerInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var in registerInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	username := strings.TrimSpace(in.Username)
	if !validUsername(username) {
		utils.RespondWithAppError(w, apperr.BadRequest("Username must be 3-32 letters, digits, '_' or '.'"))
		return
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validatePassword(in.Password); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}

	now := time.Now()
	user := models.User{
		ID:        utils.GetUUID(),
		Username:  username,
		Email:     email,
		Password:  hashed,
		Carts:     []string{},
		Favorites: []string{},
		CreatedAt: now,
		LastLogin: now,
	}
	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithAppError(w, apperr.Conflict("User already exists"))
			return
		}
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}

	token, err := middleware.IssueToken(user.ID, user.Username, []string{globals.RoleUser}, globals.TokenTTL)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	setAuthCookie(w, globals.UserTokenCookie, token)

	log.Info().Str("user", user.ID).Str("username", user.Username).Msg("user registered")
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"userid":   user.ID,
		"username": user.Username,
	})
}

// Login handles POST /auth/login.
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var in loginInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if in.Username == "" || in.Password == "" {
		utils.RespondWithAppError(w, apperr.BadRequest("Username and password are required"))
		return
	}

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"username": strings.TrimSpace(in.Username)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithAppError(w, errBadCredentials)
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if !checkPassword(user.Password, in.Password) {
		utils.RespondWithAppError(w, errBadCredentials)
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"lastLogin": time.Now()}}); err != nil {
		log.Warn().Err(err).Str("user", user.ID).Msg("failed to record last login")
	}

	token, err := middleware.IssueToken(user.ID, user.Username, []string{globals.RoleUser}, globals.TokenTTL)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	setAuthCookie(w, globals.UserTokenCookie, token)

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"userid":   user.ID,
		"username": user.Username,
	})
}

// Logout handles POST /auth/logout.
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	clearAuthCookie(w, globals.UserTokenCookie)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

type restaurantRegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type restaurantLoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRestaurant handles POST /auth/restaurant/register. New restaurants
// start unpublished with no opening hours.
func RegisterRestaurant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var in restaurantRegisterInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		utils.RespondWithAppError(w, apperr.BadRequest("Name must be between 1 and 100 characters."))
		return
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validatePassword(in.Password); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}

	now := time.Now()
	restaurant := models.Restaurant{
		ID:           utils.GetUUID(),
		Name:         name,
		Email:        email,
		Password:     hashed,
		Cuisine:      []string{},
		OpeningHours: models.OpeningHours{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := db.RestaurantsCollection.InsertOne(ctx, restaurant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithAppError(w, apperr.Conflict("Restaurant already exists"))
			return
		}
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}

	token, err := middleware.IssueToken(restaurant.ID, restaurant.Name, []string{globals.RoleRestaurant}, globals.TokenTTL)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	setAuthCookie(w, globals.RestaurantTokenCookie, token)

	log.Info().Str("restaurant", restaurant.ID).Msg("restaurant registered")
	utils.RespondWithJSON(w, http.StatusCreated, restaurant)
}

// LoginRestaurant handles POST /auth/restaurant/login.
func LoginRestaurant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var in restaurantLoginInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	email, err := normalizeEmail(in.Email)
	if err != nil || in.Password == "" {
		utils.RespondWithAppError(w, apperr.BadRequest("Email and password are required"))
		return
	}

	var restaurant models.Restaurant
	err = db.RestaurantsCollection.FindOne(ctx, bson.M{"email": email}).Decode(&restaurant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithAppError(w, apperr.Unauthorized("Invalid email or password"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	if !checkPassword(restaurant.Password, in.Password) {
		utils.RespondWithAppError(w, apperr.Unauthorized("Invalid email or password"))
		return
	}

	token, err := middleware.IssueToken(restaurant.ID, restaurant.Name, []string{globals.RoleRestaurant}, globals.TokenTTL)
	if err != nil {
		utils.RespondWithAppError(w, apperr.Internal(err))
		return
	}
	setAuthCookie(w, globals.RestaurantTokenCookie, token)

	utils.RespondWithJSON(w, http.StatusOK, restaurant)
}

// LogoutRestaurant handles POST /auth/restaurant/logout.
func LogoutRestaurant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	clearAuthCookie(w, globals.RestaurantTokenCookie)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}
