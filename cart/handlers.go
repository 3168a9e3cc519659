package cart

import (
	"context"
	"net/http"
	"time"

	"fresh/apperr"
	"fresh/models"
	"fresh/utils"

	"github.com/julienschmidt/httprouter"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type addItemRequest struct {
	RestaurantID     string                   `json:"restaurantId"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants []models.SelectedVariant `json:"selectedVariants"`
	SelectedAddons   []models.SelectedAddon   `json:"selectedAddons"`
}

type removeItemRequest struct {
	RestaurantID string `json:"restaurantId"`
}

// AddItem handles POST /cart/add-item/:itemId.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req addItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if req.RestaurantID == "" {
		utils.RespondWithAppError(w, apperr.BadRequest("restaurantId is required"))
		return
	}

	c, err := h.svc.AddItem(ctx, AddItemInput{
		RestaurantID: req.RestaurantID,
		ItemID:       ps.ByName("itemId"),
		UserID:       userID,
		Quantity:     req.Quantity,
		Variants:     req.SelectedVariants,
		Addons:       req.SelectedAddons,
	})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

// RemoveItem handles PATCH /cart/remove-item/:itemId.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req removeItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if req.RestaurantID == "" {
		utils.RespondWithAppError(w, apperr.BadRequest("restaurantId is required"))
		return
	}

	c, err := h.svc.RemoveItem(ctx, req.RestaurantID, ps.ByName("itemId"), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

// GetCart handles GET /cart/:restaurantId.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.svc.GetCart(ctx, ps.ByName("restaurantId"), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// ListCarts handles GET /cart.
func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	carts, err := h.svc.ListCarts(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, carts)
}

// ClearCart handles DELETE /cart/:restaurantId.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.svc.ClearCart(ctx, ps.ByName("restaurantId"), userID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
