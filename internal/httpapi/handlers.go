package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/actors"
	"github.com/Eduardaskuliesa/Alina-workers/internal/domain"
)

// Handler is the routing glue between HTTP and the actors. It validates the
// caller, extracts an identity, and forwards one typed command; everything
// with real invariants lives behind the actor interfaces.
type Handler struct {
	cart     *actors.CartActor
	wishlist *actors.WishlistActor
	expiry7  *actors.ExpiryActor
	expiry1  *actors.ExpiryActor
	logger   *zap.SugaredLogger
}

func NewHandler(
	cart *actors.CartActor,
	wishlist *actors.WishlistActor,
	expiry7 *actors.ExpiryActor,
	expiry1 *actors.ExpiryActor,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		cart:     cart,
		wishlist: wishlist,
		expiry7:  expiry7,
		expiry1:  expiry1,
		logger:   logger.Named("http"),
	}
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type removeRequest struct {
	CourseID string `json:"courseId"`
}

type updateCartRequest struct {
	CourseID string                `json:"courseId"`
	Updates  domain.CartItemUpdate `json:"updates"`
}

type updateWishlistRequest struct {
	CourseID string                    `json:"courseId"`
	Updates  domain.WishlistItemUpdate `json:"updates"`
}

type scheduleExpiryRequest struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var item domain.CartItem
	if !decodeBody(w, r, &item) {
		return
	}

	res, err := h.cart.AddToCart(r.Context(), userID, item)
	h.respondResult(w, res, err)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req removeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.cart.RemoveFromCart(r.Context(), userID, req.CourseID)
	h.respondResult(w, res, err)
}

func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.cart.UpdateCart(r.Context(), userID, req.CourseID, req.Updates)
	h.respondResult(w, res, err)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.cart.GetCart(r.Context(), userID)
	if err != nil {
		h.respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "cart": items})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	res, err := h.cart.ClearCart(r.Context(), userID)
	h.respondResult(w, res, err)
}

func (h *Handler) ResetCartReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	res, err := h.cart.ResetCartReminder(r.Context(), userID)
	h.respondResult(w, res, err)
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var item domain.WishlistItem
	if !decodeBody(w, r, &item) {
		return
	}

	res, err := h.wishlist.AddToWishlist(r.Context(), userID, item)
	h.respondResult(w, res, err)
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req removeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.wishlist.RemoveFromWishlist(r.Context(), userID, req.CourseID)
	h.respondResult(w, res, err)
}

func (h *Handler) UpdateWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateWishlistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.wishlist.UpdateWishlist(r.Context(), userID, req.CourseID, req.Updates)
	h.respondResult(w, res, err)
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.wishlist.GetWishlist(r.Context(), userID)
	if err != nil {
		h.respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "wishlist": items})
}

func (h *Handler) ScheduleExpiry7Days(w http.ResponseWriter, r *http.Request) {
	h.scheduleExpiry(w, r, h.expiry7)
}

func (h *Handler) ScheduleExpiry1Day(w http.ResponseWriter, r *http.Request) {
	h.scheduleExpiry(w, r, h.expiry1)
}

func (h *Handler) scheduleExpiry(w http.ResponseWriter, r *http.Request, actor *actors.ExpiryActor) {
	var req scheduleExpiryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.CourseID == "" {
		respondError(w, http.StatusBadRequest, "Missing userId or courseId")
		return
	}

	res, err := actor.ScheduleReminder(r.Context(), domain.ExpiryRecord{
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		ExpiresAt: req.ExpiresAt,
	})
	h.respondResult(w, res, err)
}

func (h *Handler) respondResult(w http.ResponseWriter, res actors.Result, err error) {
	if err != nil {
		h.respondInternalError(w, err)
		return
	}
	// informational outcomes (duplicate, not found, too late) are not faults
	respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: res.Message})
}

func (h *Handler) respondInternalError(w http.ResponseWriter, err error) {
	h.logger.Errorw("request failed", "error", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "Missing userId parameter")
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
