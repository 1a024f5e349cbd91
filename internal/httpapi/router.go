package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP surface of the worker. The health endpoint is
// open; everything else sits behind the api-key check and CORS handling.
func NewRouter(h *Handler, apiKey, allowedOrigin string, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(CORS(allowedOrigin))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Reminder worker is healthy!"))
	})

	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(apiKey, logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/add", h.AddToCart)
			r.Delete("/remove", h.RemoveFromCart)
			r.Put("/update-item", h.UpdateCart)
			r.Post("/clear", h.ClearCart)
			r.Post("/reset-reminder", h.ResetCartReminder)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.GetWishlist)
			r.Post("/add", h.AddToWishlist)
			r.Delete("/remove", h.RemoveFromWishlist)
			r.Put("/update-item", h.UpdateWishlist)
		})

		r.Post("/schedule-expiry-7days", h.ScheduleExpiry7Days)
		r.Post("/schedule-expiry-1day", h.ScheduleExpiry1Day)
	})

	return r
}
