// Package handler exposes the store's REST surface: catalog, cart,
// checkout, payment proof, and admin review.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/flagforge/store-api/internal/currency"
	"github.com/flagforge/store-api/internal/domain/cart"
	"github.com/flagforge/store-api/internal/domain/order"
	"github.com/flagforge/store-api/internal/domain/product"
	"github.com/flagforge/store-api/internal/notify"
	"github.com/flagforge/store-api/internal/uploader"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
	// Version is reported by the health endpoint.
	Version string
}

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	products     product.Repository
	orders       *order.Service
	carts        cart.Store
	uploads      uploader.Uploader
	mailer       *notify.Dispatcher
	conv         currency.Converter
	imageBaseURL string
	version      string
}

// New constructs a Handler. mailer may be nil when no transport is
// configured; the test-email endpoint then reports it as unavailable.
func New(
	cfg Config,
	products product.Repository,
	orders *order.Service,
	carts cart.Store,
	uploads uploader.Uploader,
	mailer *notify.Dispatcher,
	conv currency.Converter,
) *Handler {
	return &Handler{
		products:     products,
		orders:       orders,
		carts:        carts,
		uploads:      uploads,
		mailer:       mailer,
		conv:         conv,
		imageBaseURL: cfg.ImageBaseURL,
		version:      cfg.Version,
	}
}

// Routes returns the API router, mounted by the app under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.health)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/upload-screenshot", h.uploadScreenshot)
		r.Post("/submit-proof", h.submitProof)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders/payments", h.listPaymentReview)
		r.Put("/orders/{orderID}/payment-status", h.updatePaymentStatus)
		r.Post("/email/test", h.sendTestEmail)
	})

	r.Route("/cart/{cartID}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addCartItem)
		r.Put("/items", h.setCartQuantity)
		r.Delete("/items", h.removeCartItem)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "FlagForge Store API is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	})
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}

// writeServerError reports a persistence or upstream failure. The
// underlying message is passed through; acceptable for an internal tool.
func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"message": "Server error",
		"error":   err.Error(),
	})
}

// validationErrs are intake and proof errors whose text is the API message.
var validationErrs = []error{
	order.ErrMissingCustomerInfo,
	order.ErrMissingShippingInfo,
	order.ErrEmptyItems,
	order.ErrInvalidTotal,
	order.ErrInvalidCategory,
	order.ErrInvalidPaymentMethod,
	order.ErrInvalidStatus,
	order.ErrInvalidPaymentStatus,
	order.ErrMissingProofFields,
}

// writeOrderError maps domain errors onto the error taxonomy: 400 for
// validation, 404 for unknown orders, 500 otherwise.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	for _, ve := range validationErrs {
		if errors.Is(err, ve) {
			writeMessage(w, http.StatusBadRequest, ve.Error())
			return
		}
	}
	writeServerError(w, r, err)
}
