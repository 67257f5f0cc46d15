package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/flagforge/store-api/internal/domain/order"
)

// maxScreenshotBytes caps payment screenshots at 5MB, checked before any
// call to the image host.
const maxScreenshotBytes = 5 << 20

func (h *Handler) uploadScreenshot(w http.ResponseWriter, r *http.Request) {
	// Slack above the limit covers multipart framing; bodies beyond it
	// abort the parse and surface as MaxBytesError below.
	r.Body = http.MaxBytesReader(w, r.Body, maxScreenshotBytes+1<<20)

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeMessage(w, http.StatusBadRequest, "File too large (max 5MB)")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > maxScreenshotBytes {
		writeMessage(w, http.StatusBadRequest, "File too large (max 5MB)")
		return
	}
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		writeMessage(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	asset, err := h.uploads.Upload(r.Context(), file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to upload screenshot",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Screenshot uploaded successfully",
		"imageUrl": asset.URL,
		"publicId": asset.PublicID,
	})
}

type submitProofRequest struct {
	OrderID              string `json:"orderId"`
	PaymentScreenshotURL string `json:"paymentScreenshotUrl"`
	PaymentMethod        string `json:"paymentMethod"`
}

func (h *Handler) submitProof(w http.ResponseWriter, r *http.Request) {
	var req submitProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.orders.SubmitPaymentProof(r.Context(),
		req.OrderID, req.PaymentScreenshotURL, order.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment proof submitted successfully",
		"order": map[string]string{
			"id":            o.ID,
			"status":        string(o.Status),
			"paymentStatus": string(o.PaymentStatus),
		},
	})
}

// paymentReviewEntry is the admin projection of an order awaiting manual
// payment verification.
type paymentReviewEntry struct {
	ID                   string          `json:"id"`
	Customer             order.Customer  `json:"customer"`
	TotalAmount          float64         `json:"totalAmount"`
	TotalAmountNpr       int64           `json:"totalAmountNpr"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"paymentStatus"`
	PaymentMethod        string          `json:"paymentMethod"`
	PaymentScreenshotURL string          `json:"paymentScreenshotUrl"`
	CreatedAt            string          `json:"createdAt"`
	Items                []order.Item    `json:"items"`
}

func (h *Handler) listPaymentReview(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListPaymentReview(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	resp := make([]paymentReviewEntry, len(orders))
	for i, o := range orders {
		resp[i] = paymentReviewEntry{
			ID:                   o.ID,
			Customer:             o.Customer,
			TotalAmount:          o.TotalAmount.InexactFloat64(),
			TotalAmountNpr:       o.TotalAmountNpr,
			Status:               string(o.Status),
			PaymentStatus:        string(o.PaymentStatus),
			PaymentMethod:        string(o.PaymentMethod),
			PaymentScreenshotURL: o.PaymentScreenshotURL,
			CreatedAt:            o.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			Items:                o.Items,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	st, ps := req.domainValues()
	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), st, ps)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment status updated successfully",
		"order": map[string]string{
			"id":            o.ID,
			"paymentStatus": string(o.PaymentStatus),
			"status":        string(o.Status),
		},
	})
}

type testEmailRequest struct {
	To string `json:"to"`
}

func (h *Handler) sendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.To) == "" {
		writeMessage(w, http.StatusBadRequest, "Recipient address is required")
		return
	}
	if h.mailer == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Email transport is not configured")
		return
	}
	if err := h.mailer.Test(r.Context(), req.To); err != nil {
		writeServerError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Test email sent")
}
