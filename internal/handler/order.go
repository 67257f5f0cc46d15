package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/flagforge/store-api/internal/domain/order"
)

type orderItemRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	Quantity     int     `json:"quantity"`
	SelectedSize string  `json:"selectedSize"`
	CustomName   string  `json:"customName"`
	Category     string  `json:"category"`
}

type createOrderRequest struct {
	Customer        order.Customer        `json:"customer"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	Items           []orderItemRequest    `json:"items"`
	TotalAmount     float64               `json:"totalAmount"`
	PaymentMethod   string                `json:"paymentMethod"`
}

// orderSummary is the projection returned right after checkout.
type orderSummary struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	TotalAmount   float64 `json:"totalAmount"`
	CreatedAt     string  `json:"createdAt"`
}

func toOrderSummary(o *order.Order) orderSummary {
	return orderSummary{
		ID:            o.ID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		CreatedAt:     o.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]order.SubmittedItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.SubmittedItem{
			ProductID:    it.ID,
			Name:         it.Name,
			Price:        decimal.NewFromFloat(it.Price),
			Image:        it.Image,
			Quantity:     it.Quantity,
			SelectedSize: it.SelectedSize,
			CustomName:   it.CustomName,
			Category:     it.Category,
		}
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
		TotalAmount:     decimal.NewFromFloat(req.TotalAmount),
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   toOrderSummary(o),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type updateOrderRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

func (req updateOrderRequest) domainValues() (*order.Status, *order.PaymentStatus) {
	var st *order.Status
	if req.Status != nil {
		v := order.Status(*req.Status)
		st = &v
	}
	var ps *order.PaymentStatus
	if req.PaymentStatus != nil {
		v := order.PaymentStatus(*req.PaymentStatus)
		ps = &v
	}
	return st, ps
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	st, ps := req.domainValues()
	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), st, ps)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
