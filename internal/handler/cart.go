package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/flagforge/store-api/internal/domain/cart"
	"github.com/flagforge/store-api/internal/domain/product"
)

type cartLineResponse struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	PriceNpr     int64   `json:"priceNpr"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	SelectedSize string  `json:"selectedSize,omitempty"`
	CustomName   string  `json:"customName,omitempty"`
	Quantity     int     `json:"quantity"`
}

type cartResponse struct {
	CartID        string             `json:"cartId"`
	Lines         []cartLineResponse `json:"items"`
	TotalItems    int                `json:"totalItems"`
	TotalPrice    float64            `json:"totalPrice"`
	TotalPriceNpr int64              `json:"totalPriceNpr"`
}

func (h *Handler) cartResponse(cartID string, c *cart.Cart) cartResponse {
	lines := make([]cartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = cartLineResponse{
			ProductID:    l.ProductID,
			Name:         l.Name,
			Price:        l.Price.InexactFloat64(),
			PriceNpr:     h.conv.ToNpr(l.Price),
			Image:        h.imageURL(l.Image),
			Category:     string(l.Category),
			SelectedSize: l.SelectedSize,
			CustomName:   l.CustomName,
			Quantity:     l.Quantity,
		}
	}
	total := c.TotalPrice()
	return cartResponse{
		CartID:        cartID,
		Lines:         lines,
		TotalItems:    c.TotalItems(),
		TotalPrice:    total.InexactFloat64(),
		TotalPriceNpr: h.conv.ToNpr(total),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cartID, c))
}

type cartItemRequest struct {
	ProductID    string `json:"productId"`
	SelectedSize string `json:"selectedSize"`
	CustomName   string `json:"customName"`
	Quantity     *int   `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeMessage(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	if !p.InStock {
		writeMessage(w, http.StatusBadRequest, "Product is out of stock")
		return
	}
	if p.HasSizes() && req.SelectedSize == "" {
		writeMessage(w, http.StatusBadRequest, "Size selection is required for this product")
		return
	}

	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	c.Add(*p, req.SelectedSize, req.CustomName)
	if err := h.carts.Save(r.Context(), cartID, c); err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cartID, c))
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeMessage(w, http.StatusBadRequest, "Product ID is required")
		return
	}
	if req.Quantity == nil {
		writeMessage(w, http.StatusBadRequest, "Quantity is required")
		return
	}

	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	c.SetQuantity(req.ProductID, *req.Quantity, req.SelectedSize, req.CustomName)
	if err := h.carts.Save(r.Context(), cartID, c); err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cartID, c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	q := r.URL.Query()
	productID := q.Get("productId")
	if productID == "" {
		writeMessage(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	c.Remove(productID, q.Get("selectedSize"), q.Get("customName"))
	if err := h.carts.Save(r.Context(), cartID, c); err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cartID, c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	if err := h.carts.Delete(r.Context(), cartID); err != nil {
		writeServerError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared")
}
