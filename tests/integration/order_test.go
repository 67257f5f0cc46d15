//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func validOrder() orderRequest {
	return orderRequest{
		Customer: customerRequest{
			Email:     "alex@ctf.team",
			FirstName: "Alex",
			LastName:  "Rai",
			Phone:     "9800000001",
		},
		ShippingAddress: shippingRequest{
			Address: "Baneshwor",
			City:    "Kathmandu",
		},
		Items: []orderItemRequest{
			{ID: "1", Name: "FlagForge Tshirt", Price: 15, Quantity: 2, SelectedSize: "L", Category: "tshirt"},
		},
		TotalAmount:   30,
		PaymentMethod: "cod",
	}
}

func TestPlaceOrder(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", validOrder())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	created := decodeJSON[createOrderResponse](t, resp)
	if created.Message != "Order created successfully" {
		t.Errorf("message: got %q", created.Message)
	}
	if !uuidPattern.MatchString(created.Order.ID) {
		t.Errorf("order ID %q is not a valid UUID", created.Order.ID)
	}
	if created.Order.Status != "pending" {
		t.Errorf("status: got %q, want %q", created.Order.Status, "pending")
	}
	if created.Order.PaymentStatus != "pending" {
		t.Errorf("paymentStatus: got %q, want %q", created.Order.PaymentStatus, "pending")
	}
	if created.Order.TotalAmount != 30 {
		t.Errorf("totalAmount: got %v, want 30", created.Order.TotalAmount)
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	req := validOrder()
	req.Items = nil

	resp := doJSON(t, http.MethodPost, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_MissingCustomer(t *testing.T) {
	req := validOrder()
	req.Customer.Phone = ""

	resp := doJSON(t, http.MethodPost, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[messageResponse](t, resp)
	if errResp.Message != "missing required customer information" {
		t.Errorf("message: got %q", errResp.Message)
	}
}

func TestGetOrder_RoundTrip(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", validOrder())
	created := decodeJSON[createOrderResponse](t, resp)
	resp.Body.Close()

	resp = doGet(t, "/api/orders/"+created.Order.ID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSubmitProof_ThenReviewQueue(t *testing.T) {
	req := validOrder()
	req.PaymentMethod = "esewa"
	resp := doJSON(t, http.MethodPost, "/api/orders", req)
	created := decodeJSON[createOrderResponse](t, resp)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, "/api/payments/submit-proof", map[string]string{
		"orderId":              created.Order.ID,
		"paymentScreenshotUrl": "https://res.cloudinary.com/demo/image/upload/proof.png",
		"paymentMethod":        "esewa",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	queue := doGet(t, "/api/admin/orders/payments")
	defer queue.Body.Close()

	if queue.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", queue.StatusCode)
	}

	entries := decodeJSON[[]map[string]any](t, queue)
	found := false
	for _, e := range entries {
		if e["id"] == created.Order.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("order %s missing from payment review queue", created.Order.ID)
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", validOrder())
	created := decodeJSON[createOrderResponse](t, resp)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, "/api/admin/orders/"+created.Order.ID+"/payment-status", map[string]string{
		"paymentStatus": "paid",
		"status":        "confirmed",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	check := doGet(t, "/api/orders/" + created.Order.ID)
	defer check.Body.Close()

	got := decodeJSON[map[string]any](t, check)
	if got["paymentStatus"] != "paid" {
		t.Errorf("paymentStatus: got %v, want paid", got["paymentStatus"])
	}
	if got["status"] != "confirmed" {
		t.Errorf("status: got %v, want confirmed", got["status"])
	}
}
