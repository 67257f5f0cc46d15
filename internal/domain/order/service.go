package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flagforge/store-api/internal/currency"
	"github.com/flagforge/store-api/internal/domain/product"
)

// Sentinel errors for intake and proof validation. Their messages are part
// of the API contract.
var (
	ErrMissingCustomerInfo  = errors.New("missing required customer information")
	ErrMissingShippingInfo  = errors.New("missing required shipping address information")
	ErrEmptyItems           = errors.New("order must contain at least one item")
	ErrInvalidTotal         = errors.New("invalid total amount")
	ErrInvalidCategory      = errors.New("unknown item category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrMissingProofFields   = errors.New("order ID and payment screenshot are required")
)

// Notifier dispatches a best-effort order confirmation. Implementations
// render and send the email; the service only logs their failures.
type Notifier interface {
	OrderConfirmation(ctx context.Context, o *Order) error
}

// SubmittedItem is one cart line as submitted at checkout. The USD price is
// the client's denormalized copy; the NPR value is computed server-side.
type SubmittedItem struct {
	ProductID    string
	Name         string
	Price        decimal.Decimal
	Image        string
	Quantity     int
	SelectedSize string
	CustomName   string
	Category     string
}

// PlaceOrderRequest holds the checkout submission.
type PlaceOrderRequest struct {
	Customer        Customer
	ShippingAddress ShippingAddress
	Items           []SubmittedItem
	TotalAmount     decimal.Decimal
	// PaymentMethod defaults to cash on delivery when empty.
	PaymentMethod PaymentMethod
}

// Service implements order intake, payment proof attachment, and admin
// review against a single order repository.
type Service struct {
	orders   Repository
	conv     currency.Converter
	notifier Notifier
	now      func() time.Time
}

// NewService creates an order Service. notifier may be nil, in which case
// no confirmation emails are attempted.
func NewService(orders Repository, conv currency.Converter, notifier Notifier) *Service {
	return &Service{
		orders:   orders,
		conv:     conv,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceOrder validates the submission, snapshots the items with NPR values
// computed at write time, persists the order once, and dispatches a
// best-effort confirmation email. Email failure never fails the order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = MethodCOD
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	items := make([]Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = Item{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Price:        it.Price,
			PriceNpr:     s.conv.ToNpr(it.Price),
			Image:        it.Image,
			Quantity:     it.Quantity,
			SelectedSize: it.SelectedSize,
			CustomName:   it.CustomName,
			Category:     toCategory(it.Category),
		}
	}

	now := s.now()
	o := &Order{
		ID:              uuid.NewString(),
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		TotalAmountNpr:  s.conv.ToNpr(req.TotalAmount),
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The submitted total is persisted as-is; a mismatch against the item
	// sum is surfaced in logs only. See DESIGN.md.
	if sum := o.ItemsTotal(); !sum.Equal(o.TotalAmount) {
		zctx.From(ctx).Warn("submitted total does not match item sum",
			zap.String("order_id", o.ID),
			zap.String("submitted", o.TotalAmount.String()),
			zap.String("computed", sum.String()),
		)
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmation(ctx, o); err != nil {
			zctx.From(ctx).Warn("order confirmation email failed",
				zap.String("order_id", o.ID),
				zap.Error(err),
			)
		}
	}

	return o, nil
}

func validateSubmission(req PlaceOrderRequest) error {
	c := req.Customer
	if blank(c.Email) || blank(c.FirstName) || blank(c.LastName) || blank(c.Phone) {
		return ErrMissingCustomerInfo
	}
	if blank(req.ShippingAddress.Address) || blank(req.ShippingAddress.City) {
		return ErrMissingShippingInfo
	}
	if len(req.Items) == 0 {
		return ErrEmptyItems
	}
	for _, it := range req.Items {
		if !toCategory(it.Category).Valid() {
			return ErrInvalidCategory
		}
	}
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTotal
	}
	return nil
}

// GetOrder returns a single order or ErrNotFound.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns all orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// ListPaymentReview returns the queue of orders awaiting manual payment
// verification: every order that carries a screenshot, newest first.
func (s *Service) ListPaymentReview(ctx context.Context) ([]Order, error) {
	return s.orders.ListWithPaymentProof(ctx)
}

// SubmitPaymentProof attaches a hosted screenshot URL to an existing order,
// resets its payment status to pending for manual verification, and records
// the payment method (defaulting to esewa).
func (s *Service) SubmitPaymentProof(ctx context.Context, orderID, screenshotURL string, method PaymentMethod) (*Order, error) {
	if blank(orderID) || blank(screenshotURL) {
		return nil, ErrMissingProofFields
	}
	if method == "" {
		method = MethodEsewa
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.PaymentScreenshotURL = screenshotURL
	o.PaymentStatus = PaymentPending // verified manually by an admin
	o.PaymentMethod = method
	o.UpdatedAt = s.now()

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// UpdateStatus sets the fulfillment and/or payment status of an order.
// There is no enforced transition table; moves out of a terminal state are
// logged as suspicious but still applied.
func (s *Service) UpdateStatus(ctx context.Context, id string, status *Status, payment *PaymentStatus) (*Order, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if payment != nil && !payment.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lg := zctx.From(ctx)
	if status != nil {
		if o.Status.Terminal() && *status != o.Status {
			lg.Warn("order leaving terminal status",
				zap.String("order_id", o.ID),
				zap.String("from", string(o.Status)),
				zap.String("to", string(*status)),
			)
		}
		o.Status = *status
	}
	if payment != nil {
		if o.PaymentStatus.Terminal() && *payment != o.PaymentStatus {
			lg.Warn("order leaving terminal payment status",
				zap.String("order_id", o.ID),
				zap.String("from", string(o.PaymentStatus)),
				zap.String("to", string(*payment)),
			)
		}
		o.PaymentStatus = *payment
	}
	o.UpdatedAt = s.now()

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

func toCategory(s string) product.Category {
	return product.Category(s)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
