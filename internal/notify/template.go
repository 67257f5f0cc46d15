package notify

import (
	"embed"
	"html/template"
	"strings"

	"github.com/flagforge/store-api/internal/currency"
	"github.com/flagforge/store-api/internal/domain/order"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var confirmationTmpl = template.Must(
	template.ParseFS(templateFS, "templates/order_confirmation.html.tmpl"),
)

type confirmationItem struct {
	Name       string
	Size       string
	CustomName string
	Quantity   int
	UnitPrice  string
	LineTotal  string
}

type confirmationData struct {
	CustomerName string
	OrderID      string
	Method       string
	OrderDate    string
	Items        []confirmationItem
	Total        string
	Address      string
	City         string
	Phone        string
	Footer       string
}

// renderConfirmation builds the confirmation HTML for an order. All money
// values are formatted as USD with two decimals.
func renderConfirmation(o *order.Order) (string, error) {
	items := make([]confirmationItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = confirmationItem{
			Name:       it.Name,
			Size:       it.SelectedSize,
			CustomName: it.CustomName,
			Quantity:   it.Quantity,
			UnitPrice:  currency.FormatUSD(it.Price),
			LineTotal:  currency.FormatUSD(it.LineTotal()),
		}
	}

	footer := "We will verify your payment and process your order within 24 hours."
	if o.PaymentMethod == order.MethodCOD {
		footer = "Your order will be delivered and you can pay with cash upon delivery."
	}

	data := confirmationData{
		CustomerName: o.Customer.FullName(),
		OrderID:      o.ID,
		Method:       o.PaymentMethod.Label(),
		OrderDate:    o.CreatedAt.Format("January 2, 2006"),
		Items:        items,
		Total:        currency.FormatUSD(o.TotalAmount),
		Address:      o.ShippingAddress.Address,
		City:         o.ShippingAddress.City,
		Phone:        o.Customer.Phone,
		Footer:       footer,
	}

	var sb strings.Builder
	if err := confirmationTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
