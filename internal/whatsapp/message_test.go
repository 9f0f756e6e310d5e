package whatsapp

import (
	"strings"
	"testing"

	"cloudkitchen/internal/orders"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{350, "₹350"},
		{0, "₹0"},
		{1, "₹1"},
		{12500, "₹12500"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.amount); got != tt.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func sampleOrder() orders.Order {
	return orders.Order{
		ID: "ORD-abc123",
		Items: []orders.OrderItem{
			{ItemID: "a", Name: "Kung Pao Chicken", Price: 350, Quantity: 2},
			{ItemID: "b", Name: "Fried Rice", Price: 240, Quantity: 1},
		},
		Total:         940,
		OrderType:     orders.TypeDelivery,
		PaymentMethod: orders.PaymentCOD,
		Status:        orders.StatusNew,
	}
}

func TestFormatOrderSummary(t *testing.T) {
	m := FormatOrderSummary(sampleOrder(), "Test Kitchen")

	for _, want := range []string{
		"ORD-abc123",
		"Test Kitchen",
		"Kung Pao Chicken × 2",
		"₹700", // line total 350*2
		"Fried Rice × 1",
		"₹240",
		"Total: ₹940",
		"Delivery",
		"Cash on Delivery",
	} {
		if !strings.Contains(m, want) {
			t.Errorf("summary missing %q:\n%s", want, m)
		}
	}
}

func TestFormatOrderSummaryOnlinePickup(t *testing.T) {
	o := sampleOrder()
	o.OrderType = orders.TypePickup
	o.PaymentMethod = orders.PaymentOnline
	m := FormatOrderSummary(o, "Test Kitchen")
	if !strings.Contains(m, "Pickup") {
		t.Errorf("summary should say Pickup:\n%s", m)
	}
	if !strings.Contains(m, "Online Payment") {
		t.Errorf("summary should say Online Payment:\n%s", m)
	}
}

func TestURL(t *testing.T) {
	u := URL("+91 98765-43210", "hello world & more")
	if !strings.HasPrefix(u, "https://wa.me/919876543210?text=") {
		t.Errorf("URL should strip non-digits from phone: %s", u)
	}
	if strings.Contains(u, " ") {
		t.Errorf("URL must not contain raw spaces: %s", u)
	}
	if !strings.Contains(u, "%26") {
		t.Errorf("ampersand should be escaped: %s", u)
	}
}
