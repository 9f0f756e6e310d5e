// Package whatsapp builds the outbound order hand-off: a human-readable
// summary and a wa.me deep link that opens a chat pre-filled with it.
// The link is fire-and-forget; nothing confirms the restaurant saw it.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"cloudkitchen/internal/orders"
)

// FormatCurrency renders whole rupees with the currency symbol and no
// decimal places: 350 -> "₹350".
func FormatCurrency(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}

const summaryRule = "=============================="

// FormatOrderSummary builds the message body sent to the kitchen.
func FormatOrderSummary(o orders.Order, kitchenName string) string {
	orderTypeText := "Pickup"
	if o.OrderType == orders.TypeDelivery {
		orderTypeText = "Delivery"
	}
	paymentText := "Online Payment"
	if o.PaymentMethod == orders.PaymentCOD {
		paymentText = "Cash on Delivery"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Order ID: %s\n\n", o.ID)
	fmt.Fprintf(&b, "🍽️ *%s*\n\n", kitchenName)
	b.WriteString("📋 *ORDER SUMMARY*\n")
	b.WriteString(summaryRule + "\n\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%s × %d\n", it.Name, it.Quantity)
		fmt.Fprintf(&b, "%s\n\n", FormatCurrency(it.Price*int64(it.Quantity)))
	}
	b.WriteString(summaryRule + "\n")
	fmt.Fprintf(&b, "*Total: %s*\n\n", FormatCurrency(o.Total))
	fmt.Fprintf(&b, "📦 %s\n", orderTypeText)
	fmt.Fprintf(&b, "💳 %s\n\n", paymentText)
	b.WriteString("Please confirm this order. Thank you!")
	return b.String()
}

// URL builds the wa.me deep link. The destination keeps digits only.
func URL(phone, message string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits.String(), url.QueryEscape(message))
}
