package orders

import "time"

type OrderType string

const (
	TypeDelivery OrderType = "delivery"
	TypePickup   OrderType = "pickup"
)

func ValidOrderType(t OrderType) bool {
	return t == TypeDelivery || t == TypePickup
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCOD || m == PaymentOnline
}

// OrderItem is a frozen copy of the menu item at order time. Catalog
// edits after checkout never touch these rows.
type OrderItem struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID              string        `json:"id"`
	Items           []OrderItem   `json:"items"`
	Total           int64         `json:"total"`
	OrderType       OrderType     `json:"order_type"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Status          Status        `json:"status"`
	CustomerName    string        `json:"customer_name,omitempty"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	CustomerAddress string        `json:"customer_address,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
