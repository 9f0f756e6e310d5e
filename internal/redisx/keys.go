package redisx

import "time"

const (
	// Session cart blob: cart:{cart_id} -> JSON cart items
	KeyCart = "cart:%s"

	// Checkout idempotency: idem:checkout:{token} -> order_id
	KeyIdemCheckout = "idem:checkout:%s"

	// Order status cache: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Admin session token: admin_session:{token} -> "1"
	KeyAdminSession = "admin_session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart         = 24 * time.Hour
	TTLIdempotency  = 24 * time.Hour
	TTLStatusCache  = 5 * time.Minute
	TTLAdminSession = 12 * time.Hour
	TTLDedup        = 48 * time.Hour
)
