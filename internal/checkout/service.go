// Package checkout drives the order lifecycle: turning a session cart
// into a persisted order, branching on the payment method and handing
// the order off to the kitchen's WhatsApp.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"cloudkitchen/internal/cart"
	kafkax "cloudkitchen/internal/kafka"
	"cloudkitchen/internal/orders"
	"cloudkitchen/internal/redisx"
	"cloudkitchen/internal/settings"
	"cloudkitchen/internal/whatsapp"
)

var (
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotAwaitingPayment covers both wrong-method and wrong-status
	// hits on the payment flow: a COD order, or one already past new.
	ErrNotAwaitingPayment = errors.New("order is not awaiting payment")
)

// FieldError is a checkout validation failure the customer can fix.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

// OrderStore is the slice of orders.Repo the checkout flow needs.
type OrderStore interface {
	CreateOrderTx(ctx context.Context, token string, in orders.CreateInput) (orders.Order, bool, error)
	Get(ctx context.Context, orderID string) (orders.Order, error)
	Transition(ctx context.Context, orderID string, from, to orders.Status) error
	OverrideStatus(ctx context.Context, orderID string, to orders.Status) (orders.Status, error)
}

type CartStore interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	Delete(ctx context.Context, cartID string) error
}

type SettingsStore interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Cache is the slice of the Redis client used for idempotency keys and
// the order-status cache.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type Service struct {
	Orders        OrderStore
	Carts         CartStore
	Settings      SettingsStore
	Redis         Cache
	Placed        Publisher
	StatusChanged Publisher
	ServiceName   string
}

type Input struct {
	// Token is minted by the client per checkout attempt; resubmitting
	// the same token (double click, retry) returns the same order.
	Token           string
	OrderType       orders.OrderType
	PaymentMethod   orders.PaymentMethod
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
}

type Result struct {
	Order       orders.Order `json:"order"`
	WhatsAppURL string       `json:"whatsapp_url,omitempty"`
	PaymentURL  string       `json:"payment_url,omitempty"`
	Idempotent  bool         `json:"idempotent"`
}

// Validate enforces the checkout field policy uniformly: name and phone
// always, address only for delivery.
func Validate(in Input) error {
	if in.Token == "" {
		return &FieldError{Field: "token", Msg: "checkout token is required"}
	}
	if !orders.ValidOrderType(in.OrderType) {
		return &FieldError{Field: "order_type", Msg: "must be delivery or pickup"}
	}
	if !orders.ValidPaymentMethod(in.PaymentMethod) {
		return &FieldError{Field: "payment_method", Msg: "must be COD or ONLINE"}
	}
	if in.CustomerName == "" {
		return &FieldError{Field: "customer_name", Msg: "name is required"}
	}
	if in.CustomerPhone == "" {
		return &FieldError{Field: "customer_phone", Msg: "phone is required"}
	}
	if in.OrderType == orders.TypeDelivery && in.CustomerAddress == "" {
		return &FieldError{Field: "customer_address", Msg: "address is required for delivery"}
	}
	return nil
}

// Checkout persists the order and decides the downstream hand-off.
// COD clears the cart and returns the WhatsApp link; ONLINE keeps the
// cart and returns the payment page URL. On any failure the cart stays
// untouched so the customer can retry.
func (s *Service) Checkout(ctx context.Context, cartID string, in Input) (Result, error) {
	c, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		return Result{}, fmt.Errorf("load cart: %w", err)
	}
	if c.Empty() {
		return Result{}, ErrEmptyCart
	}
	if err := Validate(in); err != nil {
		return Result{}, err
	}

	items := make([]orders.ItemRequest, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, orders.ItemRequest{ItemID: it.ID, Quantity: it.Quantity})
	}
	create := orders.CreateInput{
		Items:           items,
		ClientTotal:     c.Total(),
		OrderType:       in.OrderType,
		PaymentMethod:   in.PaymentMethod,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
	}

	o, existed, err := s.createWithRetry(ctx, in.Token, create)
	if err != nil {
		return Result{}, err
	}

	idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, in.Token)
	_ = s.Redis.Set(ctx, idemKey, o.ID, redisx.TTLIdempotency).Err()
	s.cacheStatus(ctx, o.ID, o.Status)

	if !existed {
		s.publishPlaced(ctx, o)
	}

	res := Result{Order: o, Idempotent: existed}
	if in.PaymentMethod == orders.PaymentOnline {
		// Cart survives until the customer asserts payment.
		res.PaymentURL = "/payment/" + o.ID
		return res, nil
	}

	st, err := s.Settings.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load settings: %w", err)
	}
	if !st.Complete() {
		return Result{}, settings.ErrIncomplete
	}
	res.WhatsAppURL = whatsapp.URL(st.WhatsAppNumber, whatsapp.FormatOrderSummary(o, st.KitchenName))
	if err := s.Carts.Delete(ctx, cartID); err != nil {
		log.Printf("clear cart %s: %v", cartID, err)
	}
	return res, nil
}

// createWithRetry retries the insert once for transient store failures.
// Domain rejections (stale cart, tampered total) are final.
func (s *Service) createWithRetry(ctx context.Context, token string, in orders.CreateInput) (orders.Order, bool, error) {
	o, existed, err := s.Orders.CreateOrderTx(ctx, token, in)
	if err == nil || !retryable(err) {
		return o, existed, err
	}
	log.Printf("create order: retrying after transient error: %v", err)
	return s.Orders.CreateOrderTx(ctx, token, in)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, orders.ErrTotalMismatch),
		errors.Is(err, orders.ErrItemUnavailable),
		errors.Is(err, orders.ErrBadQuantity),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// PaymentPage loads what the payment screen needs. A missing order is
// a navigation error (caller redirects to the storefront root); missing
// payment configuration is an operator problem surfaced as ErrIncomplete.
// Only ONLINE orders still in new (or just-confirmed accepted) state
// get a payment screen; anything else is ErrNotAwaitingPayment.
func (s *Service) PaymentPage(ctx context.Context, orderID string) (orders.Order, settings.Settings, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return orders.Order{}, settings.Settings{}, err
	}
	if o.PaymentMethod != orders.PaymentOnline {
		return orders.Order{}, settings.Settings{}, fmt.Errorf("%w: order %s is %s", ErrNotAwaitingPayment, o.ID, o.PaymentMethod)
	}
	switch o.Status {
	case orders.StatusNew, orders.StatusAccepted:
	default:
		return orders.Order{}, settings.Settings{}, fmt.Errorf("%w: order %s is %s", ErrNotAwaitingPayment, o.ID, o.Status)
	}
	st, err := s.Settings.Get(ctx)
	if err != nil {
		return orders.Order{}, settings.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if !st.Complete() {
		return orders.Order{}, settings.Settings{}, settings.ErrIncomplete
	}
	return o, st, nil
}

// ConfirmPayment records the customer's claim of having paid. Nothing
// verifies the payment; the system only moves the order to accepted and
// hands off to WhatsApp. Re-confirming an already accepted order is a
// no-op that returns the hand-off link again.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, cartID string) (Result, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	st, err := s.Settings.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load settings: %w", err)
	}
	if !st.Complete() {
		return Result{}, settings.ErrIncomplete
	}

	switch o.Status {
	case orders.StatusNew:
		err := s.Orders.Transition(ctx, orderID, orders.StatusNew, orders.StatusAccepted)
		switch {
		case err == nil:
			s.publishStatusChanged(ctx, orderID, orders.StatusNew, orders.StatusAccepted, false)
			o.Status = orders.StatusAccepted
		case errors.Is(err, orders.ErrStatusConflict):
			// Lost a race with a competing writer. That writer is not
			// necessarily another confirmation: an admin override may
			// have cancelled or completed the order in the same window,
			// so only proceed when the re-read actually shows accepted.
			cur, err := s.Orders.Get(ctx, orderID)
			if err != nil {
				return Result{}, err
			}
			if cur.Status != orders.StatusAccepted {
				return Result{}, fmt.Errorf("%w: order %s is %s", ErrNotAwaitingPayment, orderID, cur.Status)
			}
			o = cur
		default:
			return Result{}, err
		}
		s.cacheStatus(ctx, orderID, orders.StatusAccepted)
	case orders.StatusAccepted:
		// already confirmed
	default:
		return Result{}, fmt.Errorf("%w: order %s is %s", ErrNotAwaitingPayment, orderID, o.Status)
	}

	res := Result{
		Order:       o,
		WhatsAppURL: whatsapp.URL(st.WhatsAppNumber, whatsapp.FormatOrderSummary(o, st.KitchenName)),
	}
	if cartID != "" {
		if err := s.Carts.Delete(ctx, cartID); err != nil {
			log.Printf("clear cart %s: %v", cartID, err)
		}
	}
	return res, nil
}

// OrderStatus serves status reads through the Redis cache, falling back
// to the store and re-warming the cache on a miss.
func (s *Service) OrderStatus(ctx context.Context, orderID string) (orders.Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if raw, err := s.Redis.Get(ctx, key).Result(); err == nil && raw != "" {
		var v struct {
			Status orders.Status `json:"status"`
		}
		if json.Unmarshal([]byte(raw), &v) == nil && orders.ValidStatus(v.Status) {
			return v.Status, nil
		}
	}

	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, o.ID, o.Status)
	return o.Status, nil
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, st orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = s.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, st), redisx.TTLStatusCache).Err()
}

func (s *Service) publishPlaced(ctx context.Context, o orders.Order) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.ID,
	}
	ev.Payload = kafkax.MustMarshal(orders.OrderPlacedPayload{
		OrderID:       o.ID,
		Items:         o.Items,
		Total:         o.Total,
		OrderType:     o.OrderType,
		PaymentMethod: o.PaymentMethod,
	})
	s.Placed.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishStatusChanged(ctx context.Context, orderID string, from, to orders.Status, override bool) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
	}
	ev.Payload = kafkax.MustMarshal(orders.OrderStatusChangedPayload{
		OrderID: orderID, From: from, To: to, Override: override,
	})
	s.StatusChanged.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// OverrideStatus is the admin path: any status, any direction, the
// lifecycle table deliberately not consulted.
func (s *Service) OverrideStatus(ctx context.Context, orderID string, to orders.Status) error {
	from, err := s.Orders.OverrideStatus(ctx, orderID, to)
	if err != nil {
		return err
	}
	s.cacheStatus(ctx, orderID, to)
	s.publishStatusChanged(ctx, orderID, from, to, true)
	return nil
}
