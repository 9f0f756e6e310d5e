package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrTotalMismatch   = errors.New("client total does not match catalog prices")
	ErrItemUnavailable = errors.New("item not available")
	ErrBadQuantity     = errors.New("invalid quantity")
	ErrStatusConflict  = errors.New("order status changed concurrently")
)

type Repo struct{ DB *pgxpool.Pool }

type CreateInput struct {
	Items           []ItemRequest
	ClientTotal     int64
	OrderType       OrderType
	PaymentMethod   PaymentMethod
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
}

type ItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CreateOrderTx persists a new order with frozen item snapshots.
// Idempotent via checkout token: a duplicate token returns the order it
// created before (existed=true) instead of inserting twice.
//
// The total is recomputed from menu_items inside the transaction; the
// client-sent total is only accepted when it matches exactly.
func (r *Repo) CreateOrderTx(ctx context.Context, token string, in CreateInput) (Order, bool, error) {
	var existingID string
	err := r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE checkout_token = $1`, token).Scan(&existingID)
	if err == nil {
		o, err := r.Get(ctx, existingID)
		return o, true, err
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return Order{}, false, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]any, 0, len(in.Items))
	params := ""
	for i, it := range in.Items {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		ids = append(ids, it.ItemID)
	}
	rows, err := tx.Query(ctx, `
		SELECT id, name, price FROM menu_items
		WHERE availability = true AND id IN (`+params+`)`, ids...)
	if err != nil {
		return Order{}, false, err
	}
	type priced struct {
		name  string
		price int64
	}
	prices := map[string]priced{}
	for rows.Next() {
		var id string
		var p priced
		if err := rows.Scan(&id, &p.name, &p.price); err != nil {
			return Order{}, false, err
		}
		prices[id] = p
	}
	if err := rows.Err(); err != nil {
		return Order{}, false, err
	}

	var total int64
	items := make([]OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p, ok := prices[it.ItemID]
		if !ok {
			return Order{}, false, fmt.Errorf("%w: %s", ErrItemUnavailable, it.ItemID)
		}
		if it.Quantity <= 0 {
			return Order{}, false, fmt.Errorf("%w: item %s", ErrBadQuantity, it.ItemID)
		}
		total += p.price * int64(it.Quantity)
		items = append(items, OrderItem{ItemID: it.ItemID, Name: p.name, Price: p.price, Quantity: it.Quantity})
	}
	if in.ClientTotal != total {
		return Order{}, false, ErrTotalMismatch
	}

	o := Order{
		ID:              "ORD-" + uuid.NewString(),
		Items:           items,
		Total:           total,
		OrderType:       in.OrderType,
		PaymentMethod:   in.PaymentMethod,
		Status:          StatusNew,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			id, checkout_token, total, order_type, payment_method, status,
			customer_name, customer_phone, customer_address
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), NULLIF($8,''), NULLIF($9,''))
		RETURNING created_at, updated_at`,
		o.ID, token, o.Total, o.OrderType, o.PaymentMethod, o.Status,
		o.CustomerName, o.CustomerPhone, o.CustomerAddress,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, false, err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, item_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			o.ID, it.ItemID, it.Name, it.Price, it.Quantity); err != nil {
			return Order{}, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, false, err
	}
	return o, false, nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, total, order_type, payment_method, status,
		       COALESCE(customer_name, ''), COALESCE(customer_phone, ''), COALESCE(customer_address, ''),
		       created_at, updated_at
		FROM orders WHERE id = $1`, orderID,
	).Scan(&o.ID, &o.Total, &o.OrderType, &o.PaymentMethod, &o.Status,
		&o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Items, err = r.itemsFor(ctx, orderID)
	return o, err
}

func (r *Repo) itemsFor(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT item_id, name, price, quantity FROM order_items
		WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ItemID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List returns orders newest first; an empty status means all.
func (r *Repo) List(ctx context.Context, status Status) ([]Order, error) {
	q := `
		SELECT id, total, order_type, payment_method, status,
		       COALESCE(customer_name, ''), COALESCE(customer_phone, ''), COALESCE(customer_address, ''),
		       created_at, updated_at
		FROM orders`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Total, &o.OrderType, &o.PaymentMethod, &o.Status,
			&o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.itemsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// Transition moves an order from one status to another atomically.
// The WHERE clause on the current status makes concurrent customer
// confirmations lose cleanly instead of double-applying.
func (r *Repo) Transition(ctx context.Context, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`, orderID, from, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.Get(ctx, orderID); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

// OverrideStatus sets any status directly. Operational correction for
// admins; deliberately not constrained by the lifecycle table.
func (r *Repo) OverrideStatus(ctx context.Context, orderID string, to Status) (Status, error) {
	if !ValidStatus(to) {
		return "", fmt.Errorf("invalid status: %s", to)
	}
	var from Status
	err := r.DB.QueryRow(ctx, `
		UPDATE orders o SET status = $2, updated_at = now()
		FROM (SELECT id, status FROM orders WHERE id = $1) prev
		WHERE o.id = prev.id
		RETURNING prev.status`, orderID, to).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return from, err
}
