package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cloudkitchen/internal/checkout"
	"cloudkitchen/internal/orders"
	"cloudkitchen/internal/settings"
	"cloudkitchen/internal/whatsapp"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders/{orderID}/status", h.orderStatus)
	r.Get("/payment/{orderID}", h.paymentPage)
	r.Post("/payment/{orderID}/confirm", h.confirmPayment)
}

type checkoutRequest struct {
	Token           string               `json:"token"`
	OrderType       orders.OrderType     `json:"order_type"`
	PaymentMethod   orders.PaymentMethod `json:"payment_method"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerAddress string               `json:"customer_address"`
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	cartID := r.Header.Get(cartIDHeader)
	if cartID == "" {
		writeError(w, http.StatusBadRequest, "missing "+cartIDHeader+" header")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.Checkout(ctx, cartID, checkout.Input{
		Token:           req.Token,
		OrderType:       req.OrderType,
		PaymentMethod:   req.PaymentMethod,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	var fe *checkout.FieldError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": fe.Msg, "field": fe.Field})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, orders.ErrTotalMismatch),
		errors.Is(err, orders.ErrItemUnavailable),
		errors.Is(err, orders.ErrBadQuantity):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, settings.ErrIncomplete):
		writeError(w, http.StatusConflict, "kitchen is not configured for orders yet, please contact support")
	default:
		writeError(w, http.StatusInternalServerError, "failed to place order, please try again")
	}
}

type paymentPageResponse struct {
	Order       orders.Order `json:"order"`
	TotalText   string       `json:"total_text"`
	KitchenName string       `json:"kitchen_name"`
	UPIID       string       `json:"upi_id"`
	UPIQRCode   string       `json:"upi_qr_code,omitempty"`
}

// paymentPage serves the manual UPI confirmation screen. An unknown
// order id is a navigation error: redirect to the storefront root
// rather than rendering a broken payment screen.
func (h *CheckoutHandler) paymentPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, st, err := h.Checkout.PaymentPage(ctx, chi.URLParam(r, "orderID"))
	if errors.Is(err, orders.ErrNotFound) || errors.Is(err, checkout.ErrNotAwaitingPayment) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if errors.Is(err, settings.ErrIncomplete) {
		writeError(w, http.StatusConflict, "payment settings not configured, please contact support")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load payment details")
		return
	}
	writeJSON(w, http.StatusOK, paymentPageResponse{
		Order:       o,
		TotalText:   whatsapp.FormatCurrency(o.Total),
		KitchenName: st.KitchenName,
		UPIID:       st.UPIID,
		UPIQRCode:   st.UPIQRCode,
	})
}

// confirmPayment records the customer's "I have paid" assertion. This
// is trust-based: no gateway verifies it.
func (h *CheckoutHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.ConfirmPayment(ctx, chi.URLParam(r, "orderID"), r.Header.Get(cartIDHeader))
	if errors.Is(err, orders.ErrNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if errors.Is(err, settings.ErrIncomplete) {
		writeError(w, http.StatusConflict, "payment settings not configured, please contact support")
		return
	}
	if errors.Is(err, checkout.ErrNotAwaitingPayment) {
		writeError(w, http.StatusConflict, "order is not awaiting payment")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to confirm payment, please try again")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// orderStatus is the customer's poll endpoint; reads are served from
// the Redis status cache when warm, with a store fallback that re-warms
// the cache.
func (h *CheckoutHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.Checkout.OrderStatus(ctx, chi.URLParam(r, "orderID"))
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": st})
}
