package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cloudkitchen/internal/cart"
	"cloudkitchen/internal/catalog"
)

// cartIDHeader carries the session cart id. The first mutation mints
// one; the client echoes it back on every later request.
const cartIDHeader = "X-Cart-ID"

type CartHandler struct {
	Carts   *cart.Store
	Catalog *catalog.Repo
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{itemID}", h.updateQuantity)
	r.Delete("/cart/items/{itemID}", h.removeItem)
	r.Delete("/cart", h.clearCart)
}

type cartResponse struct {
	CartID    string      `json:"cart_id"`
	Items     []cart.Item `json:"items"`
	Total     int64       `json:"total"`
	ItemCount int         `json:"item_count"`
}

func cartView(cartID string, c *cart.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{CartID: cartID, Items: items, Total: c.Total(), ItemCount: c.ItemCount()}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	cartID := r.Header.Get(cartIDHeader)
	if cartID == "" {
		writeJSON(w, http.StatusOK, cartView("", &cart.Cart{}))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Carts.Get(ctx, cartID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, cartView(cartID, c))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := h.Catalog.Get(ctx, req.ItemID)
	if errors.Is(err, catalog.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	if !it.Availability {
		writeError(w, http.StatusConflict, "item is not available")
		return
	}

	cartID := r.Header.Get(cartIDHeader)
	if cartID == "" {
		cartID = uuid.NewString()
	}
	c, err := h.Carts.Get(ctx, cartID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	c.Add(it)
	if err := h.Carts.Save(ctx, cartID, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}
	writeJSON(w, http.StatusOK, cartView(cartID, c))
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.mutate(w, r, func(c *cart.Cart) {
		c.UpdateQuantity(chi.URLParam(r, "itemID"), req.Quantity)
	})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *cart.Cart) {
		c.Remove(chi.URLParam(r, "itemID"))
	})
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *cart.Cart) { c.Clear() })
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*cart.Cart)) {
	cartID := r.Header.Get(cartIDHeader)
	if cartID == "" {
		writeError(w, http.StatusBadRequest, "missing "+cartIDHeader+" header")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Get(ctx, cartID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	fn(c)
	if err := h.Carts.Save(ctx, cartID, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}
	writeJSON(w, http.StatusOK, cartView(cartID, c))
}
