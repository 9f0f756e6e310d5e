package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cloudkitchen/internal/catalog"
	"cloudkitchen/internal/checkout"
	"cloudkitchen/internal/orders"
	"cloudkitchen/internal/settings"
)

type AdminHandler struct {
	Auth     *AdminAuth
	Orders   *orders.Repo
	Catalog  *catalog.Repo
	Settings *settings.Repo
	QR       *settings.QRStore
	Checkout *checkout.Service
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/login", h.Auth.login)

		ar.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Middleware)
			pr.Post("/logout", h.Auth.logout)

			pr.Get("/orders", h.listOrders)
			pr.Patch("/orders/{orderID}", h.overrideStatus)

			pr.Get("/menu", h.listMenu)
			pr.Post("/menu", h.createItem)
			pr.Patch("/menu/{itemID}", h.updateItem)
			pr.Put("/menu/{itemID}/availability", h.setAvailability)
			pr.Delete("/menu/{itemID}", h.deleteItem)

			pr.Get("/settings", h.getSettings)
			pr.Put("/settings", h.updateSettings)
			pr.Post("/settings/qr", h.uploadQR)
		})
	})
}

// listOrders returns all orders newest first; ?status= narrows to one.
func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	var status orders.Status
	if q := r.URL.Query().Get("status"); q != "" && q != "all" {
		status = orders.Status(q)
		if !orders.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.List(ctx, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

// overrideStatus moves an order to any status, forward or backward.
// Operational correction; the customer-facing state machine does not
// apply here.
func (h *AdminHandler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !orders.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Checkout.OverrideStatus(ctx, chi.URLParam(r, "orderID"), req.Status)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (h *AdminHandler) listMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.Catalog.ListAll(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list menu")
		return
	}
	if items == nil {
		items = []catalog.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var it catalog.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Catalog.Create(ctx, it)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var upd catalog.MenuItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := h.Catalog.Update(ctx, chi.URLParam(r, "itemID"), upd)
	if errors.Is(err, catalog.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *AdminHandler) setAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Availability bool `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Catalog.SetAvailability(ctx, chi.URLParam(r, "itemID"), req.Availability)
	if errors.Is(err, catalog.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update availability")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Catalog.Delete(ctx, chi.URLParam(r, "itemID"))
	if errors.Is(err, catalog.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AdminHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var s settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.Update(ctx, s); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// uploadQR stores the UPI QR image and records its public URL on the
// settings row in one step.
func (h *AdminHandler) uploadQR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer f.Close()

	url, err := h.QR.Save(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store qr image")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	s.UPIQRCode = url
	if err := h.Settings.Update(ctx, s); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"upi_qr_code": url})
}
