package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cloudkitchen/internal/catalog"
)

type MenuHandler struct {
	Catalog *catalog.Repo
}

func (h *MenuHandler) Register(r *chi.Mux) {
	r.Get("/menu", h.listMenu)
}

// listMenu serves the customer menu for one cuisine: available items
// only, oldest first.
func (h *MenuHandler) listMenu(w http.ResponseWriter, r *http.Request) {
	cuisine := catalog.Cuisine(r.URL.Query().Get("cuisine"))
	if !catalog.ValidCuisine(cuisine) {
		writeError(w, http.StatusBadRequest, "cuisine must be chinese or biryani")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Catalog.ListByCuisine(ctx, cuisine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}
	if items == nil {
		items = []catalog.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
