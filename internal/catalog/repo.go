package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("menu item not found")

type Repo struct{ DB *pgxpool.Pool }

const itemCols = `id, name, price, cuisine, category, image, availability, COALESCE(description, ''), created_at, updated_at`

func scanItem(row pgx.Row) (MenuItem, error) {
	var it MenuItem
	err := row.Scan(&it.ID, &it.Name, &it.Price, &it.Cuisine, &it.Category,
		&it.Image, &it.Availability, &it.Description, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// ListByCuisine returns available items for the customer menu, oldest first.
func (r *Repo) ListByCuisine(ctx context.Context, cuisine Cuisine) ([]MenuItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+itemCols+` FROM menu_items
		WHERE cuisine = $1 AND availability = true
		ORDER BY created_at ASC`, cuisine)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListAll returns every item including unavailable ones (admin view).
func (r *Repo) ListAll(ctx context.Context) ([]MenuItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+itemCols+` FROM menu_items
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]MenuItem, error) {
	var out []MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (MenuItem, error) {
	it, err := scanItem(r.DB.QueryRow(ctx, `
		SELECT `+itemCols+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, ErrItemNotFound
	}
	return it, err
}

func (r *Repo) Create(ctx context.Context, it MenuItem) (MenuItem, error) {
	if it.Name == "" {
		return MenuItem{}, fmt.Errorf("name is required")
	}
	if it.Price <= 0 {
		return MenuItem{}, fmt.Errorf("price must be positive")
	}
	if !ValidCuisine(it.Cuisine) {
		return MenuItem{}, fmt.Errorf("invalid cuisine: %s", it.Cuisine)
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return scanItem(r.DB.QueryRow(ctx, `
		INSERT INTO menu_items (id, name, price, cuisine, category, image, availability, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING `+itemCols,
		it.ID, it.Name, it.Price, it.Cuisine, it.Category, it.Image, it.Availability, it.Description))
}

func (r *Repo) Update(ctx context.Context, id string, upd MenuItemUpdate) (MenuItem, error) {
	if upd.Price != nil && *upd.Price <= 0 {
		return MenuItem{}, fmt.Errorf("price must be positive")
	}
	if upd.Cuisine != nil && !ValidCuisine(*upd.Cuisine) {
		return MenuItem{}, fmt.Errorf("invalid cuisine: %s", *upd.Cuisine)
	}
	it, err := scanItem(r.DB.QueryRow(ctx, `
		UPDATE menu_items SET
			name         = COALESCE($2, name),
			price        = COALESCE($3, price),
			cuisine      = COALESCE($4, cuisine),
			category     = COALESCE($5, category),
			image        = COALESCE($6, image),
			availability = COALESCE($7, availability),
			description  = COALESCE($8, description),
			updated_at   = now()
		WHERE id = $1
		RETURNING `+itemCols,
		id, upd.Name, upd.Price, upd.Cuisine, upd.Category, upd.Image, upd.Availability, upd.Description))
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, ErrItemNotFound
	}
	return it, err
}

func (r *Repo) SetAvailability(ctx context.Context, id string, available bool) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE menu_items SET availability = $2, updated_at = now() WHERE id = $1`,
		id, available)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
