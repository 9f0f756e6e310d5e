package catalog

import "time"

type Cuisine string

const (
	CuisineChinese Cuisine = "chinese"
	CuisineBiryani Cuisine = "biryani"
)

func ValidCuisine(c Cuisine) bool {
	return c == CuisineChinese || c == CuisineBiryani
}

// MenuItem prices are whole rupees; there is no minor unit.
type MenuItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	Cuisine      Cuisine   `json:"cuisine"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Availability bool      `json:"availability"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MenuItemUpdate carries a partial edit; nil fields are left untouched.
type MenuItemUpdate struct {
	Name         *string  `json:"name"`
	Price        *int64   `json:"price"`
	Cuisine      *Cuisine `json:"cuisine"`
	Category     *string  `json:"category"`
	Image        *string  `json:"image"`
	Availability *bool    `json:"availability"`
	Description  *string  `json:"description"`
}
