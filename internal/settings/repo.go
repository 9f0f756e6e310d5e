// Package settings holds the single kitchen configuration row: name,
// WhatsApp destination and UPI payment details.
package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The settings row lives under a fixed primary key so there is never a
// "most recently updated" read and never a second authoritative row.
const singletonID = 1

var ErrIncomplete = errors.New("kitchen settings incomplete: no whatsapp number configured")

type Settings struct {
	KitchenName    string `json:"kitchen_name"`
	WhatsAppNumber string `json:"whatsapp_number"`
	UPIID          string `json:"upi_id"`
	UPIQRCode      string `json:"upi_qr_code,omitempty"`
}

// Complete reports whether the payment screen can actually be served.
// A payment screen with no way to reach the kitchen is a failure state.
func (s Settings) Complete() bool {
	return s.WhatsAppNumber != ""
}

func Defaults() Settings {
	return Settings{
		KitchenName:    "Cloud Kitchen",
		WhatsAppNumber: "",
		UPIID:          "",
	}
}

type Repo struct{ DB *pgxpool.Pool }

// Get returns the singleton row, lazily creating it with defaults on
// first access. ON CONFLICT DO NOTHING means two concurrent first reads
// insert exactly one row between them.
func (r *Repo) Get(ctx context.Context) (Settings, error) {
	def := Defaults()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO admin_settings (id, kitchen_name, whatsapp_number, upi_id, upi_qr_code)
		VALUES ($1, $2, $3, $4, NULL)
		ON CONFLICT (id) DO NOTHING`,
		singletonID, def.KitchenName, def.WhatsAppNumber, def.UPIID)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	err = r.DB.QueryRow(ctx, `
		SELECT kitchen_name, whatsapp_number, upi_id, COALESCE(upi_qr_code, '')
		FROM admin_settings WHERE id = $1`, singletonID,
	).Scan(&s.KitchenName, &s.WhatsAppNumber, &s.UPIID, &s.UPIQRCode)
	return s, err
}

// Update upserts the singleton row in place.
func (r *Repo) Update(ctx context.Context, s Settings) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO admin_settings (id, kitchen_name, whatsapp_number, upi_id, upi_qr_code, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), now())
		ON CONFLICT (id) DO UPDATE SET
			kitchen_name    = $2,
			whatsapp_number = $3,
			upi_id          = $4,
			upi_qr_code     = NULLIF($5, ''),
			updated_at      = now()`,
		singletonID, s.KitchenName, s.WhatsAppNumber, s.UPIID, s.UPIQRCode)
	return err
}
