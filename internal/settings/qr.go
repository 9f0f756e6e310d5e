package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// qrFileName is the fixed logical name; re-uploading replaces the prior
// image, so the stored URL stays stable.
const qrFileName = "upi-qr.png"

// QRStore writes the uploaded QR image to local disk and serves it via
// the api binary's /uploads/ route. No object-storage service in play.
type QRStore struct {
	Dir     string
	BaseURL string
}

// Save overwrites the QR image and returns its public URI.
func (q *QRStore) Save(r io.Reader) (string, error) {
	if err := os.MkdirAll(q.Dir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	dst := filepath.Join(q.Dir, qrFileName)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create qr file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write qr file: %w", err)
	}
	return q.BaseURL + "/uploads/" + qrFileName, nil
}
