package indico

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

// QRCodeSize is the side of the generated images in pixels.
const QRCodeSize = 256

// WriteQRCode encodes data as a borderless PNG at path. Existing files are
// kept unless overwrite is set; the returned bool reports a write.
func WriteQRCode(data, path string, overwrite bool, log *slog.Logger) (bool, error) {
	log = orDefault(log)
	if _, err := os.Stat(path); err == nil && !overwrite {
		log.Info("file exists, skipping", "path", path)
		return false, nil
	}
	log.Info("generating QR code", "data", data)
	q, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return false, err
	}
	q.DisableBorder = true
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := q.WriteFile(QRCodeSize, path); err != nil {
		return false, err
	}
	return true, nil
}

// WriteQRCodes writes one QR code per contribution url into dir, named like
// the other poster assets.
func (c *Conference) WriteQRCodes(dir string, overwrite bool, log *slog.Logger) (int, error) {
	written := 0
	for _, s := range c.Sessions {
		for _, contrib := range s.Contributions {
			if contrib.URL == "" {
				orDefault(log).Warn("contribution without url", "contribution", int(contrib.ID))
				continue
			}
			path := filepath.Join(dir, program.ImageFileName(int(contrib.ID)))
			ok, err := WriteQRCode(contrib.URL, path, overwrite, log)
			if err != nil {
				return written, err
			}
			if ok {
				written++
			}
		}
	}
	return written, nil
}
