package program

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Asset folder names, relative to the asset root.
const (
	PosterFolder    = "posters_raster"
	PresenterFolder = "presenters_crop"
	QRCodeFolder    = "qrcodes"
)

// ImageFileName is the file name shared by all rasters of a poster, e.g. 003.png.
func ImageFileName(friendlyID int) string {
	return fmt.Sprintf("%03d.png", friendlyID)
}

// Assets resolves the raster files of a poster, falling back to the
// placeholder paths when a file does not exist.
type Assets struct {
	Root             string
	MissingPoster    string
	MissingPresenter string
	MissingQRCode    string
	Log              *slog.Logger
}

func (a *Assets) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}

func (a *Assets) resolve(friendlyID int, folder, fallback string, warn bool) string {
	path := filepath.Join(a.Root, folder, ImageFileName(friendlyID))
	if _, err := os.Stat(path); err != nil {
		if warn {
			a.logger().Warn("could not find asset", "path", path)
		}
		return fallback
	}
	return path
}

// PosterImagePath returns the poster raster or the missing-poster placeholder.
func (a *Assets) PosterImagePath(friendlyID int) string {
	return a.resolve(friendlyID, PosterFolder, a.MissingPoster, true)
}

// PresenterImagePath returns the presenter photo or its placeholder.
func (a *Assets) PresenterImagePath(friendlyID int) string {
	return a.resolve(friendlyID, PresenterFolder, a.MissingPresenter, true)
}

// QRCodeImagePath returns the QR code or its placeholder.
func (a *Assets) QRCodeImagePath(friendlyID int) string {
	return a.resolve(friendlyID, QRCodeFolder, a.MissingQRCode, true)
}

func (a *Assets) MissingPosterImage(friendlyID int) bool {
	return a.resolve(friendlyID, PosterFolder, a.MissingPoster, false) == a.MissingPoster
}

func (a *Assets) MissingPresenterImage(friendlyID int) bool {
	return a.resolve(friendlyID, PresenterFolder, a.MissingPresenter, false) == a.MissingPresenter
}

func (a *Assets) MissingQRCodeImage(friendlyID int) bool {
	return a.resolve(friendlyID, QRCodeFolder, a.MissingQRCode, false) == a.MissingQRCode
}
