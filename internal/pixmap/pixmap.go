// Package pixmap loads poster, portrait and QR-code rasters and renders them
// as half-block truecolor text. One terminal cell holds two vertical pixels.
package pixmap

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

const halfBlock = "▀"

// Background is the colour the display fades from.
var Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

var placeholderFill = color.RGBA{R: 210, G: 210, B: 210, A: 255}

// Image is a decoded raster scaled to its on-screen geometry.
type Image struct {
	Source string
	px     *image.RGBA
	cached string
}

// Width is the width in cells.
func (i *Image) Width() int {
	if i == nil || i.px == nil {
		return 0
	}
	return i.px.Bounds().Dx()
}

// Height is the height in rows.
func (i *Image) Height() int {
	if i == nil || i.px == nil {
		return 0
	}
	return (i.px.Bounds().Dy() + 1) / 2
}

// Placeholder reports whether the image was generated rather than decoded.
func (i *Image) Placeholder() bool { return i != nil && i.Source == "" }

// LoadWidth decodes path and scales it to the given width in cells, keeping
// the aspect ratio.
func LoadWidth(path string, width int, log *slog.Logger) *Image {
	src, err := decode(path)
	if err != nil {
		logger(log).Warn("could not load image, using placeholder", "path", path, "err", err)
		return Placeholder(width, width/2)
	}
	b := src.Bounds()
	if width <= 0 || b.Dx() == 0 {
		return Placeholder(width, width/2)
	}
	h := (b.Dy()*width + b.Dx()/2) / b.Dx()
	logger(log).Debug("loading image data", "path", path, "width", width)
	return &Image{Source: path, px: scale(src, width, h)}
}

// LoadHeight decodes path and scales it to the given height in rows, keeping
// the aspect ratio.
func LoadHeight(path string, rows int, log *slog.Logger) *Image {
	src, err := decode(path)
	if err != nil {
		logger(log).Warn("could not load image, using placeholder", "path", path, "err", err)
		return Placeholder(rows*2, rows)
	}
	b := src.Bounds()
	if rows <= 0 || b.Dy() == 0 {
		return Placeholder(rows*2, rows)
	}
	h := rows * 2
	w := (b.Dx()*h + b.Dy()/2) / b.Dy()
	logger(log).Debug("loading image data", "path", path, "rows", rows)
	return &Image{Source: path, px: scale(src, w, h)}
}

// Placeholder returns a flat grey image of width cells and rows rows.
func Placeholder(width, rows int) *Image {
	if width < 1 {
		width = 1
	}
	if rows < 1 {
		rows = 1
	}
	px := image.NewRGBA(image.Rect(0, 0, width, rows*2))
	draw.Draw(px, px.Bounds(), image.NewUniform(placeholderFill), image.Point{}, draw.Src)
	return &Image{px: px}
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func scale(src image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// At returns the colour of pixel (x, y) in image coordinates.
func (i *Image) At(x, y int) color.RGBA {
	if i == nil || i.px == nil {
		return Background
	}
	return i.px.RGBAAt(x, y)
}

// Render draws the image at full opacity.
func (i *Image) Render() string {
	if i == nil || i.px == nil {
		return ""
	}
	if i.cached == "" {
		i.cached = i.RenderOpacity(1)
	}
	return i.cached
}

// RenderOpacity draws the image blended over the background; 0 is fully
// transparent and 1 fully opaque.
func (i *Image) RenderOpacity(opacity float64) string {
	if i == nil || i.px == nil {
		return ""
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	b := i.px.Bounds()
	var sb strings.Builder
	sb.Grow(b.Dx() * b.Dy() * 20)
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := blend(i.px.RGBAAt(x, y), opacity)
			bottom := Background
			if y+1 < b.Max.Y {
				bottom = blend(i.px.RGBAAt(x, y+1), opacity)
			}
			writeCell(&sb, top, bottom)
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

func blend(c color.RGBA, opacity float64) color.RGBA {
	mix := func(fg, bg uint8) uint8 {
		return uint8(float64(bg) + (float64(fg)-float64(bg))*opacity + 0.5)
	}
	return color.RGBA{
		R: mix(c.R, Background.R),
		G: mix(c.G, Background.G),
		B: mix(c.B, Background.B),
		A: 255,
	}
}

func writeCell(sb *strings.Builder, fg, bg color.RGBA) {
	sb.WriteString("\x1b[38;2;")
	writeRGB(sb, fg)
	sb.WriteString("m\x1b[48;2;")
	writeRGB(sb, bg)
	sb.WriteString("m")
	sb.WriteString(halfBlock)
}

func writeRGB(sb *strings.Builder, c color.RGBA) {
	sb.WriteString(strconv.Itoa(int(c.R)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.G)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.B)))
}
