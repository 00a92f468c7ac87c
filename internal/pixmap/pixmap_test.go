package pixmap

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoadWidthKeepsAspectRatio(t *testing.T) {
	path := writePNG(t, 20, 40, color.RGBA{R: 200, A: 255})
	img := LoadWidth(path, 10, nil)
	require.False(t, img.Placeholder())
	require.Equal(t, 10, img.Width())
	require.Equal(t, 10, img.Height()) // 20 px tall, two pixels per row
	require.InDelta(t, 200, int(img.At(5, 5).R), 2)
}

func TestLoadHeight(t *testing.T) {
	path := writePNG(t, 30, 30, color.Black)
	img := LoadHeight(path, 4, nil)
	require.Equal(t, 4, img.Height())
	require.Equal(t, 8, img.Width())
}

func TestMissingFileFallsBackToPlaceholder(t *testing.T) {
	img := LoadWidth(filepath.Join(t.TempDir(), "nope.png"), 6, nil)
	require.True(t, img.Placeholder())
	require.Equal(t, 6, img.Width())
	require.Equal(t, 3, img.Height())

	img = LoadHeight(filepath.Join(t.TempDir(), "nope.png"), 2, nil)
	require.Equal(t, 2, img.Height())
}

func TestRenderOpacity(t *testing.T) {
	path := writePNG(t, 2, 2, color.Black)
	img := LoadWidth(path, 2, nil)

	opaque := img.Render()
	require.Equal(t, 2, strings.Count(opaque, halfBlock))
	require.Contains(t, opaque, "38;2;0;0;0m", "uniform black must stay black")

	faded := img.RenderOpacity(0)
	require.NotContains(t, faded, "38;2;0;0;0m")
	require.Contains(t, faded, "38;2;255;255;255m")

	require.Equal(t, opaque, LoadWidth(path, 2, nil).Render())
}

func TestNilImageIsSafe(t *testing.T) {
	var img *Image
	require.Equal(t, 0, img.Width())
	require.Equal(t, "", img.Render())
	require.False(t, img.Placeholder())
}
