package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 160, B: 90, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "site.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestPNG(t, 64, 48)

	bg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, bg.Path)
	assert.Equal(t, 64, bg.Width())
	assert.Equal(t, 48, bg.Height())
	assert.True(t, bg.Visible)
	assert.Equal(t, 1.0, bg.Opacity)
	assert.Zero(t, bg.DPI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestLoadNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestIsSupportedFormat(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"site.png", true},
		{"site.PNG", true},
		{"plan.tif", true},
		{"plan.tiff", true},
		{"photo.jpeg", true},
		{"photo.bmp", true},
		{"notes.txt", false},
		{"archive.zip", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupportedFormat(tt.path), tt.path)
	}
}
