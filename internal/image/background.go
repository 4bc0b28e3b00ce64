// Package image loads the background site image the user traces over.
package image

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Background is the aerial photo or scanned site plan rendered under
// the drawing layer. It is opaque to the rest of the tool: shapes are
// traced over it but never derived from it.
type Background struct {
	Path    string
	Image   image.Image
	DPI     float64 // from TIFF metadata when present, else 0
	Visible bool
	Opacity float64 // 0.0 - 1.0
}

// Load decodes the image at path into a Background.
func Load(path string) (*Background, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bg := &Background{
		Path:    path,
		Image:   img,
		Visible: true,
		Opacity: 1.0,
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := extractTIFFDPI(path); err == nil {
			bg.DPI = dpi
		}
	}

	return bg, nil
}

func (b *Background) Width() int {
	if b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

func (b *Background) Height() int {
	if b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dy()
}

// extractTIFFDPI reads the resolution tags from a TIFF header. Scanned
// site plans often carry them; the value is shown to the user as an
// aid when establishing the scale reference.
func extractTIFFDPI(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	header := make([]byte, 8)
	if _, err := file.Read(header); err != nil {
		return 0, err
	}

	var byteOrder binary.ByteOrder
	if header[0] == 'I' && header[1] == 'I' {
		byteOrder = binary.LittleEndian
	} else if header[0] == 'M' && header[1] == 'M' {
		byteOrder = binary.BigEndian
	} else {
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	ifdOffset := byteOrder.Uint32(header[4:8])
	if _, err := file.Seek(int64(ifdOffset), 0); err != nil {
		return 0, err
	}

	var numEntries uint16
	if err := binary.Read(file, byteOrder, &numEntries); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	var resUnit uint16 = 2 // inches

	for i := uint16(0); i < numEntries; i++ {
		entry := make([]byte, 12)
		if _, err := file.Read(entry); err != nil {
			return 0, err
		}

		tag := byteOrder.Uint16(entry[0:2])
		fieldType := byteOrder.Uint16(entry[2:4])
		valueOffset := byteOrder.Uint32(entry[8:12])

		switch tag {
		case 282: // XResolution
			if fieldType == 5 { // RATIONAL
				xRes = readTIFFRational(file, int64(valueOffset), byteOrder)
			}
		case 283: // YResolution
			if fieldType == 5 {
				yRes = readTIFFRational(file, int64(valueOffset), byteOrder)
			}
		case 296: // ResolutionUnit
			if fieldType == 3 { // SHORT
				resUnit = uint16(valueOffset)
			}
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if resUnit == 3 {
		dpi *= 2.54
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	return dpi, nil
}

func readTIFFRational(file *os.File, offset int64, byteOrder binary.ByteOrder) float64 {
	currentPos, _ := file.Seek(0, 1)
	defer file.Seek(currentPos, 0)

	file.Seek(offset, 0)
	var num, denom uint32
	binary.Read(file, byteOrder, &num)
	binary.Read(file, byteOrder, &denom)

	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

// SupportedFormats returns the accepted background image extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".bmp"}
}

// IsSupportedFormat checks whether path has a supported extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a filter string for file open dialogs.
func FileFilter() string {
	return "Image Files (*.tiff, *.tif, *.png, *.jpg, *.jpeg, *.bmp)"
}
