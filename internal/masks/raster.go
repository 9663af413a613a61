package masks

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Load decodes the raster at path into a single-channel image. Colour inputs
// are converted with the standard luma weights.
func Load(path string) (*image.Gray, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode mask %s: %w", path, err)
	}
	return toGray(img), nil
}

// Save encodes m at path in the format implied by its extension.
func Save(m *image.Gray, path string) error {
	if err := imaging.Save(m, path); err != nil {
		return fmt.Errorf("encode mask %s: %w", path, err)
	}
	return nil
}

func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
