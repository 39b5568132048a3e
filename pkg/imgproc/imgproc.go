// Package imgproc holds the image preprocessing used before recognition:
// decoding, grayscale conversion, global and adaptive binarization, and
// bounding box cropping.
package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrEmptyRegion = errors.New("region is empty after clamping to image bounds")

// Decode decodes any registered format and applies the EXIF orientation so
// phone photographs come out upright.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG is the lossless hand-off format for recognizers.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Grayscale uses the Rec. 601 luma weights.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+b.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// ClampRect intersects r with bounds.
func ClampRect(r image.Rectangle, bounds image.Rectangle) (image.Rectangle, error) {
	clamped := r.Canon().Intersect(bounds)
	if clamped.Empty() {
		return image.Rectangle{}, ErrEmptyRegion
	}
	return clamped, nil
}

// Crop returns the part of img inside r, clamped to the image bounds.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	clamped, err := ClampRect(r, img.Bounds())
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, clamped), nil
}
