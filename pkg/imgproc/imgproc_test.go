package imgproc

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitImage(w, h int, left, right uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := left
			if x >= w/2 {
				v = right
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestDecodeRoundTrip(t *testing.T) {
	src := splitImage(20, 10, 30, 220)
	data, err := EncodePNG(src)
	require.NoError(t, err)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
}

// exifJPEG encodes img as a JPEG carrying an EXIF orientation tag.
func exifJPEG(t *testing.T, img image.Image, orientation uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	data := buf.Bytes()

	var exif bytes.Buffer
	exif.WriteString("Exif\x00\x00")
	exif.WriteString("MM\x00\x2a")
	_ = binary.Write(&exif, binary.BigEndian, uint32(8))
	_ = binary.Write(&exif, binary.BigEndian, uint16(1))
	_ = binary.Write(&exif, binary.BigEndian, uint16(0x0112))
	_ = binary.Write(&exif, binary.BigEndian, uint16(3))
	_ = binary.Write(&exif, binary.BigEndian, uint32(1))
	_ = binary.Write(&exif, binary.BigEndian, orientation)
	_ = binary.Write(&exif, binary.BigEndian, uint16(0))
	_ = binary.Write(&exif, binary.BigEndian, uint32(0))

	var out bytes.Buffer
	out.Write(data[:2])
	out.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&out, binary.BigEndian, uint16(exif.Len()+2))
	out.Write(exif.Bytes())
	out.Write(data[2:])
	return out.Bytes()
}

func TestDecodeAppliesExifOrientation(t *testing.T) {
	src := splitImage(40, 20, 30, 220)

	upright, err := Decode(exifJPEG(t, src, 1))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), upright.Bounds())

	rotated, err := Decode(exifJPEG(t, src, 6))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 40), rotated.Bounds())

	// orientation 6 turns the dark left half into the top half
	gray := Grayscale(rotated)
	assert.Less(t, gray.GrayAt(10, 5).Y, uint8(100))
	assert.Greater(t, gray.GrayAt(10, 35).Y, uint8(150))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestGrayscaleOfColorImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})

	gray := Grayscale(img)

	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(1, 0).Y)
}

func TestOtsuSeparatesBimodalImage(t *testing.T) {
	img := splitImage(40, 10, 40, 200)

	threshold := OtsuThreshold(img)
	assert.GreaterOrEqual(t, threshold, uint8(40))
	assert.Less(t, threshold, uint8(200))

	bin := Otsu(img)
	assert.Equal(t, uint8(0), bin.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), bin.GrayAt(39, 9).Y)
}

func TestOtsuOnEmptyImage(t *testing.T) {
	assert.Equal(t, uint8(0), OtsuThreshold(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestAdaptiveGaussian(t *testing.T) {
	t.Run("uniform image turns white", func(t *testing.T) {
		img := splitImage(15, 15, 100, 100)
		bin := AdaptiveGaussian(img, 11, 2)
		for _, v := range bin.Pix {
			require.Equal(t, uint8(255), v)
		}
	})

	t.Run("dark stroke on light background stays dark", func(t *testing.T) {
		img := splitImage(21, 21, 250, 250)
		img.SetGray(10, 10, color.Gray{Y: 0})

		bin := AdaptiveGaussian(img, 11, 2)

		assert.Equal(t, uint8(0), bin.GrayAt(10, 10).Y)
		assert.Equal(t, uint8(255), bin.GrayAt(0, 0).Y)
	})

	t.Run("compares against the rounded mean", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 3, 1))
		img.Pix = []uint8{104, 100, 104}

		// the centre mean is about 101.52; 100 > 99.52 but 100-102 is not above -2
		bin := AdaptiveGaussian(img, 3, 2)

		assert.Equal(t, uint8(0), bin.GrayAt(1, 0).Y)
		assert.Equal(t, uint8(255), bin.GrayAt(0, 0).Y)
	})

	t.Run("even block size is bumped to odd", func(t *testing.T) {
		img := splitImage(5, 5, 10, 10)
		bin := AdaptiveGaussian(img, 10, 2)
		assert.Equal(t, img.Bounds(), bin.Bounds())
	})
}

func TestGaussianKernelIsNormalized(t *testing.T) {
	kernel := gaussianKernel(11)
	require.Len(t, kernel, 11)

	var sum float64
	for _, k := range kernel {
		sum += k
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, kernel[5], kernel[0])
	assert.InDelta(t, kernel[0], kernel[10], 1e-12)
}

func TestCropClampsToBounds(t *testing.T) {
	img := splitImage(50, 30, 0, 255)

	cropped, err := Crop(img, image.Rect(40, 20, 80, 60))
	require.NoError(t, err)
	assert.Equal(t, 10, cropped.Bounds().Dx())
	assert.Equal(t, 10, cropped.Bounds().Dy())

	_, err = Crop(img, image.Rect(100, 100, 120, 120))
	assert.ErrorIs(t, err, ErrEmptyRegion)
}

func TestClampRectCanonicalizesSwappedCorners(t *testing.T) {
	r, err := ClampRect(image.Rect(10, 10, 0, 0), image.Rect(0, 0, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 5), r)
}
