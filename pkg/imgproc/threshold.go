package imgproc

import (
	"image"
	"math"
)

// OtsuThreshold returns the global threshold that maximizes the between-class
// variance of the gray histogram.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):gray.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB     float64
		weightB  int
		best     float64
		bestT    int
		foundAny bool
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if !foundAny || between > best {
			best = between
			bestT = t
			foundAny = true
		}
	}
	return uint8(bestT)
}

// Binarize maps pixels strictly above t to 255 and the rest to 0.
func Binarize(gray *image.Gray, t uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if src[x] > t {
				dst[x] = 255
			}
		}
	}
	return out
}

// Otsu binarizes gray with its Otsu threshold.
func Otsu(gray *image.Gray) *image.Gray {
	return Binarize(gray, OtsuThreshold(gray))
}

// AdaptiveGaussian binarizes each pixel against the Gaussian-weighted mean of
// its blockSize x blockSize neighbourhood minus c. blockSize must be odd and
// at least 3. Borders replicate the edge pixels.
func AdaptiveGaussian(gray *image.Gray, blockSize int, c float64) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}

	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	kernel := gaussianKernel(blockSize)
	radius := blockSize / 2
	delta := math.Ceil(c)

	at := func(x, y int) float64 {
		return float64(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	horizontal := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * at(clampInt(x+k, 0, w-1), y)
			}
			horizontal[y*w+x] = acc
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var mean float64
			for k := -radius; k <= radius; k++ {
				mean += kernel[k+radius] * horizontal[clampInt(y+k, 0, h-1)*w+x]
			}
			if at(x, y)-roundMean(mean) > -delta {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// roundMean saturates the blurred value to a gray level, as an 8-bit blur
// would store it.
func roundMean(v float64) float64 {
	return math.Min(255, math.Max(0, math.Round(v)))
}

// gaussianKernel derives sigma from the kernel size the same way OpenCV does
// when sigma is left at zero.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	radius := size / 2
	kernel := make([]float64, size)
	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
