/*
DESCRIPTION
  Noise filters adding synthetic Gaussian (additive) or speckle
  (multiplicative) noise to each channel of the colour frame.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Noise defaults.
const (
	DefaultNoiseMean  = 0.0
	DefaultNoiseStd   = 25.0
	DefaultSpeckleVar = 0.04
)

const errNegativeNoise = "noise %s must not be negative: %v"

// Noise is a filter that perturbs every colour channel of every pixel.
// Noise is not pure; use a fixed seed for repeatable output.
type Noise struct {
	dist  distuv.Normal
	apply func(v, n float64) float64
}

// NewGaussianNoise returns a filter adding noise drawn from N(mean, std²) to
// each channel value. A seed of 0 seeds from the clock.
func NewGaussianNoise(mean, std float64, seed uint64) (*Noise, error) {
	if std < 0 {
		return nil, fmt.Errorf(errNegativeNoise, "standard deviation", std)
	}
	return &Noise{
		dist:  distuv.Normal{Mu: mean, Sigma: std, Src: source(seed)},
		apply: func(v, n float64) float64 { return v + n },
	}, nil
}

// NewSpeckleNoise returns a filter replacing each channel value v with
// v + v*n, where n is drawn from N(0, variance). A seed of 0 seeds from the
// clock.
func NewSpeckleNoise(variance float64, seed uint64) (*Noise, error) {
	if variance < 0 {
		return nil, fmt.Errorf(errNegativeNoise, "variance", variance)
	}
	return &Noise{
		dist:  distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance), Src: source(seed)},
		apply: func(v, n float64) float64 { return v + v*n },
	}, nil
}

func source(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

func (f *Noise) Close() error { return nil }

// Apply implements Filter.
func (f *Noise) Apply(img image.Image) (image.Image, error) {
	dst := toRGBA(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+4*w]
		for i := range row {
			if i%4 == 3 {
				continue // Alpha.
			}
			row[i] = clamp(f.apply(float64(row[i]), f.dist.Rand()))
		}
	}
	return dst, nil
}
