/*
DESCRIPTION
  Contrast enhancement filters: contrast limited adaptive histogram
  equalisation (CLAHE), global histogram equalisation and gamma correction.
  All of these are pure; equal frames give byte-identical results.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"image"

	"github.com/disintegration/gift"

	"github.com/ausocean/camstream/revid/config"
)

const (
	defaultCLAHEClipLimit = 2.0
	defaultCLAHETiles     = 8
	defaultGamma          = 1.5
)

// CLAHE is a filter performing contrast limited adaptive histogram
// equalisation on the grayscale frame.
type CLAHE struct {
	clip  float64
	tiles int
}

// NewCLAHE returns a new CLAHE filter using the CLAHEClipLimit and
// CLAHETiles fields of c.
func NewCLAHE(c config.Config) *CLAHE {
	// Validate parameters.
	if c.CLAHEClipLimit <= 0 {
		c.LogInvalidField("CLAHEClipLimit", defaultCLAHEClipLimit)
		c.CLAHEClipLimit = defaultCLAHEClipLimit
	}
	if c.CLAHETiles == 0 {
		c.LogInvalidField("CLAHETiles", defaultCLAHETiles)
		c.CLAHETiles = defaultCLAHETiles
	}
	return &CLAHE{clip: c.CLAHEClipLimit, tiles: int(c.CLAHETiles)}
}

func (f *CLAHE) Close() error { return nil }

// Apply implements Filter.
func (f *CLAHE) Apply(img image.Image) (image.Image, error) {
	src := ToGray(img)
	if src.Rect.Empty() {
		return src, nil
	}
	return clahe(src, f.clip, f.tiles)
}

// Equalize is a filter performing global histogram equalisation on the
// grayscale frame.
type Equalize struct{}

func NewEqualize() *Equalize { return &Equalize{} }

func (f *Equalize) Close() error { return nil }

// Apply implements Filter.
func (f *Equalize) Apply(img image.Image) (image.Image, error) {
	src := ToGray(img)
	if src.Rect.Empty() {
		return src, nil
	}
	return equalizeHist(src)
}

// Gamma is a filter performing gamma correction on the colour frame. Gamma
// values above 1 lighten the frame and values below 1 darken it.
type Gamma struct {
	g *gift.GIFT
}

// NewGamma returns a new Gamma filter for gamma, which must be positive.
func NewGamma(gamma float64) *Gamma {
	if gamma <= 0 {
		gamma = defaultGamma
	}
	return &Gamma{g: gift.New(gift.Gamma(float32(gamma)))}
}

func (f *Gamma) Close() error { return nil }

// Apply implements Filter.
func (f *Gamma) Apply(img image.Image) (image.Image, error) {
	dst := image.NewRGBA(f.g.Bounds(img.Bounds()))
	f.g.Draw(dst, img)
	return dst, nil
}
