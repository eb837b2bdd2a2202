/*
DESCRIPTION
  mog.go provides MOG, an adaptive background model using a Mixture of
  Gaussians per pixel (after Zivkovic's MOG2), classifying each pixel of a
  grayscale frame as background, shadow or foreground.

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
)

// Mask labels.
const (
	Background = 0
	Shadow     = 127
	Foreground = 255
)

// Model constants, as used by OpenCV's BackgroundSubtractorMOG2.
const (
	mogModes           = 5    // Maximum Gaussians per pixel.
	mogBackgroundRatio = 0.9  // Weight of modes that make up the background.
	mogVarThresholdGen = 9.0  // Squared distance for a sample to update a mode.
	mogVarInit         = 15.0 // Variance of new modes.
	mogVarMin          = 4.0
	mogVarMax          = 75.0
	mogComplexity      = 0.05 // Complexity reduction prior, prunes weak modes.
	mogShadowTau       = 0.5  // Darkest shadow, as a fraction of the background.
)

const (
	defaultMOGHistory   = 100
	defaultMOGThreshold = 40.0
)

type gaussian struct {
	weight, mean, variance float64
}

// MOG is a motion tracking algorithm. MoG is short for Mixture of Gaussians
// method. A MOG is not safe for concurrent use.
type MOG struct {
	history int
	thresh  float64 // Squared Mahalanobis distance within which a sample is background.
	shadows bool

	size   image.Point // Frame size, fixed by the first frame.
	frames int
	gmm    []gaussian // mogModes per pixel, sorted by descending weight.
	used   []uint8    // Modes in use per pixel.
}

// NewMOG returns a new MOG with the given history length in frames and
// variance threshold. If shadows is true, shadow pixels are labelled Shadow
// instead of Foreground.
func NewMOG(history uint, threshold float64, shadows bool) *MOG {
	if history == 0 {
		history = defaultMOGHistory
	}
	if threshold <= 0 {
		threshold = defaultMOGThreshold
	}
	return &MOG{history: int(history), thresh: threshold, shadows: shadows}
}

// Close implements Tracker. MOG holds no external resources.
func (m *MOG) Close() error { return nil }

// Apply updates the model with img and returns the mask of img, labelling
// each pixel Background, Shadow or Foreground. All frames given to a MOG must
// have the same size, otherwise ErrDimensionMismatch is returned and the
// model is left unchanged.
func (m *MOG) Apply(img *image.Gray) (*image.Gray, error) {
	b := img.Bounds()
	if m.gmm == nil {
		m.size = b.Size()
		n := m.size.X * m.size.Y
		m.gmm = make([]gaussian, n*mogModes)
		m.used = make([]uint8, n)
	} else if b.Size() != m.size {
		return nil, ErrDimensionMismatch
	}

	m.frames++
	alpha := 1 / float64(min(2*m.frames, m.history))

	mask := image.NewGray(b)
	w, h := m.size.X, m.size.Y
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[off : off+w]
		for x, v := range row {
			mask.Pix[y*mask.Stride+x] = m.update(y*w+x, float64(v), alpha)
		}
	}
	return mask, nil
}

// update folds the sample pix into the mixture of pixel i and returns its
// label.
func (m *MOG) update(i int, pix, alpha float64) uint8 {
	modes := m.gmm[i*mogModes : (i+1)*mogModes]
	n := int(m.used[i])

	var (
		background bool
		fits       bool
		total      float64
		prune      = -alpha * mogComplexity
	)
	for k := 0; k < n; k++ {
		weight := (1-alpha)*modes[k].weight + prune
		swapped := 0

		if !fits {
			variance := modes[k].variance
			d := modes[k].mean - pix
			dist2 := d * d

			if total < mogBackgroundRatio && dist2 < m.thresh*variance {
				background = true
			}

			if dist2 < mogVarThresholdGen*variance {
				fits = true
				weight += alpha
				r := alpha / weight
				modes[k].mean -= r * d
				modes[k].variance = min(max(variance+r*(dist2-variance), mogVarMin), mogVarMax)

				// Keep modes sorted by weight.
				for j := k; j > 0 && weight >= modes[j-1].weight; j-- {
					modes[j], modes[j-1] = modes[j-1], modes[j]
					swapped++
				}
			}
		}

		if weight < -prune {
			weight = 0
		}
		modes[k-swapped].weight = weight
		total += weight
	}

	// Drop pruned modes and renormalise.
	live := 0
	for k := 0; k < n; k++ {
		if modes[k].weight == 0 {
			continue
		}
		modes[live] = modes[k]
		modes[live].weight /= total
		live++
	}
	n = live

	if !fits {
		k := n
		if n == mogModes {
			k = mogModes - 1
		} else {
			n++
		}
		if n == 1 {
			modes[k].weight = 1
		} else {
			modes[k].weight = alpha
			for j := 0; j < n-1; j++ {
				modes[j].weight *= 1 - alpha
			}
		}
		modes[k].mean = pix
		modes[k].variance = mogVarInit

		for j := k; j > 0 && alpha >= modes[j-1].weight; j-- {
			modes[j], modes[j-1] = modes[j-1], modes[j]
		}
	}
	m.used[i] = uint8(n)

	switch {
	case background:
		return Background
	case m.shadows && m.shadow(modes[:n], pix):
		return Shadow
	default:
		return Foreground
	}
}

// shadow reports whether pix is a darkened version of one of the background
// modes.
func (m *MOG) shadow(modes []gaussian, pix float64) bool {
	var tw float64
	for _, g := range modes {
		num := pix * g.mean
		den := g.mean * g.mean
		if den == 0 {
			return false
		}

		if num <= den && num >= mogShadowTau*den {
			a := num / den
			d := a*g.mean - pix
			if d*d < m.thresh*g.variance*a*a {
				return true
			}
		}

		tw += g.weight
		if tw > mogBackgroundRatio {
			return false
		}
	}
	return false
}
