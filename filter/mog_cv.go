//go:build withcv
// +build withcv

/*
DESCRIPTION
  A Tracker backed by Open CV's BackgroundSubtractorMOG2, using the gocv
  bindings.

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

	"gocv.io/x/gocv"
)

// CVMOG is a Tracker using Open CV's implementation of the Mixture of
// Gaussians method.
type CVMOG struct {
	bs   gocv.BackgroundSubtractorMOG2
	size image.Point
	set  bool
}

// NewCVMOG returns a pointer to a new CVMOG.
func NewCVMOG(history uint, threshold float64, shadows bool) *CVMOG {
	if history == 0 {
		history = defaultMOGHistory
	}
	if threshold <= 0 {
		threshold = defaultMOGThreshold
	}
	return &CVMOG{bs: gocv.NewBackgroundSubtractorMOG2WithParams(int(history), threshold, shadows)}
}

// Close frees resources used by gocv. It has to be done manually,
// due to gocv using c-go.
func (m *CVMOG) Close() error {
	return m.bs.Close()
}

// Apply implements Tracker.
func (m *CVMOG) Apply(img *image.Gray) (*image.Gray, error) {
	size := img.Bounds().Size()
	if !m.set {
		m.size, m.set = size, true
	} else if size != m.size {
		return nil, ErrDimensionMismatch
	}

	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("could not convert frame to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	// Seperate foreground and background.
	m.bs.Apply(src, &dst)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert mask to image: %w", err)
	}
	mask, ok := out.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", out)
	}
	return mask, nil
}
