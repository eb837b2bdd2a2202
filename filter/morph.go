/*
DESCRIPTION
  Morphological filters on grayscale images using a square structuring
  element: erosion, dilation, top-hat, black-hat and the top-hat/black-hat
  contrast enhancement used on radiographs.

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
)

// Morphological operations.
const (
	OpOriginal = "original"
	OpEroded   = "eroded"
	OpDilated  = "dilated"
	OpTopHat   = "tophat"
	OpBlackHat = "blackhat"
	OpEnhanced = "enhanced"
)

// MaxKernel is the largest structuring element side length accepted by
// NewMorph.
const MaxKernel = 101

// Morph is a filter applying a morphological operation with a k x k
// rectangular structuring element anchored at its centre. Pixels outside
// the image are ignored.
type Morph struct {
	op string
	k  int
}

// NewMorph returns a new Morph filter. ErrUnsupportedOperation is returned
// for unknown operations and ErrBadKernel for k outside [1, MaxKernel].
func NewMorph(op string, k int) (*Morph, error) {
	switch op {
	case OpOriginal, OpEroded, OpDilated, OpTopHat, OpBlackHat, OpEnhanced:
	default:
		return nil, fmt.Errorf("%w: morphology %q", ErrUnsupportedOperation, op)
	}
	if k < 1 || k > MaxKernel {
		return nil, fmt.Errorf("%w: %d", ErrBadKernel, k)
	}
	return &Morph{op: op, k: k}, nil
}

func (f *Morph) Close() error { return nil }

// Apply implements Filter.
func (f *Morph) Apply(img image.Image) (image.Image, error) {
	src := ToGray(img)
	switch f.op {
	case OpOriginal:
		return src, nil
	case OpEroded:
		return Erode(src, f.k)
	case OpDilated:
		return Dilate(src, f.k)
	case OpTopHat:
		return TopHat(src, f.k)
	case OpBlackHat:
		return BlackHat(src, f.k)
	}

	top, err := TopHat(src, f.k)
	if err != nil {
		return nil, fmt.Errorf("could not apply top-hat: %w", err)
	}
	black, err := BlackHat(src, f.k)
	if err != nil {
		return nil, fmt.Errorf("could not apply black-hat: %w", err)
	}
	for i, v := range src.Pix {
		src.Pix[i] = clamp(float64(v) + float64(top.Pix[i]) - float64(black.Pix[i]))
	}
	return src, nil
}

// Erode returns the grayscale erosion of img, the minimum over each k x k
// window.
func Erode(img *image.Gray, k int) (*image.Gray, error) { return erode(img, k) }

// Dilate returns the grayscale dilation of img, the maximum over each k x k
// window.
func Dilate(img *image.Gray, k int) (*image.Gray, error) { return dilate(img, k) }

// TopHat returns img minus its opening, keeping bright details smaller than
// the structuring element.
func TopHat(img *image.Gray, k int) (*image.Gray, error) { return topHat(img, k) }

// BlackHat returns the closing of img minus img, keeping dark details
// smaller than the structuring element.
func BlackHat(img *image.Gray, k int) (*image.Gray, error) { return blackHat(img, k) }
