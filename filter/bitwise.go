/*
DESCRIPTION
  A filter combining the grayscale frame bitwise with a mask holding a filled
  ellipse inscribed in the frame.

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

// Bitwise operations.
const (
	OpAnd = "and"
	OpOr  = "or"
	OpXor = "xor"
)

// Bitwise is a filter that combines each grayscale frame with an ellipse
// mask. With OpAnd only the inside of the ellipse is kept, with OpOr the
// inside is whitened and with OpXor the inside is inverted.
type Bitwise struct {
	op   string
	mask *image.Gray // Cached ellipse for the last frame size.
}

// NewBitwise returns a new Bitwise filter performing op.
func NewBitwise(op string) (*Bitwise, error) {
	switch op {
	case OpAnd, OpOr, OpXor:
	default:
		return nil, fmt.Errorf("%w: bitwise %q", ErrUnsupportedOperation, op)
	}
	return &Bitwise{op: op}, nil
}

func (f *Bitwise) Close() error { return nil }

// Apply implements Filter.
func (f *Bitwise) Apply(img image.Image) (image.Image, error) {
	src := ToGray(img)
	size := src.Rect.Size()
	if f.mask == nil || f.mask.Rect.Size() != size {
		f.mask = Ellipse(size)
	}
	return bitwise(f.op, src, f.mask)
}

// Ellipse returns a mask of the given size that is 255 inside the inscribed
// ellipse and 0 outside.
func Ellipse(size image.Point) *image.Gray {
	m := image.NewGray(image.Rectangle{Max: size})
	a, b := float64(size.X)/2, float64(size.Y)/2
	for y := 0; y < size.Y; y++ {
		dy := (float64(y) + 0.5 - b) / b
		for x := 0; x < size.X; x++ {
			dx := (float64(x) + 0.5 - a) / a
			if dx*dx+dy*dy <= 1 {
				m.Pix[y*m.Stride+x] = 255
			}
		}
	}
	return m
}
