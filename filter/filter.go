/*
NAME
  filter.go

DESCRIPTION
  filter.go provides the Filter interface implemented by every frame
  transform, along with the NoOp filter and shared image helpers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package filter provides the interface and implementations of the filters
// applied to decoded camera frames before they are re-encoded and streamed.
package filter

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// Errors returned by filters.
var (
	ErrDimensionMismatch    = errors.New("frame dimensions do not match background model")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrBadKernel            = errors.New("kernel size out of range")
)

// Filter transforms one frame into another. Filters holding state, such as
// the motion filters, must not be shared between streams.
type Filter interface {
	// Apply returns the transformed frame. The input frame is not modified.
	Apply(img image.Image) (image.Image, error)

	// Close frees any resources held by the filter.
	Close() error
}

// The NoOp filter will perform no operation on the frame it recieves, it
// will pass it on to the encoder with no changes.
type NoOp struct{}

func NewNoOp() *NoOp { return &NoOp{} }

func (n *NoOp) Apply(img image.Image) (image.Image, error) { return img, nil }

func (n *NoOp) Close() error { return nil }

// ToGray returns a grayscale copy of img using the ITU-R BT.601 luma weights.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// toRGBA returns an RGBA copy of img.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
