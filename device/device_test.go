/*
DESCRIPTION
  device_test.go provides testing of the shared device helpers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestDownscale(t *testing.T) {
	src := image.NewGray(image.Rect(10, 10, 50, 31))
	for i := range src.Pix {
		src.Pix[i] = 100
	}

	tests := []struct {
		f    float64
		want image.Rectangle
	}{
		{f: 0.5, want: image.Rect(0, 0, 20, 11)},
		{f: 0.25, want: image.Rect(0, 0, 10, 5)},
		{f: 0.001, want: image.Rect(0, 0, 1, 1)},
		{f: 1, want: image.Rect(0, 0, 40, 21)},
		{f: 0, want: image.Rect(0, 0, 40, 21)},
	}

	for _, test := range tests {
		got := Downscale(src, test.f)
		if got.Bounds() != test.want {
			t.Errorf("factor %v: got bounds %v want %v", test.f, got.Bounds(), test.want)
		}
		if c := got.RGBAAt(0, 0); c != (color.RGBA{100, 100, 100, 255}) {
			t.Errorf("factor %v: unexpected colour %v", test.f, c)
		}
	}
}

func TestMultiError(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	var err error = MultiError{errA, errB}

	if !errors.Is(err, errB) {
		t.Errorf("expected %v to contain %v", err, errB)
	}
	if got, want := err.Error(), "[a b]"; got != want {
		t.Errorf("unexpected message: got %q want %q", got, want)
	}
}
