/*
DESCRIPTION
  mog_test.go provides testing of the MOG background model and of region
  extraction from its masks.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// uniform returns a w x h grayscale frame of value v.
func uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// withSquare returns a copy of bg with r filled with v.
func withSquare(bg *image.Gray, r image.Rectangle, v uint8) *image.Gray {
	img := image.NewGray(bg.Rect)
	copy(img.Pix, bg.Pix)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[img.PixOffset(x, y)] = v
		}
	}
	return img
}

func foregroundRatio(mask *image.Gray) float64 {
	var n int
	for _, v := range mask.Pix {
		if v != Background {
			n++
		}
	}
	return float64(n) / float64(len(mask.Pix))
}

func iou(a, b image.Rectangle) float64 {
	in := a.Intersect(b)
	if in.Empty() {
		return 0
	}
	i := in.Dx() * in.Dy()
	return float64(i) / float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()-i)
}

func TestMOGMaskLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMOG(100, 40, true)

	for n := 0; n < 30; n++ {
		img := image.NewGray(image.Rect(0, 0, 32, 24))
		for i := range img.Pix {
			img.Pix[i] = uint8(rng.Intn(256))
		}

		mask, err := m.Apply(img)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", n, err)
		}
		if mask.Bounds() != img.Bounds() {
			t.Fatalf("frame %d: mask bounds %v, want %v", n, mask.Bounds(), img.Bounds())
		}
		for i, v := range mask.Pix {
			switch v {
			case Background, Shadow, Foreground:
			default:
				t.Fatalf("frame %d: pixel %d has label %d", n, i, v)
			}
		}
	}
}

func TestMOGStaticConvergence(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Pix[y*img.Stride+x] = uint8((x*5 + y*3) % 256)
		}
	}

	m := NewMOG(100, 40, true)
	var mask *image.Gray
	for n := 0; n < 120; n++ {
		var err error
		mask, err = m.Apply(img)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if r := foregroundRatio(mask); r != 0 {
		t.Errorf("static scene not absorbed: foreground ratio %v", r)
	}
}

func TestMOGNotIdempotent(t *testing.T) {
	img := uniform(16, 16, 0)
	m := NewMOG(100, 40, true)

	first, err := m.Apply(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.Apply(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if foregroundRatio(first) != 1 {
		t.Errorf("first frame should be all foreground, got ratio %v", foregroundRatio(first))
	}
	if foregroundRatio(second) != 0 {
		t.Errorf("second frame should be all background, got ratio %v", foregroundRatio(second))
	}
}

func TestMOGDimensionMismatch(t *testing.T) {
	m := NewMOG(100, 40, true)
	_, err := m.Apply(uniform(16, 16, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = m.Apply(uniform(16, 8, 10))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("unexpected error: got %v want %v", err, ErrDimensionMismatch)
	}

	// Same size at another origin is accepted.
	sub := uniform(32, 32, 10).SubImage(image.Rect(8, 8, 24, 24)).(*image.Gray)
	_, err = m.Apply(sub)
	if err != nil {
		t.Errorf("unexpected error for offset frame: %v", err)
	}
}

func TestMOGShadow(t *testing.T) {
	bg := uniform(32, 32, 200)
	m := NewMOG(100, 40, true)
	for n := 0; n < 50; n++ {
		_, err := m.Apply(bg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	r := image.Rect(4, 4, 12, 12)
	mask, err := m.Apply(withSquare(bg, r, 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mask.GrayAt(6, 6).Y; got != Shadow {
		t.Errorf("darkened pixel: got label %d want %d", got, Shadow)
	}
	if got := mask.GrayAt(20, 20).Y; got != Background {
		t.Errorf("untouched pixel: got label %d want %d", got, Background)
	}

	noShadow := NewMOG(100, 40, false)
	for n := 0; n < 50; n++ {
		noShadow.Apply(bg)
	}
	mask, _ = noShadow.Apply(withSquare(bg, r, 150))
	if got := mask.GrayAt(6, 6).Y; got != Foreground {
		t.Errorf("darkened pixel without shadow detection: got label %d want %d", got, Foreground)
	}
}

func TestMOGMovingSquare(t *testing.T) {
	bg := uniform(96, 96, 50)
	m := NewMOG(100, 40, true)
	for n := 0; n < 60; n++ {
		_, err := m.Apply(bg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var (
		mask *image.Gray
		sq   image.Rectangle
	)
	for i := 0; i < 6; i++ {
		sq = image.Rect(10+6*i, 20, 40+6*i, 50)
		var err error
		mask, err = m.Apply(withSquare(bg, sq, 200))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	boxes, err := Regions(mask, defaultMotionMinArea)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("unexpected number of boxes: got %d want 1 (%v)", len(boxes), boxes)
	}
	if got := iou(boxes[0], sq); got < 0.9 {
		t.Errorf("box %v does not match square %v: IoU %v", boxes[0], sq, got)
	}
}

func TestMOGSaturatedHistory(t *testing.T) {
	black := uniform(64, 64, 0)
	m := NewMOG(100, 40, true)
	for n := 0; n < 150; n++ {
		_, err := m.Apply(black)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	sq := image.Rect(22, 17, 42, 37)
	mask, err := m.Apply(withSquare(black, sq, 255))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A 20x20 square has 400 pixels, under the default minimum area.
	got, err := Regions(mask, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []image.Rectangle{sq}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected boxes: got %v want %v", got, want)
	}
}

func TestRegions(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 10))
	set := func(r image.Rectangle, v uint8) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				mask.SetGray(x, y, color.Gray{Y: v})
			}
		}
	}
	set(image.Rect(1, 1, 4, 4), Foreground)   // 9 px.
	set(image.Rect(4, 4, 6, 6), Shadow)       // 4 px, diagonal neighbour of the first.
	set(image.Rect(10, 0, 20, 2), Foreground) // 20 px.

	tests := []struct {
		name    string
		minArea int
		want    []image.Rectangle
	}{
		{
			name:    "all",
			minArea: 1,
			want:    []image.Rectangle{image.Rect(10, 0, 20, 2), image.Rect(1, 1, 6, 6)},
		},
		{
			name:    "area equal to minimum kept",
			minArea: 13,
			want:    []image.Rectangle{image.Rect(10, 0, 20, 2), image.Rect(1, 1, 6, 6)},
		},
		{
			name:    "small dropped",
			minArea: 14,
			want:    []image.Rectangle{image.Rect(10, 0, 20, 2)},
		},
		{
			name:    "above every region",
			minArea: 21,
			want:    nil,
		},
	}

	for _, test := range tests {
		got, err := Regions(mask, test.minArea)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("%s: got %v want %v", test.name, got, test.want)
		}
	}
}

func TestRegionsEmptyMask(t *testing.T) {
	got, err := Regions(image.NewGray(image.Rect(0, 0, 8, 8)), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no regions, got %v", got)
	}
}

func BenchmarkMOG(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	frames := make([]*image.Gray, 10)
	for i := range frames {
		frames[i] = image.NewGray(image.Rect(0, 0, 320, 240))
		for j := range frames[i].Pix {
			frames[i].Pix[j] = uint8(rng.Intn(256))
		}
	}

	m := NewMOG(100, 40, true)
	for n := 0; n < b.N; n++ {
		for _, f := range frames {
			_, err := m.Apply(f)
			if err != nil {
				b.Fatalf("cannot apply MOG: %v", err)
			}
		}
	}

	b.Log("Frames: ", len(frames))
}
