//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Pure Go image processing primitives used by the filters when camstream is
  built without Open CV: morphology, histogram equalisation, bitwise
  combination, region extraction and box drawing.

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
	"image/color"
	"math"
)

func erode(img *image.Gray, k int) (*image.Gray, error) { return morph(img, k, lower), nil }

func dilate(img *image.Gray, k int) (*image.Gray, error) { return morph(img, k, higher), nil }

func topHat(img *image.Gray, k int) (*image.Gray, error) {
	return sub(img, morph(morph(img, k, lower), k, higher)), nil
}

func blackHat(img *image.Gray, k int) (*image.Gray, error) {
	return sub(morph(morph(img, k, higher), k, lower), img), nil
}

func lower(a, b uint8) bool { return b < a }

func higher(a, b uint8) bool { return b > a }

// morph applies a separable rank filter; better reports whether b should
// replace the current extreme a.
func morph(img *image.Gray, k int, better func(a, b uint8) bool) *image.Gray {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	lo := k / 2
	hi := k - 1 - lo

	// Horizontal pass.
	tmp := image.NewGray(img.Rect)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x := range row {
			v := row[x]
			for i := max(x-lo, 0); i <= min(x+hi, w-1); i++ {
				if better(v, row[i]) {
					v = row[i]
				}
			}
			tmp.Pix[y*tmp.Stride+x] = v
		}
	}

	// Vertical pass.
	dst := image.NewGray(img.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := tmp.Pix[y*tmp.Stride+x]
			for j := max(y-lo, 0); j <= min(y+hi, h-1); j++ {
				if c := tmp.Pix[j*tmp.Stride+x]; better(v, c) {
					v = c
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

// sub returns a - b, saturating at 0. a and b must have the same bounds.
func sub(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Rect)
	w, h := a.Rect.Dx(), a.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			va, vb := a.Pix[y*a.Stride+x], b.Pix[y*b.Stride+x]
			if va > vb {
				dst.Pix[y*dst.Stride+x] = va - vb
			}
		}
	}
	return dst
}

// clahe equalises src in tiles x tiles regions with histograms clipped at
// clip times their mean bin count, interpolating bilinearly between the
// tables of the four nearest tile centres.
func clahe(src *image.Gray, clip float64, tiles int) (*image.Gray, error) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tw := (w + tiles - 1) / tiles
	th := (h + tiles - 1) / tiles
	nx := (w + tw - 1) / tw
	ny := (h + th - 1) / th

	// Build the clipped equalisation table of each tile.
	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			r := image.Rect(tx*tw, ty*th, min((tx+1)*tw, w), min((ty+1)*th, h))
			var hist [256]int
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for _, v := range src.Pix[y*src.Stride+r.Min.X : y*src.Stride+r.Max.X] {
					hist[v]++
				}
			}
			area := r.Dx() * r.Dy()
			clipHistogram(&hist, max(1, int(clip*float64(area)/256)))

			scale := 255 / float64(area)
			var sum int
			lut := &luts[ty*nx+tx]
			for i, n := range hist {
				sum += n
				lut[i] = clamp(float64(sum) * scale)
			}
		}
	}

	dst := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(th) - 0.5
		y1 := int(math.Floor(fy))
		ya := fy - float64(y1)
		y2 := min(y1+1, ny-1)
		y1 = max(y1, 0)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tw) - 0.5
			x1 := int(math.Floor(fx))
			xa := fx - float64(x1)
			x2 := min(x1+1, nx-1)
			x1 = max(x1, 0)

			v := src.Pix[y*src.Stride+x]
			top := (1-xa)*float64(luts[y1*nx+x1][v]) + xa*float64(luts[y1*nx+x2][v])
			bot := (1-xa)*float64(luts[y2*nx+x1][v]) + xa*float64(luts[y2*nx+x2][v])
			dst.Pix[y*dst.Stride+x] = clamp((1-ya)*top + ya*bot)
		}
	}
	return dst, nil
}

// clipHistogram limits each bin of hist to limit and redistributes the
// excess evenly over all bins.
func clipHistogram(hist *[256]int, limit int) {
	var clipped int
	for i, n := range hist {
		if n > limit {
			clipped += n - limit
			hist[i] = limit
		}
	}

	batch := clipped / 256
	residual := clipped - batch*256
	for i := range hist {
		hist[i] += batch
	}
	if residual != 0 {
		step := max(256/residual, 1)
		for i := 0; i < 256 && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}
}

// equalizeHist maps src through its normalised cumulative histogram, in
// place. A uniform image is returned unchanged.
func equalizeHist(src *image.Gray) (*image.Gray, error) {
	var hist [256]int
	for y := 0; y < src.Rect.Dy(); y++ {
		for _, v := range src.Pix[y*src.Stride : y*src.Stride+src.Rect.Dx()] {
			hist[v]++
		}
	}
	total := src.Rect.Dx() * src.Rect.Dy()

	var lut [256]uint8
	first := 0
	for first < 255 && hist[first] == 0 {
		first++
	}

	if hist[first] == total {
		for i := range lut {
			lut[i] = uint8(first)
		}
	} else {
		scale := 255 / float64(total-hist[first])
		sum := 0
		for i := first + 1; i < 256; i++ {
			sum += hist[i]
			lut[i] = clamp(float64(sum) * scale)
		}
	}

	for i, v := range src.Pix {
		src.Pix[i] = lut[v]
	}
	return src, nil
}

// bitwise combines src with mask, which has the same size, in place.
func bitwise(op string, src, mask *image.Gray) (*image.Gray, error) {
	size := src.Rect.Size()
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			i := y*src.Stride + x
			m := mask.Pix[y*mask.Stride+x]
			switch op {
			case OpAnd:
				src.Pix[i] &= m
			case OpOr:
				src.Pix[i] |= m
			default:
				src.Pix[i] ^= m
			}
		}
	}
	return src, nil
}

// Regions returns the bounding boxes of the 8-connected regions of
// non-background pixels in mask that contain at least minArea pixels. Boxes
// are ordered by the first pixel of each region in row-major order.
func Regions(mask *image.Gray, minArea int) ([]image.Rectangle, error) {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	seen := make([]bool, w*h)
	var (
		boxes []image.Rectangle
		stack []image.Point
	)

	fg := func(x, y int) bool {
		return mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] != Background
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if seen[y*w+x] || !fg(x, y) {
				continue
			}

			// Flood fill the region starting at (x, y).
			seen[y*w+x] = true
			stack = append(stack[:0], image.Pt(x, y))
			r := image.Rect(x, y, x+1, y+1)
			area := 0
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				area++
				r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h || seen[ny*w+nx] || !fg(nx, ny) {
							continue
						}
						seen[ny*w+nx] = true
						stack = append(stack, image.Pt(nx, ny))
					}
				}
			}

			if area >= minArea {
				boxes = append(boxes, r.Add(b.Min))
			}
		}
	}
	return boxes, nil
}

// drawBoxes draws the outline of each of rs onto img, t pixels thick,
// growing inwards.
func drawBoxes(img *image.RGBA, rs []image.Rectangle, c color.RGBA, t int) error {
	for _, r := range rs {
		r = r.Intersect(img.Rect)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if x-r.Min.X < t || r.Max.X-1-x < t || y-r.Min.Y < t || r.Max.Y-1-y < t {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
	return nil
}
