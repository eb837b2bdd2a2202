//go:build withcv
// +build withcv

/*
DESCRIPTION
  Image processing primitives backed by Open CV through the gocv bindings,
  used by the filters when camstream is built with the withcv tag.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"
)

// grayMat returns a single channel Mat holding a copy of img.
func grayMat(img *image.Gray) (gocv.Mat, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := img.Pix
	if img.Stride != w {
		pix = make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:], img.Pix[y*img.Stride:y*img.Stride+w])
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("could not convert frame to mat: %w", err)
	}
	return m, nil
}

// matGray returns a copy of the single channel Mat m with bounds r.
func matGray(m gocv.Mat, r image.Rectangle) *image.Gray {
	return &image.Gray{Pix: m.ToBytes(), Stride: r.Dx(), Rect: r}
}

// grayOp converts img to a Mat, applies op to it and converts the result
// back. Empty images are returned as empty copies.
func grayOp(img *image.Gray, op func(src gocv.Mat, dst *gocv.Mat)) (*image.Gray, error) {
	if img.Rect.Empty() {
		return image.NewGray(img.Rect), nil
	}
	src, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	op(src, &dst)
	return matGray(dst, img.Rect), nil
}

// morphOp applies the morphological operation t with a k x k rectangular
// structuring element.
func morphOp(img *image.Gray, k int, t gocv.MorphType) (*image.Gray, error) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()
	return grayOp(img, func(src gocv.Mat, dst *gocv.Mat) {
		switch t {
		case gocv.MorphErode:
			gocv.Erode(src, dst, kernel)
		case gocv.MorphDilate:
			gocv.Dilate(src, dst, kernel)
		default:
			gocv.MorphologyEx(src, dst, t, kernel)
		}
	})
}

func erode(img *image.Gray, k int) (*image.Gray, error) {
	return morphOp(img, k, gocv.MorphErode)
}

func dilate(img *image.Gray, k int) (*image.Gray, error) {
	return morphOp(img, k, gocv.MorphDilate)
}

func topHat(img *image.Gray, k int) (*image.Gray, error) {
	return morphOp(img, k, gocv.MorphTophat)
}

func blackHat(img *image.Gray, k int) (*image.Gray, error) {
	return morphOp(img, k, gocv.MorphBlackhat)
}

func clahe(src *image.Gray, clip float64, tiles int) (*image.Gray, error) {
	c := gocv.NewCLAHEWithParams(clip, image.Pt(tiles, tiles))
	defer c.Close()
	return grayOp(src, func(src gocv.Mat, dst *gocv.Mat) { c.Apply(src, dst) })
}

func equalizeHist(src *image.Gray) (*image.Gray, error) {
	return grayOp(src, func(src gocv.Mat, dst *gocv.Mat) { gocv.EqualizeHist(src, dst) })
}

// bitwise combines src with mask, which has the same size.
func bitwise(op string, src, mask *image.Gray) (*image.Gray, error) {
	if src.Rect.Empty() {
		return src, nil
	}
	m, err := grayMat(mask)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	return grayOp(src, func(src gocv.Mat, dst *gocv.Mat) {
		switch op {
		case OpAnd:
			gocv.BitwiseAnd(src, m, dst)
		case OpOr:
			gocv.BitwiseOr(src, m, dst)
		default:
			gocv.BitwiseXor(src, m, dst)
		}
	})
}

// Regions returns the bounding boxes of the 8-connected regions of
// non-background pixels in mask that contain at least minArea pixels. Boxes
// are ordered by the first pixel of each region in row-major order.
func Regions(mask *image.Gray, minArea int) ([]image.Rectangle, error) {
	if mask.Rect.Empty() {
		return nil, nil
	}
	src, err := grayMat(mask)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(src, &labels, &stats, &centroids)

	// Label 0 is the background. Find where each other label first
	// appears so the boxes keep row-major order.
	first := make([]int, n)
	for i := range first {
		first[i] = -1
	}
	b := labels.ToBytes()
	for i := 0; i < len(b)/4; i++ {
		l := int(int32(binary.LittleEndian.Uint32(b[4*i:])))
		if l > 0 && l < n && first[l] < 0 {
			first[l] = i
		}
	}

	var order []int
	for l := 1; l < n; l++ {
		if int(stats.GetIntAt(l, int(gocv.CC_STAT_AREA))) >= minArea {
			order = append(order, l)
		}
	}
	sort.Slice(order, func(i, j int) bool { return first[order[i]] < first[order[j]] })

	var boxes []image.Rectangle
	for _, l := range order {
		x := int(stats.GetIntAt(l, int(gocv.CC_STAT_LEFT)))
		y := int(stats.GetIntAt(l, int(gocv.CC_STAT_TOP)))
		w := int(stats.GetIntAt(l, int(gocv.CC_STAT_WIDTH)))
		h := int(stats.GetIntAt(l, int(gocv.CC_STAT_HEIGHT)))
		boxes = append(boxes, image.Rect(x, y, x+w, y+h).Add(mask.Rect.Min))
	}
	return boxes, nil
}

// drawBoxes draws the outline of each of rs onto img, t pixels thick,
// growing inwards.
func drawBoxes(img *image.RGBA, rs []image.Rectangle, c color.RGBA, t int) error {
	if len(rs) == 0 || img.Rect.Empty() {
		return nil
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		copy(pix[4*y*w:], img.Pix[y*img.Stride:y*img.Stride+4*w])
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return fmt.Errorf("could not convert frame to mat: %w", err)
	}
	defer m.Close()

	// gocv takes colours in BGR order; the Mat holds RGBA.
	bgr := color.RGBA{R: c.B, G: c.G, B: c.R, A: c.A}
	for _, r := range rs {
		r = r.Intersect(img.Rect).Sub(img.Rect.Min)
		for i := 0; i < t; i++ {
			in := image.Rect(r.Min.X+i, r.Min.Y+i, r.Max.X-i, r.Max.Y-i)
			if in.Empty() {
				break
			}
			gocv.Rectangle(&m, in, bgr, 1)
		}
	}

	out := m.ToBytes()
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+4*w], out[4*y*w:])
	}
	return nil
}
