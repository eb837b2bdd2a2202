/*
DESCRIPTION
  scale.go provides Downscale, used by sources to shrink decoded camera
  frames before they are transformed.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import (
	"image"

	"golang.org/x/image/draw"
)

// Downscale returns an RGBA copy of img with both dimensions multiplied by
// f, using bilinear interpolation. Dimensions are rounded and at least one
// pixel. Factors outside (0, 1) give a same size copy.
func Downscale(img image.Image, f float64) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if f > 0 && f < 1 {
		w = max(int(float64(w)*f+0.5), 1)
		h = max(int(float64(h)*f+0.5), 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}
