/*
DESCRIPTION
  encode.go provides the frame encoder, turning raster frames into JPEG
  bytes ready to be emitted as a multipart part.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package jpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// DefaultQuality is the quality used when Encode is given a quality outside
// of 1-100.
const DefaultQuality = jpeg.DefaultQuality

// Encode encodes img as a JPEG of the given quality.
func Encode(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, fmt.Errorf("could not encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
