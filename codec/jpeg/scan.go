/*
DESCRIPTION
  scan.go provides Scan, which finds the first complete JPEG image of useful
  size in a bounded chunk of an MJPEG stream, and Decode for turning it into
  an image.

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
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

// ErrNoImage is returned by Scan when the buffer holds no complete JPEG
// image larger than the requested minimum size.
var ErrNoImage = errors.New("no complete JPEG image found")

// errFound stops the lexer once an image has been captured.
var errFound = errors.New("found")

// capture is an io.Writer that keeps the first write larger than min.
type capture struct {
	min int
	img []byte
}

func (c *capture) Write(p []byte) (int, error) {
	if len(p) <= c.min {
		return len(p), nil
	}
	c.img = p
	return len(p), errFound
}

// Scan returns the first complete JPEG image in buf whose length exceeds
// minSize. The returned slice does not alias buf.
func Scan(buf []byte, minSize int) ([]byte, error) {
	c := &capture{min: minSize}
	err := Lex(c, bytes.NewReader(buf))
	if err == errFound {
		return c.img, nil
	}
	return nil, ErrNoImage
}

// Decode decodes a JPEG image.
func Decode(b []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("image can't be decoded: %w", err)
	}
	return img, nil
}
