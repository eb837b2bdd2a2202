/*
NAME
  lex.go

DESCRIPTION
  lex.go provides a lexer to extract separate JPEG images from a JPEG stream.
  This could either be a series of descrete JPEG images, or an MJPEG stream
  with multipart headers between the images.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package jpeg provides lexing, scanning and encoding of JPEG images carried
// in MJPEG streams.
package jpeg

import (
	"bufio"
	"io"
)

// JPEG marker codes.
const (
	codeSOI = 0xd8 // Start of image.
	codeEOI = 0xd9 // End of image.
)

// Lex parses JPEG frames read from src into separate writes to dst. Bytes
// outside of a frame, such as multipart boundaries and part headers, are
// discarded. Lex returns io.EOF if src ends between frames and
// io.ErrUnexpectedEOF if it ends inside one.
func Lex(dst io.Writer, src io.Reader) error {
	r := bufio.NewReader(src)
	for {
		err := seekSOI(r)
		if err != nil {
			return err
		}

		buf := make([]byte, 2, 4<<10)
		buf[0], buf[1] = 0xff, codeSOI
		nImg := 1

		var last byte
		for {
			b, err := r.ReadByte()
			if err != nil {
				if err == io.EOF {
					return io.ErrUnexpectedEOF
				}
				return err
			}

			buf = append(buf, b)

			if last == 0xff && b == codeSOI {
				nImg++
			}

			if last == 0xff && b == codeEOI {
				nImg--
			}

			if nImg == 0 {
				_, err = dst.Write(buf)
				if err != nil {
					return err
				}
				break
			}

			last = b
		}
	}
}

// seekSOI discards bytes from r up to and including the next start of
// image marker.
func seekSOI(r *bufio.Reader) error {
	var last byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if last == 0xff && b == codeSOI {
			return nil
		}
		last = b
	}
}
