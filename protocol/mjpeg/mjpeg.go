/*
NAME
  mjpeg.go

DESCRIPTION
  mjpeg.go provides an Encoder that wraps JPEG images into the parts of a
  multipart/x-mixed-replace MJPEG stream for browser viewing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mjpeg provides the wire format of the multipart MJPEG streams
// served to clients.
package mjpeg

import (
	"fmt"
	"io"
)

const (
	// Boundary separates successive images of the stream.
	Boundary = "frame"

	// ContentType is the Content-Type of an MJPEG stream response.
	ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

	partHeader = "--" + Boundary + "\r\nContent-Type: image/jpeg\r\n\r\n"
	partTail   = "\r\n"
)

// flusher is implemented by destinations that buffer, such as
// http.ResponseWriter.
type flusher interface {
	Flush()
}

// Encoder writes JPEG images to dst as multipart parts.
type Encoder struct {
	dst   io.Writer
	parts uint
}

// NewEncoder returns a new Encoder writing to dst.
func NewEncoder(dst io.Writer) *Encoder { return &Encoder{dst: dst} }

// Write writes jpeg as a single part, i.e.
// --frame\r\nContent-Type: image/jpeg\r\n\r\n<jpeg>\r\n, and flushes dst if
// it supports flushing. Write implements io.Writer.
func (e *Encoder) Write(jpeg []byte) (int, error) {
	part := make([]byte, 0, len(partHeader)+len(jpeg)+len(partTail))
	part = append(part, partHeader...)
	part = append(part, jpeg...)
	part = append(part, partTail...)

	_, err := e.dst.Write(part)
	if err != nil {
		return 0, fmt.Errorf("could not write part: %w", err)
	}
	if f, ok := e.dst.(flusher); ok {
		f.Flush()
	}
	e.parts++
	return len(jpeg), nil
}

// Parts returns the number of parts written.
func (e *Encoder) Parts() uint { return e.parts }
