/*
DESCRIPTION
  mjpeg_test.go provides testing for the multipart Encoder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mjpeg

import (
	"bytes"
	"errors"
	"testing"
)

type flushBuffer struct {
	bytes.Buffer
	flushes int
}

func (f *flushBuffer) Flush() { f.flushes++ }

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestEncoderWrite(t *testing.T) {
	var dst flushBuffer
	e := NewEncoder(&dst)

	frames := [][]byte{{0xff, 0xd8, 0xff, 0xd9}, {0xff, 0xd8, 'x', 0xff, 0xd9}}
	for _, f := range frames {
		n, err := e.Write(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != len(f) {
			t.Errorf("unexpected write count: got %d want %d", n, len(f))
		}
	}

	want := "--frame\r\nContent-Type: image/jpeg\r\n\r\n\xff\xd8\xff\xd9\r\n" +
		"--frame\r\nContent-Type: image/jpeg\r\n\r\n\xff\xd8x\xff\xd9\r\n"
	if got := dst.String(); got != want {
		t.Errorf("unexpected stream:\ngot :%q\nwant:%q", got, want)
	}
	if dst.flushes != len(frames) {
		t.Errorf("unexpected flush count: got %d want %d", dst.flushes, len(frames))
	}
	if e.Parts() != uint(len(frames)) {
		t.Errorf("unexpected part count: got %d want %d", e.Parts(), len(frames))
	}
}

func TestEncoderWriteError(t *testing.T) {
	e := NewEncoder(failWriter{})
	_, err := e.Write([]byte{0xff, 0xd8, 0xff, 0xd9})
	if err == nil {
		t.Fatal("expected error from failing destination")
	}
	if e.Parts() != 0 {
		t.Errorf("failed write counted as a part")
	}
}

func TestContentType(t *testing.T) {
	const want = "multipart/x-mixed-replace; boundary=frame"
	if ContentType != want {
		t.Errorf("unexpected content type: got %q want %q", ContentType, want)
	}
}
