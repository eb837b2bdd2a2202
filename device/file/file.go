/*
DESCRIPTION
  file.go provides an implementation of the Source interface for recorded
  MJPEG files.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides an implementation of Source for MJPEG files.
package file

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/ausocean/camstream/codec/jpeg"
	"github.com/ausocean/camstream/device"
	"github.com/ausocean/camstream/revid/config"
	"github.com/ausocean/utils/logging"
)

// Indicate package when logging.
const pkg = "file: "

// Configuration defaults.
const (
	defaultDownscale = 0.5
	defaultFrameRate = 10
)

// Configuration field errors.
var (
	errBadInputPath = errors.New("input path unset")
	errBadDownscale = errors.New("downscale bad or unset, defaulting")
	errBadFrameRate = errors.New("frame rate bad or unset, defaulting")
)

// errNoFrames is returned when a pass over the file yields no frames.
var errNoFrames = errors.New("file holds no JPEG frames")

// File is an implementation of the Source interface that replays the JPEG
// frames of an MJPEG file, or of a file of concatenated JPEG images, at a
// fixed rate.
type File struct {
	path      string
	loop      bool
	downscale float64
	interval  time.Duration
	log       logging.Logger

	frames <-chan []byte
	errc   <-chan error
	stop   context.CancelFunc
	last   time.Time
}

// New returns a new File. Set must be called before Fetch.
func New(l logging.Logger) *File {
	return &File{log: l, downscale: defaultDownscale, interval: time.Second / defaultFrameRate}
}

// newWith returns a new File with required params provided i.e. the Set
// method does not need to be called.
func newWith(l logging.Logger, path string, loop bool, downscale float64, rate uint) *File {
	if rate == 0 {
		rate = defaultFrameRate
	}
	return &File{log: l, path: path, loop: loop, downscale: downscale, interval: time.Second / time.Duration(rate)}
}

// Name returns the name of the device.
func (f *File) Name() string { return "File" }

// Set uses the InputPath, Loop, Downscale and FrameRate fields of c. Bad
// fields are defaulted and reported in a device.MultiError. An open file is
// closed so that the next Fetch uses the new settings.
func (f *File) Set(c config.Config) error {
	var errs device.MultiError
	if c.InputPath == "" {
		errs = append(errs, errBadInputPath)
	}

	if c.Downscale <= 0 || c.Downscale > 1 {
		errs = append(errs, errBadDownscale)
		c.Downscale = defaultDownscale
	}

	if c.FrameRate == 0 {
		errs = append(errs, errBadFrameRate)
		c.FrameRate = defaultFrameRate
	}

	f.Close()
	f.path = c.InputPath
	f.loop = c.Loop
	f.downscale = c.Downscale
	f.interval = time.Second / time.Duration(c.FrameRate)

	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Fetch returns the next frame of the file, no sooner than one frame
// interval after the last. Failure to open or read the file, and the end of
// a file that is not looped, are returned wrapping device.ErrNoFrame. The
// file is reopened by the following Fetch.
func (f *File) Fetch(ctx context.Context) (image.Image, error) {
	if f.frames == nil {
		err := f.open()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", device.ErrNoFrame, err)
		}
	}

	if !f.last.IsZero() {
		wait := time.NewTimer(f.interval - time.Since(f.last))
		select {
		case <-ctx.Done():
			wait.Stop()
			return nil, ctx.Err()
		case <-wait.C:
		}
	}

	var b []byte
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame, ok := <-f.frames:
		if !ok {
			err := <-f.errc
			f.Close()
			return nil, fmt.Errorf("%w: %w", device.ErrNoFrame, err)
		}
		b = frame
	}
	f.last = time.Now()

	img, err := jpeg.Decode(b)
	if err != nil {
		return nil, err
	}
	return device.Downscale(img, f.downscale), nil
}

// Close stops reading the file. It may be fetched from again, starting from
// the beginning.
func (f *File) Close() error {
	if f.stop != nil {
		f.stop()
	}
	f.frames, f.errc, f.stop = nil, nil, nil
	f.last = time.Time{}
	return nil
}

// open opens the file and starts lexing its frames.
func (f *File) open() error {
	if f.path == "" {
		return errBadInputPath
	}
	r, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("could not open media file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan []byte)
	errc := make(chan error, 1)
	f.frames, f.errc, f.stop = frames, errc, cancel

	loop := f.loop
	go func() {
		defer close(frames)
		defer r.Close()
		errc <- f.lex(ctx, r, loop, frames)
	}()
	return nil
}

// lex sends the frames of r to frames until ctx is done or r is exhausted,
// seeking back to the start of r when loop is true.
func (f *File) lex(ctx context.Context, r io.ReadSeeker, loop bool, frames chan<- []byte) error {
	for {
		w := &frameWriter{ctx: ctx, frames: frames}
		err := jpeg.Lex(w, r)
		if err != io.EOF && err != io.ErrUnexpectedEOF {
			return err
		}
		if w.n == 0 {
			return errNoFrames
		}
		if !loop {
			return io.EOF
		}

		f.log.Debug(pkg+"looping input file", "frames", w.n)
		_, err = r.Seek(0, io.SeekStart)
		if err != nil {
			return fmt.Errorf("could not seek to start of file for input loop: %w", err)
		}
	}
}

// frameWriter is an io.Writer handing each write to a channel.
type frameWriter struct {
	ctx    context.Context
	frames chan<- []byte
	n      int
}

func (w *frameWriter) Write(p []byte) (int, error) {
	select {
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	case w.frames <- p:
		w.n++
		return len(p), nil
	}
}
