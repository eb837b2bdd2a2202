/*
DESCRIPTION
  session.go provides the stream session, pairing a producer routine that
  fetches, transforms and encodes frames with the response writer that
  emits them as multipart parts.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package revid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ausocean/camstream/codec/jpeg"
	"github.com/ausocean/camstream/device"
	"github.com/ausocean/camstream/filter"
	"github.com/ausocean/camstream/protocol/mjpeg"
	"github.com/ausocean/camstream/revid/config"
	"github.com/ausocean/utils/logging"
)

// session is one client's stream. It owns its source and filter, and with
// them any background model, for its whole life.
type session struct {
	id     string
	stream string
	cfg    config.Config
	log    logging.Logger
	src    device.Source
	filter filter.Filter

	// rebuild returns a fresh filter for the session's stream. It is used
	// when the source's frame size changes under a filter holding a model
	// of the old size.
	rebuild func() (filter.Filter, error)
}

// run streams frames to enc until ctx is done or a write to enc fails, then
// releases the session's source and filter.
func (s *session) run(ctx context.Context, enc *mjpeg.Encoder) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan []byte, s.cfg.FrameBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.produce(ctx, frames)
	}()

	s.log.Info(pkg+"session started", "session", s.id, "stream", s.stream, "source", s.src.Name())
	for b := range frames {
		_, err := enc.Write(b)
		if err != nil {
			s.log.Info(pkg+"could not write frame, ending session", "session", s.id, "error", err.Error())
			break
		}
	}

	cancel()
	<-done
	s.close()
	s.log.Info(pkg+"session ended", "session", s.id, "frames", enc.Parts())
}

// produce sends encoded frames to out until ctx is done, and closes out.
func (s *session) produce(ctx context.Context, out chan<- []byte) {
	defer close(out)
	for {
		img, err := s.src.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, device.ErrNoFrame):
			s.log.Warning(pkg+"no frame from source, retrying", "session", s.id, "error", err.Error(), "delay", s.cfg.RetryDelay.String())
			if !sleep(ctx, s.cfg.RetryDelay) {
				return
			}
			continue
		case err != nil:
			s.log.Warning(pkg+"could not get frame, skipping", "session", s.id, "error", err.Error())
			continue
		}

		img, err = s.transform(img)
		if errors.Is(err, errNoFilter) {
			s.log.Error(pkg+"could not rebuild filter, ending session", "session", s.id, "error", err.Error())
			return
		}
		if err != nil {
			s.log.Warning(pkg+"could not transform frame, skipping", "session", s.id, "error", err.Error())
			continue
		}

		b, err := jpeg.Encode(img, s.cfg.JPEGQuality)
		if err != nil {
			s.log.Error(pkg+"could not encode frame, skipping", "session", s.id, "error", err.Error())
			continue
		}

		select {
		case out <- b:
		case <-ctx.Done():
			return
		}
	}
}

// errNoFilter is returned by transform when the session's filter could not
// be rebuilt.
var errNoFilter = errors.New("no filter")

// transform applies the session's filter to img. A frame whose size differs
// from the frames before it replaces the filter with a fresh one, which is
// then applied.
func (s *session) transform(img image.Image) (image.Image, error) {
	out, err := s.filter.Apply(img)
	if !errors.Is(err, filter.ErrDimensionMismatch) || s.rebuild == nil {
		return out, err
	}

	s.log.Info(pkg+"frame size changed, rebuilding filter", "session", s.id, "size", img.Bounds().Size().String())
	f, err := s.rebuild()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoFilter, err)
	}
	err = s.filter.Close()
	if err != nil {
		s.log.Error(pkg+"could not close filter", "session", s.id, "error", err.Error())
	}
	s.filter = f
	return s.filter.Apply(img)
}

func (s *session) close() {
	err := s.filter.Close()
	if err != nil {
		s.log.Error(pkg+"could not close filter", "session", s.id, "error", err.Error())
	}
	err = s.src.Close()
	if err != nil {
		s.log.Error(pkg+"could not close source", "session", s.id, "error", err.Error())
	}
}

// sleep waits for d, returning false if ctx is done first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
