/*
DESCRIPTION
  persistent.go provides Persistent, a Source keeping a single multipart
  connection to the camera open across fetches.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ipcam

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/mattn/go-mjpeg"

	"github.com/ausocean/camstream/device"
	"github.com/ausocean/camstream/revid/config"
	"github.com/ausocean/utils/logging"
)

// Persistent is an implementation of the Source interface that decodes
// successive parts of one long-lived multipart connection. On any error the
// connection is dropped and reopened by the next Fetch. A Persistent is not
// safe for concurrent use.
type Persistent struct {
	cfg    settings
	log    logging.Logger
	client *http.Client

	body   io.ReadCloser
	dec    *mjpeg.Decoder
	cancel context.CancelFunc
}

// NewPersistent returns a new Persistent. Set must be called before Fetch.
func NewPersistent(l logging.Logger) *Persistent {
	s, _ := check(config.Config{})
	return &Persistent{cfg: s, log: l}
}

// Name returns the name of the device.
func (p *Persistent) Name() string { return "Persistent" }

// Set uses the same fields of c as Poller.Set, except FetchBytes and
// MinJPEGSize which do not apply to a decoded stream. Any open connection
// is dropped.
func (p *Persistent) Set(c config.Config) error {
	s, err := check(c)
	p.cfg = s
	p.client = &http.Client{
		Transport: &http.Transport{ResponseHeaderTimeout: s.timeout},
	}
	p.drop()
	return err
}

// Fetch decodes the next part of the stream, connecting first if needed.
// Failures are returned wrapping device.ErrNoFrame.
func (p *Persistent) Fetch(ctx context.Context) (image.Image, error) {
	if p.dec == nil {
		err := p.open(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", device.ErrNoFrame, err)
		}
	}

	// Unblock the decoder if ctx ends mid-part.
	stop := context.AfterFunc(ctx, p.cancel)
	img, err := p.dec.Decode()
	stop()
	if err != nil {
		p.drop()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", device.ErrNoFrame, ctx.Err())
		}
		return nil, fmt.Errorf("%w: could not decode part: %w", device.ErrNoFrame, err)
	}
	return device.Downscale(img, p.cfg.downscale), nil
}

func (p *Persistent) open(ctx context.Context) error {
	if p.client == nil {
		p.client = &http.Client{}
	}

	// The connection outlives ctx, which only bounds connecting.
	connCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	req, err := http.NewRequestWithContext(connCtx, http.MethodGet, p.cfg.url, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		cancel()
		return fmt.Errorf("could not get stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	dec, err := mjpeg.NewDecoderFromResponse(resp)
	if err != nil {
		resp.Body.Close()
		cancel()
		return fmt.Errorf("could not create decoder: %w", err)
	}

	p.log.Info(pkg+"stream connected", "url", p.cfg.url)
	p.body, p.dec, p.cancel = resp.Body, dec, cancel
	return nil
}

// drop closes the open connection, if any.
func (p *Persistent) drop() {
	if p.dec == nil {
		return
	}
	p.body.Close()
	p.cancel()
	p.body, p.dec, p.cancel = nil, nil, nil
	p.log.Debug(pkg + "stream connection dropped")
}

// Close implements device.Source.
func (p *Persistent) Close() error {
	p.drop()
	return nil
}
