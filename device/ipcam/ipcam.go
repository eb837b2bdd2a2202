/*
DESCRIPTION
  ipcam.go provides implementations of the Source interface for networked
  cameras serving a motion-JPEG stream over HTTP.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ipcam provides implementations of the Source interface for IP
// cameras serving multipart/x-mixed-replace JPEG streams, such as the
// ESP32-S3 camera firmware.
package ipcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/ausocean/camstream/codec/jpeg"
	"github.com/ausocean/camstream/device"
	"github.com/ausocean/camstream/revid/config"
	"github.com/ausocean/utils/logging"
)

// Indicate package when logging.
const pkg = "ipcam: "

// Configuration defaults.
const (
	defaultStreamURL    = "http://192.168.18.248:81/stream"
	defaultDownscale    = 0.5
	defaultFetchTimeout = 5 * time.Second
	defaultFetchBytes   = 100000
	defaultMinJPEGSize  = 100
)

// Configuration field errors.
var (
	errBadStreamURL    = errors.New("stream URL bad or unset, defaulting")
	errBadDownscale    = errors.New("downscale bad or unset, defaulting")
	errBadFetchTimeout = errors.New("fetch timeout bad or unset, defaulting")
	errBadFetchBytes   = errors.New("fetch bytes bad or unset, defaulting")
)

// New returns the Source for the SourceMode of c, already Set with c. Field
// errors from Set are logged and the defaults used.
func New(l logging.Logger, c config.Config) device.Source {
	var s device.Source
	switch c.SourceMode {
	case config.SourcePersistent:
		s = NewPersistent(l)
	default:
		s = NewPoller(l)
	}
	err := s.Set(c)
	if err != nil {
		l.Warning(pkg+"source config has invalid fields", "source", s.Name(), "error", err.Error())
	}
	return s
}

// settings are the config fields used by the IP camera sources.
type settings struct {
	url       string
	downscale float64
	timeout   time.Duration
	bytes     int64
	minSize   int
}

// check validates the fields of c used by the IP camera sources, defaulting
// bad fields and collecting an error for each.
func check(c config.Config) (settings, error) {
	var errs device.MultiError
	if c.StreamURL == "" {
		errs = append(errs, errBadStreamURL)
		c.StreamURL = defaultStreamURL
	}

	if c.Downscale <= 0 || c.Downscale > 1 {
		errs = append(errs, errBadDownscale)
		c.Downscale = defaultDownscale
	}

	if c.FetchTimeout <= 0 {
		errs = append(errs, errBadFetchTimeout)
		c.FetchTimeout = defaultFetchTimeout
	}

	if c.FetchBytes == 0 {
		errs = append(errs, errBadFetchBytes)
		c.FetchBytes = defaultFetchBytes
	}

	if c.MinJPEGSize == 0 {
		c.MinJPEGSize = defaultMinJPEGSize
	}

	s := settings{
		url:       c.StreamURL,
		downscale: c.Downscale,
		timeout:   c.FetchTimeout,
		bytes:     int64(c.FetchBytes),
		minSize:   int(c.MinJPEGSize),
	}
	if len(errs) != 0 {
		return s, errs
	}
	return s, nil
}

// Poller is an implementation of the Source interface that opens a new
// connection to the camera for every frame, reads a bounded chunk of the
// stream and extracts the first complete JPEG from it.
type Poller struct {
	cfg    settings
	log    logging.Logger
	client *http.Client
}

// NewPoller returns a new Poller. Set must be called before Fetch.
func NewPoller(l logging.Logger) *Poller {
	s, _ := check(config.Config{})
	return &Poller{cfg: s, log: l, client: &http.Client{}}
}

// Name returns the name of the device.
func (p *Poller) Name() string { return "Poller" }

// Set uses the StreamURL, Downscale, FetchTimeout, FetchBytes and
// MinJPEGSize fields of c. Bad fields are defaulted and reported in a
// device.MultiError.
func (p *Poller) Set(c config.Config) error {
	s, err := check(c)
	p.cfg = s
	return err
}

// Fetch polls the camera once. Network errors, timeouts, bad statuses and
// chunks holding no complete JPEG are returned wrapping device.ErrNoFrame.
func (p *Poller) Fetch(ctx context.Context) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create request: %w", device.ErrNoFrame, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not get stream: %w", device.ErrNoFrame, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status: %s", device.ErrNoFrame, resp.Status)
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.bytes))
	if err != nil {
		// A partial chunk may still hold a frame.
		p.log.Debug(pkg+"stream read ended early", "error", err.Error(), "bytes", len(buf))
	}

	b, err := jpeg.Scan(buf, p.cfg.minSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrNoFrame, err)
	}

	img, err := jpeg.Decode(b)
	if err != nil {
		return nil, err
	}
	return device.Downscale(img, p.cfg.downscale), nil
}

// Close implements device.Source. A Poller holds no open connection between
// fetches.
func (p *Poller) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
