/*
DESCRIPTION
  device.go provides Source, an interface that describes a configurable
  source of decoded camera frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for sources
// from which camera frames can be obtained.
package device

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ausocean/camstream/revid/config"
)

// ErrNoFrame is returned, wrapped with its cause, when a source could not
// produce a frame. The caller is expected to retry later.
var ErrNoFrame = errors.New("no frame available")

// Source describes a configurable source of frames.
type Source interface {
	// Name returns the name of the Source.
	Name() string

	// Set allows for configuration of the Source using a Config struct. All,
	// some or none of the fields of the Config struct may be used for
	// configuration by an implementation. An implementation should specify
	// what fields are considered.
	Set(c config.Config) error

	// Fetch blocks until a frame is obtained, ctx is done, or the source
	// fails, in which case the returned error wraps ErrNoFrame.
	Fetch(ctx context.Context) (image.Image, error)

	// Close releases any connection held by the Source. A closed Source may
	// be fetched from again, reopening its connection.
	Close() error
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of configuration parameters
// for Sources.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Unwrap allows errors.Is and errors.As to inspect each collected error.
func (me MultiError) Unwrap() []error { return me }
