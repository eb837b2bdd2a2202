/*
NAME
  config.go

DESCRIPTION
  config.go provides the Config struct holding the parameters of a camstream
  server, along with validation and string-map based updating.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for camstream.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
)

// Frame source modes.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	// SourcePoll opens a new connection to the camera for every frame.
	SourcePoll

	// SourcePersistent keeps one multipart connection open and decodes
	// successive parts from it.
	SourcePersistent

	// SourceFile replays the JPEG frames of a recorded MJPEG file.
	SourceFile
)

// Config provides parameters relevant to a camstream server. Default values
// for these fields are defined as consts in variables.go.
type Config struct {
	// StreamURL is the URL of the upstream camera MJPEG stream, i.e.
	// scheme://host:port/path.
	StreamURL string

	// SourceMode defines how frames are obtained. Valid values are
	// SourcePoll and SourcePersistent, which read StreamURL, and SourceFile,
	// which reads InputPath.
	SourceMode uint8

	// InputPath is the path of the MJPEG file read by SourceFile.
	InputPath string

	Loop      bool // Whether SourceFile restarts from the beginning of the file at its end.
	FrameRate uint // Frames per second emitted by SourceFile.

	Downscale    float64       // Factor applied to frame dimensions after decoding, in (0, 1].
	FetchTimeout time.Duration // Timeout of a single poll of the camera.
	FetchBytes   uint          // Maximum number of bytes read from the camera per poll.
	MinJPEGSize  uint          // JPEG payloads no larger than this are ignored.
	RetryDelay   time.Duration // Delay before fetching again after a failed fetch.
	FrameBuffer  uint          // Capacity of a session's encoded frame queue.

	// JPEGQuality is a value 1-100 inclusive, controlling JPEG compression of
	// emitted frames. 100 represents minimal compression.
	JPEGQuality int

	// HTTPAddress is the address the server listens on.
	HTTPAddress string

	MotionHistory   uint    // Length of the tracker's history in frames.
	MotionThreshold float64 // Squared Mahalanobis distance above which a pixel is foreground.
	MotionShadows   bool    // Whether the tracker labels shadow pixels separately.
	MotionMinArea   float64 // Regions with fewer pixels than this are not boxed.

	CLAHEClipLimit float64 // Contrast limit of the CLAHE transform.
	CLAHETiles     uint    // Number of CLAHE tiles along each axis.
	Gamma          float64 // Default gamma of the gamma transform.

	// KernelSize is the default side length of the rectangular structuring
	// element used by the morphology routes.
	KernelSize uint

	// DatasetDir is the directory holding the still images served on the
	// morphology routes.
	DatasetDir string

	// Logger holds an implementation of the Logger interface.
	// This must be set for camstream to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Suppress bool // Holds logger suppression state.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// ParseVars reads Key=Value lines from r. Blank lines and lines starting
// with # are skipped.
func ParseVars(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected Key=Value, got %q", n, line)
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("could not scan vars: %w", err)
	}
	return vars, nil
}
