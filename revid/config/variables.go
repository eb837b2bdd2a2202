/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyCLAHEClipLimit  = "CLAHEClipLimit"
	KeyCLAHETiles      = "CLAHETiles"
	KeyDatasetDir      = "DatasetDir"
	KeyDownscale       = "Downscale"
	KeyFetchBytes      = "FetchBytes"
	KeyFetchTimeout    = "FetchTimeout"
	KeyFrameBuffer     = "FrameBuffer"
	KeyFrameRate       = "FrameRate"
	KeyGamma           = "Gamma"
	KeyHTTPAddress     = "HTTPAddress"
	KeyInputPath       = "InputPath"
	KeyJPEGQuality     = "JPEGQuality"
	KeyKernelSize      = "KernelSize"
	KeyLogLevel        = "LogLevel"
	KeyLoop            = "Loop"
	KeyMinJPEGSize     = "MinJPEGSize"
	KeyMotionHistory   = "MotionHistory"
	KeyMotionMinArea   = "MotionMinArea"
	KeyMotionShadows   = "MotionShadows"
	KeyMotionThreshold = "MotionThreshold"
	KeyRetryDelay      = "RetryDelay"
	KeySourceMode      = "SourceMode"
	KeyStreamURL       = "StreamURL"
	KeySuppress        = "Suppress"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	// Source defaults.
	defaultStreamURL    = "http://192.168.18.248:81/stream"
	defaultSourceMode   = SourcePoll
	defaultDownscale    = 0.5
	defaultFetchTimeout = 5 * time.Second
	defaultFetchBytes   = 100000
	defaultMinJPEGSize  = 100
	defaultRetryDelay   = time.Second
	defaultFrameRate    = 10

	// Output defaults.
	defaultFrameBuffer = 1
	defaultJPEGQuality = 75
	defaultHTTPAddress = "0.0.0.0:5000"

	// Motion tracker defaults.
	defaultMotionHistory   = 100
	defaultMotionThreshold = 40.0
	defaultMotionMinArea   = 500.0

	// Transform defaults.
	defaultCLAHEClipLimit = 2.0
	defaultCLAHETiles     = 8
	defaultGamma          = 1.5
	defaultKernelSize     = 37
	maxKernelSize         = 101
	defaultDatasetDir     = "static/images"

	defaultVerbosity = logging.Info
)

// Variables describes the variables that can be used for camstream control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyCLAHEClipLimit,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.CLAHEClipLimit = parseFloat(KeyCLAHEClipLimit, v, c) },
		Validate: func(c *Config) {
			if c.CLAHEClipLimit <= 0 {
				c.LogInvalidField(KeyCLAHEClipLimit, defaultCLAHEClipLimit)
				c.CLAHEClipLimit = defaultCLAHEClipLimit
			}
		},
	},
	{
		Name:   KeyCLAHETiles,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.CLAHETiles = parseUint(KeyCLAHETiles, v, c) },
		Validate: func(c *Config) {
			c.CLAHETiles = lessThanOrEqual(KeyCLAHETiles, c.CLAHETiles, 0, c, defaultCLAHETiles)
		},
	},
	{
		Name:   KeyDatasetDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.DatasetDir = v },
		Validate: func(c *Config) {
			if c.DatasetDir == "" {
				c.LogInvalidField(KeyDatasetDir, defaultDatasetDir)
				c.DatasetDir = defaultDatasetDir
			}
		},
	},
	{
		Name:   KeyDownscale,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Downscale = parseFloat(KeyDownscale, v, c) },
		Validate: func(c *Config) {
			if c.Downscale <= 0 || c.Downscale > 1 {
				c.LogInvalidField(KeyDownscale, defaultDownscale)
				c.Downscale = defaultDownscale
			}
		},
	},
	{
		Name:   KeyFetchBytes,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FetchBytes = parseUint(KeyFetchBytes, v, c) },
		Validate: func(c *Config) {
			c.FetchBytes = lessThanOrEqual(KeyFetchBytes, c.FetchBytes, 0, c, defaultFetchBytes)
		},
	},
	{
		Name: KeyFetchTimeout,
		Type: typeUint,
		Update: func(c *Config, v string) {
			c.FetchTimeout = time.Duration(parseUint(KeyFetchTimeout, v, c)) * time.Second
		},
		Validate: func(c *Config) {
			if c.FetchTimeout <= 0 {
				c.LogInvalidField(KeyFetchTimeout, defaultFetchTimeout)
				c.FetchTimeout = defaultFetchTimeout
			}
		},
	},
	{
		Name:   KeyFrameBuffer,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameBuffer = parseUint(KeyFrameBuffer, v, c) },
		Validate: func(c *Config) {
			c.FrameBuffer = lessThanOrEqual(KeyFrameBuffer, c.FrameBuffer, 0, c, defaultFrameBuffer)
		},
	},
	{
		Name:   KeyFrameRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameRate = parseUint(KeyFrameRate, v, c) },
		Validate: func(c *Config) {
			c.FrameRate = lessThanOrEqual(KeyFrameRate, c.FrameRate, 0, c, defaultFrameRate)
		},
	},
	{
		Name:   KeyGamma,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Gamma = parseFloat(KeyGamma, v, c) },
		Validate: func(c *Config) {
			if c.Gamma <= 0 {
				c.LogInvalidField(KeyGamma, defaultGamma)
				c.Gamma = defaultGamma
			}
		},
	},
	{
		Name:   KeyHTTPAddress,
		Type:   typeString,
		Update: func(c *Config, v string) { c.HTTPAddress = v },
		Validate: func(c *Config) {
			if c.HTTPAddress == "" {
				c.LogInvalidField(KeyHTTPAddress, defaultHTTPAddress)
				c.HTTPAddress = defaultHTTPAddress
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
		Validate: func(c *Config) {
			if c.SourceMode == SourceFile && c.InputPath == "" {
				c.Logger.Warning("InputPath unset for file source")
			}
		},
	},
	{
		Name:   KeyJPEGQuality,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.JPEGQuality = int(parseUint(KeyJPEGQuality, v, c)) },
		Validate: func(c *Config) {
			if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
				c.LogInvalidField(KeyJPEGQuality, defaultJPEGQuality)
				c.JPEGQuality = defaultJPEGQuality
			}
		},
	},
	{
		Name:   KeyKernelSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.KernelSize = parseUint(KeyKernelSize, v, c) },
		Validate: func(c *Config) {
			if c.KernelSize == 0 || c.KernelSize > maxKernelSize {
				c.LogInvalidField(KeyKernelSize, defaultKernelSize)
				c.KernelSize = defaultKernelSize
			}
		},
	},
	{
		Name: KeyLogLevel,
		Type: "enum:debug,info,warning,error,fatal",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "debug":
				c.LogLevel = logging.Debug
			case "info":
				c.LogLevel = logging.Info
			case "warning":
				c.LogLevel = logging.Warning
			case "error":
				c.LogLevel = logging.Error
			case "fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid LogLevel param", "value", v)
				return
			}
			c.Logger.SetLevel(c.LogLevel)
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyMinJPEGSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MinJPEGSize = parseUint(KeyMinJPEGSize, v, c) },
		Validate: func(c *Config) {
			c.MinJPEGSize = lessThanOrEqual(KeyMinJPEGSize, c.MinJPEGSize, 0, c, defaultMinJPEGSize)
		},
	},
	{
		Name:   KeyMotionHistory,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionHistory = parseUint(KeyMotionHistory, v, c) },
		Validate: func(c *Config) {
			c.MotionHistory = lessThanOrEqual(KeyMotionHistory, c.MotionHistory, 0, c, defaultMotionHistory)
		},
	},
	{
		Name:   KeyMotionMinArea,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MotionMinArea = parseFloat(KeyMotionMinArea, v, c) },
		Validate: func(c *Config) {
			if c.MotionMinArea <= 0 {
				c.LogInvalidField(KeyMotionMinArea, defaultMotionMinArea)
				c.MotionMinArea = defaultMotionMinArea
			}
		},
	},
	{
		Name:   KeyMotionShadows,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.MotionShadows = parseBool(KeyMotionShadows, v, c) },
	},
	{
		Name:   KeyMotionThreshold,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MotionThreshold = parseFloat(KeyMotionThreshold, v, c) },
		Validate: func(c *Config) {
			if c.MotionThreshold <= 0 {
				c.LogInvalidField(KeyMotionThreshold, defaultMotionThreshold)
				c.MotionThreshold = defaultMotionThreshold
			}
		},
	},
	{
		Name: KeyRetryDelay,
		Type: typeUint,
		Update: func(c *Config, v string) {
			c.RetryDelay = time.Duration(parseUint(KeyRetryDelay, v, c)) * time.Millisecond
		},
		Validate: func(c *Config) {
			if c.RetryDelay <= 0 {
				c.LogInvalidField(KeyRetryDelay, defaultRetryDelay)
				c.RetryDelay = defaultRetryDelay
			}
		},
	},
	{
		Name: KeySourceMode,
		Type: "enum:poll,persistent,file",
		Update: func(c *Config, v string) {
			c.SourceMode = parseEnum(
				KeySourceMode,
				v,
				map[string]uint8{
					"poll":       SourcePoll,
					"persistent": SourcePersistent,
					"file":       SourceFile,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.SourceMode {
			case SourcePoll, SourcePersistent, SourceFile:
			default:
				c.LogInvalidField(KeySourceMode, defaultSourceMode)
				c.SourceMode = defaultSourceMode
			}
		},
	},
	{
		Name:   KeyStreamURL,
		Type:   typeString,
		Update: func(c *Config, v string) { c.StreamURL = v },
		Validate: func(c *Config) {
			u, err := url.Parse(c.StreamURL)
			if c.StreamURL == "" || err != nil || u.Host == "" {
				c.LogInvalidField(KeyStreamURL, defaultStreamURL)
				c.StreamURL = defaultStreamURL
			}
		},
	},
	{
		Name: KeySuppress,
		Type: typeBool,
		Update: func(c *Config, v string) {
			c.Suppress = parseBool(KeySuppress, v, c)
			if l, ok := c.Logger.(*logging.JSONLogger); ok {
				l.SetSuppress(c.Suppress)
			}
		},
	},
}

// Defaults returns a Config whose fields hold the default values and whose
// boolean options are on where the server expects them to be.
func Defaults(l logging.Logger) Config {
	c := Config{Logger: l, LogLevel: defaultVerbosity, MotionShadows: true, Loop: true}
	c.Validate()
	return c
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("invalid %s param", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
