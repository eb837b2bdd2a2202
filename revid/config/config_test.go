/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:          dl,
		StreamURL:       defaultStreamURL,
		SourceMode:      defaultSourceMode,
		Downscale:       defaultDownscale,
		FetchTimeout:    defaultFetchTimeout,
		FetchBytes:      defaultFetchBytes,
		MinJPEGSize:     defaultMinJPEGSize,
		RetryDelay:      defaultRetryDelay,
		FrameBuffer:     defaultFrameBuffer,
		FrameRate:       defaultFrameRate,
		JPEGQuality:     defaultJPEGQuality,
		HTTPAddress:     defaultHTTPAddress,
		MotionHistory:   defaultMotionHistory,
		MotionThreshold: defaultMotionThreshold,
		MotionMinArea:   defaultMotionMinArea,
		CLAHEClipLimit:  defaultCLAHEClipLimit,
		CLAHETiles:      defaultCLAHETiles,
		Gamma:           defaultGamma,
		KernelSize:      defaultKernelSize,
		DatasetDir:      defaultDatasetDir,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateOutOfRange(t *testing.T) {
	dl := &dumbLogger{}
	got := Config{
		Logger:      dl,
		StreamURL:   "not a url",
		Downscale:   1.5,
		JPEGQuality: 101,
		KernelSize:  maxKernelSize + 1,
		SourceMode:  42,
	}
	got.Validate()

	if got.StreamURL != defaultStreamURL {
		t.Errorf("StreamURL not defaulted: %q", got.StreamURL)
	}
	if got.Downscale != defaultDownscale {
		t.Errorf("Downscale not defaulted: %v", got.Downscale)
	}
	if got.JPEGQuality != defaultJPEGQuality {
		t.Errorf("JPEGQuality not defaulted: %v", got.JPEGQuality)
	}
	if got.KernelSize != defaultKernelSize {
		t.Errorf("KernelSize not defaulted: %v", got.KernelSize)
	}
	if got.SourceMode != defaultSourceMode {
		t.Errorf("SourceMode not defaulted: %v", got.SourceMode)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"CLAHEClipLimit":  "3.5",
		"CLAHETiles":      "4",
		"DatasetDir":      "/srv/images",
		"Downscale":       "0.25",
		"FetchBytes":      "50000",
		"FetchTimeout":    "2",
		"FrameBuffer":     "3",
		"FrameRate":       "25",
		"Gamma":           "0.8",
		"HTTPAddress":     "localhost:8080",
		"InputPath":       "/srv/school.mjpeg",
		"JPEGQuality":     "90",
		"KernelSize":      "5",
		"Loop":            "true",
		"MinJPEGSize":     "200",
		"MotionHistory":   "250",
		"MotionMinArea":   "120",
		"MotionShadows":   "false",
		"MotionThreshold": "16",
		"RetryDelay":      "250",
		"SourceMode":      "File",
		"StreamURL":       "http://10.0.0.2:81/stream",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:          dl,
		CLAHEClipLimit:  3.5,
		CLAHETiles:      4,
		DatasetDir:      "/srv/images",
		Downscale:       0.25,
		FetchBytes:      50000,
		FetchTimeout:    2 * time.Second,
		FrameBuffer:     3,
		FrameRate:       25,
		Gamma:           0.8,
		HTTPAddress:     "localhost:8080",
		InputPath:       "/srv/school.mjpeg",
		JPEGQuality:     90,
		KernelSize:      5,
		Loop:            true,
		MinJPEGSize:     200,
		MotionHistory:   250,
		MotionMinArea:   120,
		MotionShadows:   false,
		MotionThreshold: 16,
		RetryDelay:      250 * time.Millisecond,
		SourceMode:      SourceFile,
		StreamURL:       "http://10.0.0.2:81/stream",
	}

	got := Config{Logger: dl, MotionShadows: true}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "basic",
			in:   "StreamURL=http://cam:81/stream\n# comment\n\n Gamma = 2.0 \n",
			want: map[string]string{"StreamURL": "http://cam:81/stream", "Gamma": "2.0"},
		},
		{
			name: "value with equals",
			in:   "StreamURL=http://cam/stream?a=b",
			want: map[string]string{"StreamURL": "http://cam/stream?a=b"},
		},
		{
			name:    "missing separator",
			in:      "Gamma 2.0",
			wantErr: true,
		},
	}

	for _, test := range tests {
		got, err := ParseVars(strings.NewReader(test.in))
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if err != nil {
			continue
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("%s: got %v want %v", test.name, got, test.want)
		}
	}
}
