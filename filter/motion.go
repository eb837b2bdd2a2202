/*
DESCRIPTION
  Filters that run a background subtraction Tracker over a stream. Motion
  draws bounding boxes around moving regions and the frame rate onto the
  frame; Mask emits the tracker's foreground mask itself.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/camstream/revid/config"
)

const (
	defaultMotionMinArea = 500
	boxThickness         = 2
	fpsWindow            = 8 // Frame intervals averaged for the FPS overlay.
)

var (
	boxColour  = color.RGBA{0, 255, 0, 255}
	textColour = color.RGBA{0, 0, 255, 255}
	textOrigin = image.Pt(10, 30)
)

// Motion is a filter that performs motion detection using a supplied
// Tracker, outlining regions of motion on the frame.
type Motion struct {
	tracker Tracker
	minArea int
	fps     *fpsMeter
}

// NewMotion returns a pointer to a new Motion filter struct. The filter
// takes ownership of t.
func NewMotion(t Tracker, c config.Config) *Motion {
	// Validate parameters.
	if c.MotionMinArea <= 0 {
		c.LogInvalidField("MotionMinArea", defaultMotionMinArea)
		c.MotionMinArea = defaultMotionMinArea
	}

	return &Motion{
		tracker: t,
		minArea: int(math.Ceil(c.MotionMinArea)),
		fps:     newFPSMeter(fpsWindow),
	}
}

// Close frees the resources of the tracker.
func (m *Motion) Close() error { return m.tracker.Close() }

// Apply implements Filter. It returns a colour copy of img with a box around
// each region of motion and the current frame rate written in the corner.
func (m *Motion) Apply(img image.Image) (image.Image, error) {
	mask, err := m.tracker.Apply(ToGray(img))
	if err != nil {
		return nil, fmt.Errorf("could not apply tracker: %w", err)
	}

	boxes, err := Regions(mask, m.minArea)
	if err != nil {
		return nil, fmt.Errorf("could not find regions: %w", err)
	}

	out := toRGBA(img)
	err = drawBoxes(out, boxes, boxColour, boxThickness)
	if err != nil {
		return nil, fmt.Errorf("could not draw regions: %w", err)
	}

	d := font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(textColour),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(out.Rect.Min.X+textOrigin.X, out.Rect.Min.Y+textOrigin.Y),
	}
	d.DrawString(fmt.Sprintf("FPS: %.2f", m.fps.tick(time.Now())))

	return out, nil
}

// Mask is a filter that replaces each frame with its foreground mask.
type Mask struct {
	tracker Tracker
}

// NewMask returns a new Mask filter. The filter takes ownership of t.
func NewMask(t Tracker) *Mask { return &Mask{tracker: t} }

// Apply implements Filter.
func (m *Mask) Apply(img image.Image) (image.Image, error) {
	mask, err := m.tracker.Apply(ToGray(img))
	if err != nil {
		return nil, fmt.Errorf("could not apply tracker: %w", err)
	}
	return mask, nil
}

// Close frees the resources of the tracker.
func (m *Mask) Close() error { return m.tracker.Close() }

// fpsMeter estimates frame rate from the intervals between recent ticks.
type fpsMeter struct {
	last  time.Time
	rates []float64
	n     int
}

func newFPSMeter(window int) *fpsMeter {
	return &fpsMeter{rates: make([]float64, 0, window)}
}

// tick records a frame at now and returns the mean rate over the window.
func (f *fpsMeter) tick(now time.Time) float64 {
	defer func() { f.last = now }()
	if f.last.IsZero() {
		return 0
	}
	dt := now.Sub(f.last).Seconds()
	if dt <= 0 {
		return f.mean()
	}

	if len(f.rates) < cap(f.rates) {
		f.rates = append(f.rates, 1/dt)
	} else {
		f.rates[f.n] = 1 / dt
	}
	f.n = (f.n + 1) % cap(f.rates)
	return f.mean()
}

func (f *fpsMeter) mean() float64 {
	if len(f.rates) == 0 {
		return 0
	}
	return stat.Mean(f.rates, nil)
}
