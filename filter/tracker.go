/*
DESCRIPTION
  tracker.go provides the Tracker interface for background subtraction
  algorithms.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"image"
)

// Tracker is the interface the motion filters expect for background
// subtraction algorithms.
type Tracker interface {
	// Apply updates the background model with a grayscale frame and returns
	// its mask, with pixels labelled Background, Shadow or Foreground.
	Apply(img *image.Gray) (*image.Gray, error)
	Close() error
}
