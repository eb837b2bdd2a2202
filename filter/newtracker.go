//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Selects the pure Go background model when camstream is built without
  Open CV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import "github.com/ausocean/camstream/revid/config"

// NewTracker returns the Tracker used by the motion filters.
func NewTracker(c config.Config) Tracker {
	return NewMOG(c.MotionHistory, c.MotionThreshold, c.MotionShadows)
}
