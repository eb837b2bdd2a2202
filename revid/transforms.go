/*
DESCRIPTION
  transforms.go provides the table of stream transforms, each building a
  fresh filter for one stream session from the config and the request
  query.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package revid

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/ausocean/camstream/filter"
	"github.com/ausocean/camstream/revid/config"
)

// errBadQuery is returned when a query parameter of a stream request cannot
// be used.
var errBadQuery = errors.New("bad query parameter")

// transform names a stream and builds its filter.
type transform struct {
	name  string
	title string
	build func(c config.Config, q url.Values) (filter.Filter, error)
}

// transforms lists the streams served at /<name>_stream, in index order.
var transforms = []transform{
	{
		name:  "original",
		title: "Original",
		build: func(config.Config, url.Values) (filter.Filter, error) { return filter.NewNoOp(), nil },
	},
	{
		name:  "motion",
		title: "Motion detection",
		build: func(c config.Config, _ url.Values) (filter.Filter, error) {
			return filter.NewMotion(filter.NewTracker(c), c), nil
		},
	},
	{
		name:  "mask",
		title: "Foreground mask",
		build: func(c config.Config, _ url.Values) (filter.Filter, error) {
			return filter.NewMask(filter.NewTracker(c)), nil
		},
	},
	{
		name:  "clahe",
		title: "CLAHE",
		build: func(c config.Config, _ url.Values) (filter.Filter, error) { return filter.NewCLAHE(c), nil },
	},
	{
		name:  "equalized",
		title: "Histogram equalisation",
		build: func(config.Config, url.Values) (filter.Filter, error) { return filter.NewEqualize(), nil },
	},
	{
		name:  "gamma",
		title: "Gamma correction",
		build: func(c config.Config, q url.Values) (filter.Filter, error) {
			g, err := floatParam(q, "gamma", c.Gamma)
			if err != nil {
				return nil, err
			}
			if g <= 0 {
				return nil, fmt.Errorf("%w: gamma must be positive: %v", errBadQuery, g)
			}
			return filter.NewGamma(g), nil
		},
	},
	bitwise(filter.OpAnd, "Bitwise AND"),
	bitwise(filter.OpOr, "Bitwise OR"),
	bitwise(filter.OpXor, "Bitwise XOR"),
	{
		name:  "gaussian_noise",
		title: "Gaussian noise",
		build: func(_ config.Config, q url.Values) (filter.Filter, error) {
			mean, err := floatParam(q, "mean", filter.DefaultNoiseMean)
			if err != nil {
				return nil, err
			}
			std, err := floatParam(q, "std", filter.DefaultNoiseStd)
			if err != nil {
				return nil, err
			}
			seed, err := seedParam(q)
			if err != nil {
				return nil, err
			}
			f, err := filter.NewGaussianNoise(mean, std, seed)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errBadQuery, err)
			}
			return f, nil
		},
	},
	{
		name:  "speckle_noise",
		title: "Speckle noise",
		build: func(_ config.Config, q url.Values) (filter.Filter, error) {
			v, err := floatParam(q, "var", filter.DefaultSpeckleVar)
			if err != nil {
				return nil, err
			}
			seed, err := seedParam(q)
			if err != nil {
				return nil, err
			}
			f, err := filter.NewSpeckleNoise(v, seed)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errBadQuery, err)
			}
			return f, nil
		},
	},
}

func bitwise(op, title string) transform {
	return transform{
		name:  op,
		title: title,
		build: func(config.Config, url.Values) (filter.Filter, error) {
			f, err := filter.NewBitwise(op)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// lookup returns the transform with the given name.
func lookup(name string) (transform, bool) {
	for _, t := range transforms {
		if t.name == name {
			return t, true
		}
	}
	return transform{}, false
}

// floatParam returns the float value of key in q, or def if it is absent.
func floatParam(q url.Values, key string, def float64) (float64, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", errBadQuery, key, s)
	}
	return v, nil
}

// seedParam returns the noise seed from q, 0 when absent.
func seedParam(q url.Values) (uint64, error) {
	s := q.Get("seed")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: seed=%q", errBadQuery, s)
	}
	return v, nil
}
