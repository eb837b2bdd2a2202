/*
DESCRIPTION
  still.go provides Store, which loads the still radiograph images served on
  the morphology routes, and Still, a Source repeating one of them.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package still provides access to the datasets of still images on disk.
package still

import (
	"context"
	"image"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/ausocean/camstream/revid/config"
)

// ErrUnknownDataset is returned for dataset names not in the store.
var ErrUnknownDataset = errors.New("unknown dataset")

// Datasets maps dataset names to their image file within the dataset
// directory. Files may be in any format imaging can decode.
var Datasets = map[string]string{
	"nih":       "imagen1",
	"pneumonia": "imagen2",
	"covid":     "imagen3",
}

const defaultDir = "static/images"

// Store loads dataset images from a directory.
type Store struct {
	dir string
}

// NewStore returns a Store reading from the DatasetDir of c.
func NewStore(c config.Config) *Store {
	dir := c.DatasetDir
	if dir == "" {
		dir = defaultDir
	}
	return &Store{dir: dir}
}

// Has reports whether name is a known dataset.
func (s *Store) Has(name string) bool {
	_, ok := Datasets[name]
	return ok
}

// Names returns the known dataset names in order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(Datasets))
	for n := range Datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load reads and decodes the image of the named dataset, returning it in
// grayscale. The image is read afresh on every call.
func (s *Store) Load(name string) (*image.Gray, error) {
	file, ok := Datasets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDataset, "dataset %q", name)
	}

	img, err := imaging.Open(filepath.Join(s.dir, file))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s image", name)
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)
	return gray, nil
}

// Still is a Source that returns the image of one dataset on every fetch.
type Still struct {
	store *Store
	name  string
}

// NewStill returns a Still source for the named dataset in s.
func NewStill(s *Store, name string) *Still { return &Still{store: s, name: name} }

// Name returns the name of the device.
func (s *Still) Name() string { return "Still" }

// Set uses the DatasetDir field of c.
func (s *Still) Set(c config.Config) error {
	s.store = NewStore(c)
	return nil
}

// Fetch implements device.Source.
func (s *Still) Fetch(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Load(s.name)
}

// Close implements device.Source.
func (s *Still) Close() error { return nil }
