/*
NAME
  revid.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package revid provides the HTTP handler re-exposing a camera stream as a
// set of transformed multipart JPEG streams.
package revid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ausocean/camstream/codec/jpeg"
	"github.com/ausocean/camstream/device"
	"github.com/ausocean/camstream/device/file"
	"github.com/ausocean/camstream/device/ipcam"
	"github.com/ausocean/camstream/device/still"
	"github.com/ausocean/camstream/filter"
	"github.com/ausocean/camstream/protocol/mjpeg"
	"github.com/ausocean/camstream/revid/config"
)

// Indicate package when logging.
const pkg = "revid: "

// Revid serves the transformed streams. Each stream request runs its own
// session with its own source and filter; sessions share no mutable state.
type Revid struct {
	// mu guards cfg, which may be replaced while sessions run, and orders
	// session starts against Stop. Sessions keep the config they started
	// with.
	mu  sync.RWMutex
	cfg config.Config

	router *mux.Router

	// newSource returns the frame source of a new stream session.
	newSource func(c config.Config) device.Source

	// ctx is cancelled by Stop, ending every session.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option is a functional option for New.
type Option func(*Revid) error

// WithSource sets the function used to create the frame source of each
// stream session. By default the source for the configured SourceMode is
// used.
func WithSource(fn func(c config.Config) device.Source) Option {
	return func(r *Revid) error {
		if fn == nil {
			return errors.New("nil source function")
		}
		r.newSource = fn
		return nil
	}
}

// New returns a pointer to a new Revid with the desired configuration, and/or
// an error if construction of the new instance was not successful.
func New(c config.Config, options ...Option) (*Revid, error) {
	if c.Logger == nil {
		return nil, errors.New("config has no logger")
	}
	c.Validate()

	r := &Revid{cfg: c}
	r.newSource = newSource
	r.ctx, r.cancel = context.WithCancel(context.Background())

	for i, o := range options {
		err := o(r)
		if err != nil {
			return nil, fmt.Errorf("option %d failed: %w", i, err)
		}
	}

	r.router = mux.NewRouter()
	r.router.HandleFunc("/", r.handleIndex).Methods(http.MethodGet)
	r.router.HandleFunc("/{name:[a-z_]+}_stream", r.handleStream).Methods(http.MethodGet)
	r.router.HandleFunc("/{dataset}/{operation}", r.handleStill).Methods(http.MethodGet)
	r.router.HandleFunc("/{dataset}/{operation}/{kernel}", r.handleStill).Methods(http.MethodGet)
	return r, nil
}

// Config returns a copy of revid's current config.
func (r *Revid) Config() config.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Update takes a map of variables and their values and edits the current
// config if the variables are recognised as valid parameters. Only sessions
// started afterwards see the change.
func (r *Revid) Update(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cfg.Logger.Debug(pkg+"checking vars", "vars", vars)
	c := r.cfg
	c.Update(vars)
	c.Validate()
	r.cfg = c
	r.cfg.Logger.Info(pkg + "finished reconfig")
}

// ServeHTTP implements http.Handler.
func (r *Revid) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Stop ends all running sessions and waits for them to release their
// resources. Requests served afterwards end immediately.
func (r *Revid) Stop() {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.Config().Logger.Info(pkg + "all sessions stopped")
}

// handleStream serves /<name>_stream. All validation happens before any of
// the response is written.
func (r *Revid) handleStream(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	t, ok := lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown stream %q", name), http.StatusNotFound)
		return
	}

	c := r.Config()
	q := req.URL.Query()
	f, err := t.build(c, q)
	if err != nil {
		c.Logger.Info(pkg+"rejected stream request", "stream", name, "error", err.Error())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.mu.RLock()
	stopping := r.ctx.Err() != nil
	if !stopping {
		r.wg.Add(1)
	}
	r.mu.RUnlock()
	if stopping {
		f.Close()
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}
	defer r.wg.Done()

	s := &session{
		id:      uuid.New().String(),
		stream:  name,
		cfg:     c,
		log:     c.Logger,
		src:     r.newSource(c),
		filter:  f,
		rebuild: func() (filter.Filter, error) { return t.build(c, q) },
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	stop := context.AfterFunc(r.ctx, cancel)
	defer stop()

	w.Header().Set("Content-Type", mjpeg.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	s.run(ctx, mjpeg.NewEncoder(w))
}

// handleStill serves /<dataset>/<operation>[/<kernel>], emitting the
// transformed still image as a single multipart part.
func (r *Revid) handleStill(w http.ResponseWriter, req *http.Request) {
	c := r.Config()
	vars := mux.Vars(req)
	store := still.NewStore(c)

	dataset := vars["dataset"]
	if !store.Has(dataset) {
		http.Error(w, fmt.Sprintf("unknown dataset %q", dataset), http.StatusNotFound)
		return
	}

	f, err := morphFilter(vars["operation"], vars["kernel"], int(c.KernelSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	src := still.NewStill(store, dataset)
	defer src.Close()
	img, err := src.Fetch(req.Context())
	if err != nil {
		c.Logger.Error(pkg+"could not load dataset image", "dataset", dataset, "error", err.Error())
		http.Error(w, "could not load image", http.StatusInternalServerError)
		return
	}

	out, err := f.Apply(img)
	if err != nil {
		c.Logger.Error(pkg+"could not transform still", "dataset", dataset, "error", err.Error())
		http.Error(w, "could not transform image", http.StatusInternalServerError)
		return
	}

	b, err := jpeg.Encode(out, c.JPEGQuality)
	if err != nil {
		c.Logger.Error(pkg+"could not encode still", "dataset", dataset, "error", err.Error())
		http.Error(w, "could not encode image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mjpeg.ContentType)
	_, err = mjpeg.NewEncoder(w).Write(b)
	if err != nil {
		c.Logger.Info(pkg+"could not write still", "dataset", dataset, "error", err.Error())
	}
}

// newSource returns the frame source for the SourceMode of c.
func newSource(c config.Config) device.Source {
	if c.SourceMode != config.SourceFile {
		return ipcam.New(c.Logger, c)
	}
	s := file.New(c.Logger)
	err := s.Set(c)
	if err != nil {
		c.Logger.Warning(pkg+"source config has invalid fields", "source", s.Name(), "error", err.Error())
	}
	return s
}
