/*
DESCRIPTION
  vars.go provides reading of config variables from the command line and
  from a config file, and watching of that file for changes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/camstream/revid/config"
	"github.com/ausocean/utils/logging"
)

// varFlags collects repeated -var Key=Value flags.
type varFlags map[string]string

func (v varFlags) String() string {
	s := make([]string, 0, len(v))
	for k, val := range v {
		s = append(s, k+"="+val)
	}
	sort.Strings(s)
	return strings.Join(s, ",")
}

func (v varFlags) Set(s string) error {
	k, val, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("expected Key=Value, got %q", s)
	}
	v[strings.TrimSpace(k)] = strings.TrimSpace(val)
	return nil
}

// loadVars returns the variables of the config file at path, if any, with
// those of flags taking precedence.
func loadVars(path string, flags varFlags) (map[string]string, error) {
	vars := make(map[string]string)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open config file: %w", err)
		}
		defer f.Close()

		vars, err = config.ParseVars(f)
		if err != nil {
			return nil, fmt.Errorf("could not parse config file: %w", err)
		}
	}
	for k, v := range flags {
		vars[k] = v
	}
	return vars, nil
}

// watch calls apply with the reloaded variables each time the config file
// at path is written or replaced, until ctx is done. The containing
// directory is watched so that files replaced by editors are still seen.
func watch(ctx context.Context, path string, flags varFlags, apply func(map[string]string), l logging.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer w.Close()

	path = filepath.Clean(path)
	err = w.Add(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("could not watch config directory: %w", err)
	}
	l.Info(pkg+"watching config file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			vars, err := loadVars(path, flags)
			if err != nil {
				l.Warning(pkg+"could not reload config", "error", err.Error())
				continue
			}
			l.Info(pkg+"config file changed, updating", "op", ev.Op.String())
			apply(vars)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warning(pkg+"config watcher error", "error", err.Error())
		}
	}
}
