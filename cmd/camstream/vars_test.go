/*
DESCRIPTION
  vars_test.go provides testing of config variable loading and reloading.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/utils/logging"
)

func TestVarFlags(t *testing.T) {
	v := varFlags{}
	for _, s := range []string{"Gamma=2", " KernelSize = 9 ", "StreamURL=http://cam:81/stream?a=b"} {
		err := v.Set(s)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", s, err)
		}
	}
	want := varFlags{"Gamma": "2", "KernelSize": "9", "StreamURL": "http://cam:81/stream?a=b"}
	if !cmp.Equal(v, want) {
		t.Errorf("unexpected vars: got %v want %v", v, want)
	}
	if got, want := v.String(), "Gamma=2,KernelSize=9,StreamURL=http://cam:81/stream?a=b"; got != want {
		t.Errorf("unexpected string: got %q want %q", got, want)
	}

	for _, s := range []string{"Gamma", "=2"} {
		if err := v.Set(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestLoadVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camstream.conf")
	err := os.WriteFile(path, []byte("# camera\nStreamURL=http://10.0.0.2:81/stream\nGamma=1.2\n"), 0o644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	got, err := loadVars(path, varFlags{"Gamma": "2.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"StreamURL": "http://10.0.0.2:81/stream", "Gamma": "2.5"}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected vars: got %v want %v", got, want)
	}

	got, err = loadVars("", varFlags{"Gamma": "2.5"})
	if err != nil {
		t.Fatalf("unexpected error without file: %v", err)
	}
	if !cmp.Equal(got, map[string]string{"Gamma": "2.5"}) {
		t.Errorf("unexpected vars without file: %v", got)
	}

	_, err = loadVars(filepath.Join(t.TempDir(), "missing.conf"), nil)
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camstream.conf")
	err := os.WriteFile(path, []byte("Gamma=1.2\n"), 0o644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan map[string]string, 10)
	done := make(chan error)
	go func() {
		done <- watch(ctx, path, varFlags{"KernelSize": "9"}, func(v map[string]string) {
			select {
			case updates <- v:
			default:
			}
		}, (*logging.TestLogger)(t))
	}()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("unexpected error from watch: %v", err)
		}
	}()

	// Give the watcher time to register, then rewrite the file until it is
	// seen.
	want := map[string]string{"Gamma": "3", "KernelSize": "9"}
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	// Writes to other files in the directory are ignored.
	os.WriteFile(filepath.Join(dir, "other.conf"), []byte("Gamma=7\n"), 0o644)
loop:
	for {
		select {
		case <-tick.C:
			os.WriteFile(path, []byte("Gamma=3\n"), 0o644)
		case got := <-updates:
			// A truncating write may be seen before its content.
			if cmp.Equal(got, want) {
				break loop
			}
			if _, ok := got["Gamma"]; ok && got["Gamma"] != "3" && got["Gamma"] != "1.2" {
				t.Fatalf("unexpected vars: got %v want %v", got, want)
			}
		case <-deadline:
			t.Fatal("config change not seen")
		}
	}
}

func TestServePprofAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("could not listen: %v", err)
	}
	defer ln.Close()

	var buf bytes.Buffer
	servePprof(ln.Addr().String(), logging.New(logging.Debug, &buf, false))
	if !bytes.Contains(buf.Bytes(), []byte("pprof server failed")) {
		t.Errorf("listen failure not logged: %q", buf.String())
	}
}
