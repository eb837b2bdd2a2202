/*
DESCRIPTION
  camstream is an HTTP server using the revid package to re-expose a
  networked camera's motion-JPEG stream as a set of transformed streams.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package camstream is the camstream server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/camstream/revid"
	"github.com/ausocean/camstream/revid/config"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "/var/log/camstream/camstream.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

// Misc constants.
const (
	pkg             = "camstream: "
	profilePath     = "camstream.prof"
	pprofAddress    = "localhost:6060"
	shutdownTimeout = 5 * time.Second
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

func main() {
	showVersion := flag.Bool("version", false, "show version")
	configPath := flag.String("config", "", "path of a file of Key=Value config lines, reloaded on change")
	logFile := flag.String("log", logPath, "path of the rotating log file")
	vars := varFlags{}
	flag.Var(vars, "var", "config variable as Key=Value; may be repeated and overrides the config file")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logFile,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()

	// Create logger that we call methods on to log, which in turn writes to the
	// lumberjack logger and stderr.
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	log.Info("starting camstream", "version", version)

	// If camstream has been built with the profile tag, then we'll start a CPU
	// profile.
	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		go servePprof(pprofAddress, log)
		log.Info("profiling started", "pprof", pprofAddress)
	}

	initial, err := loadVars(*configPath, vars)
	if err != nil {
		log.Fatal(pkg+"could not load config", "error", err.Error())
	}

	cfg := config.Defaults(log)
	cfg.Update(initial)

	log.Debug("initialising revid")
	rv, err := revid.New(cfg)
	if err != nil {
		log.Fatal(pkg+"could not initialise revid", "error", err.Error())
	}
	cfg = rv.Config()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *configPath != "" {
		go func() {
			err := watch(ctx, *configPath, vars, rv.Update, log)
			if err != nil {
				log.Error(pkg+"config file will not be reloaded", "error", err.Error())
			}
		}()
	}

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: rv}
	go func() {
		log.Info(pkg+"listening", "address", cfg.HTTPAddress)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(pkg+"server failed", "error", err.Error())
		}
	}()
	notify(log, daemon.SdNotifyReady)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	log.Info(pkg+"shutting down", "signal", s.String())
	notify(log, daemon.SdNotifyStopping)

	cancel()
	rv.Stop()

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Error(pkg+"could not shut down server cleanly", "error", err.Error())
	}
	log.Info("camstream stopped")
}

// notify sends state to systemd, if camstream is running as a notify
// service.
func notify(l logging.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		l.Warning(pkg+"could not notify systemd", "state", state, "error", err.Error())
		return
	}
	if sent {
		l.Debug(pkg+"notified systemd", "state", state)
	}
}

func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}

// servePprof serves the pprof endpoints registered on the default mux at
// addr until the server fails.
func servePprof(addr string, l logging.Logger) {
	err := http.ListenAndServe(addr, nil)
	if err != nil {
		l.Error(pkg+"pprof server failed", "address", addr, "error", err.Error())
	}
}
