/*
DESCRIPTION
  utils_test.go provides a logger for revid tests that writes through the
  testing package and counts messages by level.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package revid

import (
	"sync"
	"testing"

	"github.com/ausocean/utils/logging"
)

// testLogger will allow logging to be done by the testing pkg.
type testLogger struct {
	t *testing.T

	mu     sync.Mutex
	counts map[int8]int
}

func newTestLogger(t *testing.T) *testLogger {
	return &testLogger{t: t, counts: make(map[int8]int)}
}

func (tl *testLogger) Debug(msg string, args ...interface{})   { tl.Log(logging.Debug, msg, args...) }
func (tl *testLogger) Info(msg string, args ...interface{})    { tl.Log(logging.Info, msg, args...) }
func (tl *testLogger) Warning(msg string, args ...interface{}) { tl.Log(logging.Warning, msg, args...) }
func (tl *testLogger) Error(msg string, args ...interface{})   { tl.Log(logging.Error, msg, args...) }
func (tl *testLogger) Fatal(msg string, args ...interface{})   { tl.Log(logging.Fatal, msg, args...) }
func (tl *testLogger) SetLevel(lvl int8)                       {}

// count returns the number of messages logged at lvl.
func (tl *testLogger) count(lvl int8) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.counts[lvl]
}

func (tl *testLogger) Log(lvl int8, msg string, args ...interface{}) {
	tl.mu.Lock()
	tl.counts[lvl]++
	tl.mu.Unlock()

	var l string
	switch lvl {
	case logging.Warning:
		l = "warning"
	case logging.Debug:
		l = "debug"
	case logging.Info:
		l = "info"
	case logging.Error:
		l = "error"
	case logging.Fatal:
		l = "fatal"
	}
	msg = l + ": " + msg

	// Just use test.T.Log if no formatting required.
	if len(args) == 0 {
		tl.t.Log(msg)
		return
	}

	// Add braces with args inside to message.
	msg += " ("
	for i := 0; i < len(args); i += 2 {
		msg += " %v:\"%v\""
	}
	msg += " )"

	if lvl == logging.Fatal {
		tl.t.Fatalf(msg+"\n", args...)
	}

	tl.t.Logf(msg+"\n", args...)
}
