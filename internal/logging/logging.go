// Package logging wires the append-only run log. Events are logfmt
// lines so the file greps and pipes cleanly:
//
//	ts=2026-08-22T14:02:11Z event=run_completed source=coin trials=50000
//
// An empty path disables logging without any call sites caring.
package logging

import (
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Event names used across the commands. Keeping them here means a
// grep for one of these finds both the emitter and the log line.
const (
	EventRunStarted   = "run_started"
	EventRunCompleted = "run_completed"
	EventRunCanceled  = "run_canceled"
	EventSaveFailed   = "save_failed"
	EventSweepPoint   = "sweep_point"
	EventSearchDone   = "search_done"
	EventSeedsDone    = "seed_study_done"
)

// Open returns a timestamped logfmt logger appending to path and a
// close func for the underlying file. An empty path yields a no-op
// logger whose close func does nothing.
func Open(path string) (log.Logger, func() error, error) {
	if path == "" {
		return log.NewNopLogger(), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %s", path)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(f))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return logger, f.Close, nil
}
