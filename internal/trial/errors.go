package trial

import "errors"

// Domain errors for trial runs.
var (
	// ErrNoSource indicates a config without a source distribution.
	ErrNoSource = errors.New("trial: no source distribution")

	// ErrBadSamples indicates a per-trial draw count below 1.
	ErrBadSamples = errors.New("trial: samples per trial must be at least 1")

	// ErrBadTrials indicates a trial budget below 1.
	ErrBadTrials = errors.New("trial: trial count must be at least 1")

	// ErrLayoutMismatch indicates an attempt to merge histograms with
	// different bucket layouts.
	ErrLayoutMismatch = errors.New("trial: histogram layouts differ")
)
