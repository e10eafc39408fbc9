// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package main

import (
	"time"
)

var spinnerPhases = []rune("⠉⠘⠰⠤⠆⠃")

// spinner renders a braille progress indicator. The current phase is derived
// from the wall clock, so there is no background ticker to start and stop; a
// spinner that isn't rendered costs nothing.
type spinner struct {
	epoch    time.Time
	interval time.Duration
}

// newSpinner returns a new spinner advancing one phase per the specified
// interval.
func newSpinner(interval time.Duration) *spinner {
	return &spinner{
		epoch:    time.Now(),
		interval: interval,
	}
}

// Spinner returns the spinner string for the current phase.
func (s *spinner) Spinner() string {
	phase := int(time.Since(s.epoch)/s.interval) % len(spinnerPhases)
	return string(spinnerPhases[phase]) + " "
}
