// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package runtime

import "time"

// FrameScheduler paces the presentation frame loop. The default is a
// wall-clock ticker; tests substitute a manual scheduler to drive frames
// deterministically.
type FrameScheduler interface {
	// Start returns the frame tick channel for the given target rate.
	Start(fps int) <-chan time.Time
	// Stop releases the scheduler's resources.
	Stop()
}

// NewTickerScheduler returns the default wall-clock scheduler.
func NewTickerScheduler() FrameScheduler { return &tickerScheduler{} }

type tickerScheduler struct {
	ticker *time.Ticker
}

func (s *tickerScheduler) Start(fps int) <-chan time.Time {
	if fps <= 0 {
		fps = 60
	}
	s.ticker = time.NewTicker(time.Second / time.Duration(fps))
	return s.ticker.C
}

func (s *tickerScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
