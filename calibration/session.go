// Package calibration measures microphone quality over a short recording
// window and recommends noise-gate and confidence settings.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-voz/logging"
)

var (
	ErrCancelled    = errors.New("calibration: cancelled")
	ErrNoSamples    = errors.New("calibration: no samples collected")
	ErrNotStarted   = errors.New("calibration: session not started")
	ErrEmptyFrame   = errors.New("calibration: empty time-domain frame")
	ErrSpectrumSize = errors.New("calibration: spectrum size changed")
)

// Source is a live capture accessor. On each call it returns the current
// time-domain block and the dB magnitude spectrum of the same signal, with
// bin i at i*SampleRate()/(2*len).
type Source interface {
	SampleRate() int
	TimeDomain() []float64
	FrequencyDomain() []float64
}

// Session is one calibration run. The caller drives it by calling Tick on
// every capture tick; it has no timer of its own. Cancel may be called from
// any goroutine, everything else belongs to the driving goroutine.
type Session struct {
	source Source
	params Params
	logger logging.Logger

	acc        Accumulator
	start      time.Time
	started    bool
	report     *Report
	cancelled  atomic.Bool
	cancelOnce sync.Once
}

// NewSession creates a session reading from source. A non-positive duration
// falls back to DefaultDuration.
func NewSession(source Source, params Params) *Session {
	if params.Duration <= 0 {
		params.Duration = DefaultDuration
	}

	return &Session{
		source: source,
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "calibration"}),
	}
}

// SetLogger replaces the session logger
func (s *Session) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	s.logger = logger
}

// Start begins the run at now. Calling Start again restarts it.
func (s *Session) Start(now time.Time) {
	s.acc = Accumulator{}
	s.report = nil
	s.start = now
	s.started = true

	s.logger.Debug("calibration started", logging.Fields{
		"duration_ms": s.params.Duration.Milliseconds(),
		"sample_rate": s.source.SampleRate(),
	})
}

// Tick collects one block unless the window has elapsed, in which case it
// computes the report and returns done. Ticks after completion are no-ops.
func (s *Session) Tick(now time.Time) (done bool, err error) {
	if s.cancelled.Load() {
		return false, ErrCancelled
	}
	if !s.started {
		return false, ErrNotStarted
	}
	if s.report != nil {
		return true, nil
	}

	if now.Sub(s.start) >= s.params.Duration {
		if err := s.Finish(); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := s.acc.Add(s.source.TimeDomain(), s.source.FrequencyDomain()); err != nil {
		return false, fmt.Errorf("collecting calibration block: %w", err)
	}
	return false, nil
}

// Finish ends the run early and computes the report from what has been
// collected so far
func (s *Session) Finish() error {
	if s.cancelled.Load() {
		return ErrCancelled
	}
	if !s.started {
		return ErrNotStarted
	}
	if s.report != nil {
		return nil
	}

	report, err := s.acc.Report(s.source.SampleRate(), s.params)
	if err != nil {
		return err
	}
	s.report = report

	s.logger.Debug("calibration complete", logging.Fields{
		"frames":        report.Frames,
		"noise_floor":   report.NoiseFloorDB,
		"quality_score": report.QualityScore,
		"environment":   report.Environment,
	})
	return nil
}

// Cancel abandons the run. Subsequent calls to Tick return ErrCancelled.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		s.cancelled.Store(true)
		s.logger.Debug("calibration cancelled")
	})
}

// Cancelled reports whether Cancel has been called
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// Report returns the finished report. It fails while the run is cancelled,
// not started or still collecting.
func (s *Session) Report() (*Report, error) {
	switch {
	case s.cancelled.Load():
		return nil, ErrCancelled
	case !s.started:
		return nil, ErrNotStarted
	case s.report == nil:
		return nil, fmt.Errorf("calibration: still running after %d frames", s.acc.Frames())
	}
	return s.report, nil
}

// Run drives session from ticks until the window elapses. The first tick
// starts the session if the caller has not. A closed ticks channel finishes
// the run early, with ErrNoSamples if no tick ever arrived; a cancelled ctx
// cancels the session.
func Run(ctx context.Context, session *Session, ticks <-chan time.Time) (*Report, error) {
	for {
		select {
		case <-ctx.Done():
			session.Cancel()
			return nil, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))

		case now, ok := <-ticks:
			if !ok {
				if !session.started {
					return nil, fmt.Errorf("%w: ticks closed before the first tick", ErrNoSamples)
				}
				if err := session.Finish(); err != nil {
					return nil, err
				}
				return session.Report()
			}

			if !session.started {
				session.Start(now)
			}

			done, err := session.Tick(now)
			if err != nil {
				return nil, err
			}
			if done {
				return session.Report()
			}
		}
	}
}
