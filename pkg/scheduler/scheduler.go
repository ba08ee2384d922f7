// Package scheduler coalesces redraw requests so that at most one render
// pass runs at a time and a burst of requests costs at most one extra pass.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// State is the scheduler state
type State int32

const (
	// Idle means no pass is scheduled or running
	Idle State = iota
	// Scheduled means a frame was requested and the pass has not started
	Scheduled
	// Running means a pass is in progress
	Running
	// RunningWithPending means a pass is in progress and another was
	// requested after it started
	RunningWithPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case RunningWithPending:
		return "running-with-pending"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// FrameHost runs a callback at its next frame boundary
type FrameHost interface {
	RequestFrame(fn func())
}

// PassFunc performs one render pass
type PassFunc func() error

// Config holds configuration for a scheduler
type Config struct {
	Logger *slog.Logger
}

// Scheduler drives render passes from redraw requests
type Scheduler struct {
	host FrameHost
	pass PassFunc
	log  *slog.Logger

	mu     sync.Mutex
	state  State
	passes atomic.Int64
	failed atomic.Int64
}

// New creates a scheduler running pass on host's frames
func New(host FrameHost, pass PassFunc) *Scheduler {
	return NewWithConfig(host, pass, Config{})
}

// NewWithConfig creates a scheduler with custom configuration
func NewWithConfig(host FrameHost, pass PassFunc, config Config) *Scheduler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Scheduler{
		host: host,
		pass: pass,
		log:  config.Logger,
	}
}

// RequestRedraw asks for a pass. It is safe to call from any goroutine and
// never blocks on a running pass.
func (s *Scheduler) RequestRedraw() {
	s.mu.Lock()
	switch s.state {
	case Idle:
		s.state = Scheduled
		s.mu.Unlock()
		s.host.RequestFrame(s.frame)
		return
	case Running:
		s.state = RunningWithPending
	}
	s.mu.Unlock()
}

// State returns the current state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Passes returns the number of passes run so far, failed ones included
func (s *Scheduler) Passes() int64 {
	return s.passes.Load()
}

// Failures returns the number of passes that returned an error or panicked
func (s *Scheduler) Failures() int64 {
	return s.failed.Load()
}

func (s *Scheduler) frame() {
	s.mu.Lock()
	if s.state != Scheduled {
		// a frame only fires for the one request that scheduled it
		s.mu.Unlock()
		s.log.Debug("ignoring unexpected frame", "state", s.state)
		return
	}
	s.state = Running
	s.mu.Unlock()

	s.run()

	s.mu.Lock()
	if s.state == RunningWithPending {
		s.state = Scheduled
		s.mu.Unlock()
		s.host.RequestFrame(s.frame)
		return
	}
	s.state = Idle
	s.mu.Unlock()
}

func (s *Scheduler) run() {
	n := s.passes.Add(1)
	defer func() {
		if r := recover(); r != nil {
			s.failed.Add(1)
			s.log.Error("render pass panicked", "pass", n, "panic", r)
		}
	}()

	if err := s.pass(); err != nil {
		s.failed.Add(1)
		s.log.Warn("render pass failed", "pass", n, "error", err)
		return
	}
	s.log.Debug("render pass complete", "pass", n)
}
