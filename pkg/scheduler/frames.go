package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultFPS is the frame rate of a FrameLoop created with a non-positive fps
const DefaultFPS = 60

// ManualFrames is a FrameHost whose frames fire when the owner calls Tick
type ManualFrames struct {
	mu    sync.Mutex
	queue []func()
}

// RequestFrame queues fn for the next Tick
func (m *ManualFrames) RequestFrame(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Tick runs the callbacks queued before the call and returns how many ran.
// Callbacks requested while ticking wait for the next Tick.
func (m *ManualFrames) Tick() int {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	m.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of queued callbacks
func (m *ManualFrames) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// FrameLoop is a FrameHost ticking at a fixed rate on the goroutine that
// calls Run
type FrameLoop struct {
	frames   ManualFrames
	interval time.Duration
}

// NewFrameLoop creates a loop running fps frames per second
func NewFrameLoop(fps int) *FrameLoop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &FrameLoop{interval: time.Second / time.Duration(fps)}
}

// Interval returns the frame interval
func (l *FrameLoop) Interval() time.Duration {
	return l.interval
}

// RequestFrame queues fn for the next frame
func (l *FrameLoop) RequestFrame(fn func()) {
	l.frames.RequestFrame(fn)
}

// Run fires frames until ctx is done. Callbacks still queued on return
// fire on the next Run.
func (l *FrameLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.frames.Tick()
		}
	}
}
