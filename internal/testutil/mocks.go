// Package testutil provides test utilities including mocks, fakes and layout fixtures.
package testutil

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mescon/Unqlocked/internal/clock"
)

// =============================================================================
// MockClock - Testable time abstraction
// =============================================================================

// MockClock implements clock.Clock for testing, providing deterministic control
// over when a sleeping state machine wakes up.
type MockClock struct {
	mu           sync.Mutex
	now          time.Time
	pendingFuncs []pendingFunc
}

type pendingFunc struct {
	executeAt time.Time
	fn        func()
	stopped   bool
}

// MockTimer implements clock.Timer for testing.
type MockTimer struct {
	clock *MockClock
	index int
}

// Compile-time assertion that MockClock implements clock.Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClockAt creates a new MockClock with a specific initial time.
func NewMockClockAt(t time.Time) *MockClock {
	return &MockClock{
		now: t,
	}
}

// NewMockClockAtSeconds creates a MockClock positioned the given number of
// seconds after local midnight on an arbitrary fixed day.
func NewMockClockAtSeconds(seconds float64) *MockClock {
	midnight := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	return NewMockClockAt(midnight.Add(time.Duration(seconds * float64(time.Second))))
}

// Now returns the mock's current time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to be called after duration d.
// Returns a Timer that can be used to cancel the call.
func (m *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := len(m.pendingFuncs)
	m.pendingFuncs = append(m.pendingFuncs, pendingFunc{
		executeAt: m.now.Add(d),
		fn:        f,
	})

	return &MockTimer{clock: m, index: index}
}

// Advance moves time forward by the given duration and executes any functions
// whose scheduled time has passed. Returns the number of functions executed.
func (m *MockClock) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now = m.now.Add(d)

	var toExecute []func()
	for i := range m.pendingFuncs {
		pf := &m.pendingFuncs[i]
		if !pf.stopped && !pf.executeAt.After(m.now) {
			toExecute = append(toExecute, pf.fn)
			pf.stopped = true // Mark as executed
		}
	}
	m.mu.Unlock()

	// Execute outside the lock to avoid deadlocks
	for _, fn := range toExecute {
		fn()
	}
	return len(toExecute)
}

// AdvanceToNext moves time to the earliest pending function and fires it.
// Returns the duration advanced, or zero if nothing was pending.
func (m *MockClock) AdvanceToNext() time.Duration {
	m.mu.Lock()
	var (
		next  time.Time
		found bool
	)
	for _, pf := range m.pendingFuncs {
		if !pf.stopped && (!found || pf.executeAt.Before(next)) {
			next, found = pf.executeAt, true
		}
	}
	now := m.now
	m.mu.Unlock()

	if !found {
		return 0
	}
	d := next.Sub(now)
	m.Advance(d)
	return d
}

// PendingCount returns the number of scheduled functions that haven't been
// executed or stopped.
func (m *MockClock) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, pf := range m.pendingFuncs {
		if !pf.stopped {
			count++
		}
	}
	return count
}

// Stop prevents the timer from firing. Returns true if the timer was stopped,
// false if it had already fired or been stopped.
func (t *MockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.index < len(t.clock.pendingFuncs) && !t.clock.pendingFuncs[t.index].stopped {
		t.clock.pendingFuncs[t.index].stopped = true
		return true
	}
	return false
}

// =============================================================================
// Rendering surface
// =============================================================================

// MockRenderer records every frame it is asked to draw.
type MockRenderer struct {
	mu       sync.Mutex
	matrices [][][]bool
	sprites  []int
	frames   chan struct{}
}

// NewMockRenderer creates a renderer whose Frames channel receives one value per draw call.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{frames: make(chan struct{}, 1024)}
}

func (r *MockRenderer) DrawMatrix(m [][]bool) {
	r.mu.Lock()
	r.matrices = append(r.matrices, m)
	r.mu.Unlock()
	r.notify()
}

func (r *MockRenderer) DrawSprites(n int) {
	r.mu.Lock()
	r.sprites = append(r.sprites, n)
	r.mu.Unlock()
	r.notify()
}

func (r *MockRenderer) notify() {
	select {
	case r.frames <- struct{}{}:
	default:
	}
}

// Frames delivers a value after each draw call.
func (r *MockRenderer) Frames() <-chan struct{} {
	return r.frames
}

// Matrices returns a copy of all matrices drawn so far.
func (r *MockRenderer) Matrices() [][][]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][][]bool(nil), r.matrices...)
}

// Sprites returns all sprite buckets drawn so far.
func (r *MockRenderer) Sprites() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.sprites...)
}

// =============================================================================
// Visibility oracle
// =============================================================================

// MockVisibility is a switchable visibility oracle.
type MockVisibility struct {
	visible atomic.Bool
	checks  atomic.Int64
}

// NewMockVisibility creates an oracle with the given initial visibility.
func NewMockVisibility(visible bool) *MockVisibility {
	v := &MockVisibility{}
	v.visible.Store(visible)
	return v
}

func (v *MockVisibility) IsVisible() bool {
	v.checks.Add(1)
	return v.visible.Load()
}

// Set changes the reported visibility.
func (v *MockVisibility) Set(visible bool) {
	v.visible.Store(visible)
}

// Checks returns how many times IsVisible was called.
func (v *MockVisibility) Checks() int {
	return int(v.checks.Load())
}

// =============================================================================
// Phrase source
// =============================================================================

// MockPhraseSource implements the phrase source contract with a function field.
type MockPhraseSource struct {
	ResolveTimeFunc func(t clock.Time) []string
	Nodes           int

	mu    sync.Mutex
	calls []clock.Time
}

func (m *MockPhraseSource) ResolveTime(t clock.Time) []string {
	m.mu.Lock()
	m.calls = append(m.calls, t)
	m.mu.Unlock()
	if m.ResolveTimeFunc != nil {
		return m.ResolveTimeFunc(t)
	}
	return nil
}

func (m *MockPhraseSource) CountNodes() int {
	return m.Nodes
}

// Calls returns the times ResolveTime was asked for, in order.
func (m *MockPhraseSource) Calls() []clock.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]clock.Time(nil), m.calls...)
}
