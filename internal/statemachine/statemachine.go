// Package statemachine drives a clock face through the times of day.
//
// The state is the simulated time. The machine visits a state, asks the face to
// draw it, advances by a fixed delay and sleeps until the wall clock reaches the
// next state. It stops when asked to, or when the surface it draws on was seen
// and then disappeared.
package statemachine

import (
	"errors"
	"sync"
	"time"

	"github.com/mescon/Unqlocked/internal/clock"
	"github.com/mescon/Unqlocked/internal/logger"
)

// ErrInvalidDelay is returned when the tick delay is not a positive number of seconds.
var ErrInvalidDelay = errors.New("delay must be a positive number of seconds")

// Face is what a state machine drives. Step draws one state; Cleanup clears the
// surface once, after the last step.
type Face interface {
	Name() string
	Step(t clock.Time)
	Cleanup()
}

// Visibility reports whether the surface a face draws on is currently shown.
type Visibility interface {
	IsVisible() bool
}

// VisibilityFunc adapts a function to Visibility.
type VisibilityFunc func() bool

func (f VisibilityFunc) IsVisible() bool { return f() }

// Observer receives timing information about each tick.
type Observer interface {
	ObserveStep(face string, d time.Duration)
	ObserveSleep(face string, d time.Duration)
}

// Status is the lifecycle position of a StateMachine.
type Status int

const (
	Running Status = iota
	Stopping
	Stopped
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Option configures a StateMachine.
type Option func(*StateMachine)

// WithClock sets the wall clock used to pick the initial state and to sleep.
func WithClock(c clock.Clock) Option {
	return func(m *StateMachine) { m.clock = c }
}

// WithVisibility sets the visibility oracle checked before every step.
func WithVisibility(v Visibility) Option {
	return func(m *StateMachine) { m.visibility = v }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logger.Logger) Option {
	return func(m *StateMachine) { m.log = l }
}

// WithObserver registers an observer for step and sleep durations.
func WithObserver(o Observer) Option {
	return func(m *StateMachine) { m.observer = o }
}

// StateMachine runs one face on its own goroutine.
type StateMachine struct {
	delay      int
	face       Face
	clock      clock.Clock
	visibility Visibility
	log        logger.Logger
	observer   Observer

	// state is owned by the run loop once started
	state clock.Time

	mu            sync.Mutex
	stopRequested bool
	sighted       bool
	status        Status
	// wake is closed to end the current sleep early; nil when not sleeping
	wake chan struct{}

	startOnce sync.Once
	done      chan struct{}
}

// New creates a state machine ticking every delay seconds. The initial state
// is the current time of day rounded down to a multiple of delay.
func New(delay int, face Face, opts ...Option) (*StateMachine, error) {
	if delay <= 0 {
		return nil, ErrInvalidDelay
	}

	m := &StateMachine{
		delay:      delay,
		face:       face,
		clock:      clock.NewRealClock(),
		visibility: VisibilityFunc(func() bool { return true }),
		log:        logger.Nop(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.state = clock.FromWallClock(m.clock.Now()).RoundDown(delay)
	return m, nil
}

// Delay returns the tick interval in seconds.
func (m *StateMachine) Delay() int {
	return m.delay
}

// State returns the next state the machine will visit. Only meaningful before
// Start or after Done.
func (m *StateMachine) State() clock.Time {
	return m.state
}

// Status returns the current lifecycle status.
func (m *StateMachine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Start launches the run loop. Subsequent calls do nothing.
func (m *StateMachine) Start() {
	m.startOnce.Do(func() {
		go m.run()
	})
}

// Stop requests the loop to exit and interrupts a pending sleep. A step that
// is already executing runs to completion first. Safe to call repeatedly and
// from any goroutine.
func (m *StateMachine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopRequested = true
	if m.wake != nil {
		close(m.wake)
		m.wake = nil
	}
}

// Done is closed once the loop has exited and Cleanup has returned.
func (m *StateMachine) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until Done is closed.
func (m *StateMachine) Wait() {
	<-m.done
}

// ShouldStop reports whether the loop must exit: either Stop was called, or the
// surface was visible at some earlier check and is not visible now.
func (m *StateMachine) ShouldStop() bool {
	visible := m.visibility.IsVisible()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sighted && !visible {
		return true
	}
	if visible {
		m.sighted = true
	}
	return m.stopRequested
}

func (m *StateMachine) run() {
	defer close(m.done)

	name := m.face.Name()
	for !m.ShouldStop() {
		m.log.Debugf("visiting state %s", m.state)

		started := m.clock.Now()
		m.face.Step(m.state)
		if m.observer != nil {
			m.observer.ObserveStep(name, m.clock.Now().Sub(started))
		}

		m.state = NextState(m.state, m.delay)
		d := SleepDuration(m.state, m.clock.Now())
		m.log.Debugf("Sleeping for %f seconds", d.Seconds())
		if m.observer != nil {
			m.observer.ObserveSleep(name, d)
		}
		m.sleep(d)
	}

	m.setStatus(Stopping)
	m.log.Infof("%s shutting down", name)
	m.face.Cleanup()
	m.setStatus(Stopped)
	m.log.Infof("%s finished shutting down", name)
}

// sleep waits for d or until Stop is called, whichever comes first.
func (m *StateMachine) sleep(d time.Duration) {
	m.mu.Lock()
	if m.stopRequested {
		m.mu.Unlock()
		return
	}
	wake := make(chan struct{})
	m.wake = wake
	m.mu.Unlock()

	timer := m.clock.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.wake == wake {
			close(wake)
			m.wake = nil
		}
	})
	<-wake
	timer.Stop()
}

func (m *StateMachine) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// NextState advances current by delay seconds, wrapping at midnight.
func NextState(current clock.Time, delay int) clock.Time {
	return clock.FromSeconds((current.ToSeconds() + delay) % clock.SecondsPerDay)
}

// SleepDuration returns how long to wait from now until the wall clock reaches
// next. A target earlier in the day than now is taken to be tomorrow.
func SleepDuration(next clock.Time, now time.Time) time.Duration {
	seconds := float64(next.ToSeconds()) - clock.SecondsOfDay(now)
	if seconds < 0 {
		seconds += clock.SecondsPerDay
	}
	return time.Duration(seconds * float64(time.Second))
}
