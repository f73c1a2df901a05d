package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mescon/Unqlocked/internal/layout"
	"github.com/mescon/Unqlocked/internal/logger"
	"github.com/mescon/Unqlocked/internal/solver"
	"github.com/mescon/Unqlocked/internal/statemachine"
)

// Kind names a clock face variant.
type Kind string

const (
	KindWords   Kind = "words"
	KindSprites Kind = "sprites"
)

// ErrUnknownKind is returned for a face kind that is not one of the known variants.
var ErrUnknownKind = errors.New("unknown face kind")

// ErrDisplayClosed is returned by Ensure after Shutdown.
var ErrDisplayClosed = errors.New("display is shut down")

// FaceDeps contains everything needed to build a face
type FaceDeps struct {
	Layout   *layout.Layout
	Renderer Renderer
	// Phrases defaults to a solver built from Layout
	Phrases  PhraseSource
	Logger   logger.Logger
	Recorder HighlightRecorder
}

// NewFace builds the face variant named by kind.
func NewFace(kind Kind, deps FaceDeps) (Face, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	switch kind {
	case KindWords:
		if deps.Layout == nil {
			return nil, errors.New("word clock requires a layout")
		}
		phrases := deps.Phrases
		if phrases == nil {
			log.Infof("Creating the solver")
			start := time.Now()
			s := solver.New(deps.Layout)
			log.Infof("Solver created in %f seconds with %d nodes and %d rules",
				time.Since(start).Seconds(), s.CountNodes(), len(deps.Layout.Times))
			phrases = s
		}
		w, err := NewWordClock(deps.Layout, phrases, deps.Renderer, log, deps.Recorder)
		if err != nil {
			return nil, err
		}
		return w, nil
	case KindSprites:
		return NewSpriteClock(deps.Renderer), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Display keeps at most one state machine running for a face. When the
// machine stops on its own (its surface went away) a later Ensure starts a
// fresh one, the way reopening a window restarts its clock.
type Display struct {
	face    Face
	opts    []statemachine.Option
	vis     statemachine.Visibility
	tracker FaceTracker
	log     logger.Logger

	mu      sync.Mutex
	current *statemachine.StateMachine
	closed  bool
	wg      sync.WaitGroup
}

// NewDisplay creates a display for face. vis is the surface every state
// machine watches; nil means always visible. opts are applied to every state
// machine it starts. tracker may be nil.
func NewDisplay(face Face, tracker FaceTracker, log logger.Logger, vis statemachine.Visibility, opts ...statemachine.Option) *Display {
	if log == nil {
		log = logger.Nop()
	}
	if vis != nil {
		opts = append([]statemachine.Option{statemachine.WithVisibility(vis)}, opts...)
	}
	return &Display{
		face:    face,
		opts:    opts,
		vis:     vis,
		tracker: tracker,
		log:     log,
	}
}

// Ensure starts a state machine unless one is already running.
func (d *Display) Ensure() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDisplayClosed
	}
	if d.current != nil {
		select {
		case <-d.current.Done():
		default:
			return nil
		}
	}
	return d.startLocked()
}

func (d *Display) startLocked() error {
	m, err := statemachine.New(d.face.Delay(), d.face, d.opts...)
	if err != nil {
		return fmt.Errorf("failed to create state machine: %w", err)
	}
	d.current = m

	if d.tracker != nil {
		d.tracker.FaceStarted(d.face.Name())
	}
	d.log.Infof("Starting %s face (delay %ds, first state %s)", d.face.Name(), m.Delay(), m.State())
	m.Start()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		m.Wait()
		if d.tracker != nil {
			d.tracker.FaceStopped()
		}
		d.restartIfVisible(m)
	}()
	return nil
}

// restartIfVisible starts a fresh machine when m stopped because its surface
// went away but the surface came back before m finished. An Ensure in that
// window saw m still alive and started nothing.
func (d *Display) restartIfVisible(m *statemachine.StateMachine) {
	if d.vis == nil || !d.vis.IsVisible() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.current != m {
		return
	}
	d.log.Infof("Surface visible again, restarting %s face", d.face.Name())
	if err := d.startLocked(); err != nil {
		d.log.Errorf("Failed to restart %s face: %v", d.face.Name(), err)
	}
}

// Running reports whether a state machine is currently active.
func (d *Display) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return false
	}
	select {
	case <-d.current.Done():
		return false
	default:
		return true
	}
}

// Status returns the status of the most recent state machine, or Stopped if
// none was started.
func (d *Display) Status() statemachine.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return statemachine.Stopped
	}
	return d.current.Status()
}

// Face returns the face this display drives.
func (d *Display) Face() Face {
	return d.face
}

// Shutdown stops the running state machine, waits for its cleanup and
// refuses further Ensure calls.
func (d *Display) Shutdown() {
	d.mu.Lock()
	d.closed = true
	current := d.current
	d.mu.Unlock()

	if current != nil {
		current.Stop()
	}
	d.wg.Wait()
}
