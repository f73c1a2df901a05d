package services

import (
	"fmt"

	"github.com/mescon/Unqlocked/internal/clock"
	"github.com/mescon/Unqlocked/internal/highlight"
	"github.com/mescon/Unqlocked/internal/layout"
	"github.com/mescon/Unqlocked/internal/logger"
)

// WordClock spells the time by lighting words on a character grid.
type WordClock struct {
	width, height int
	// matrix is the lowercased layout grid, read-only after construction
	matrix   [][]string
	phrases  PhraseSource
	renderer Renderer
	recorder HighlightRecorder
	delay    int
	log      logger.Logger
}

// NewWordClock builds a word clock for l. The tick delay is derived from the
// layout's phrase table; a table that yields no delay is rejected.
func NewWordClock(l *layout.Layout, phrases PhraseSource, renderer Renderer, log logger.Logger, recorder HighlightRecorder) (*WordClock, error) {
	delay, err := CalcDelay(l.TimeKeys())
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", l.Name, err)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &WordClock{
		width:    l.Width,
		height:   l.Height,
		matrix:   l.Lowered(),
		phrases:  phrases,
		renderer: renderer,
		recorder: recorder,
		delay:    delay,
		log:      log,
	}, nil
}

func (w *WordClock) Name() string { return string(KindWords) }

// Delay returns the tick interval in seconds.
func (w *WordClock) Delay() int { return w.delay }

// Step resolves t to words, highlights them and draws the result.
func (w *WordClock) Step(t clock.Time) {
	w.log.Debugf("Solving for the current time (%s)", t)
	tokens := w.phrases.ResolveTime(t)
	w.log.Debugf("Solution: %v", tokens)

	truth, outcome := highlight.Solve(w.matrix, w.height, w.width, tokens, w.log)
	if w.recorder != nil {
		w.recorder.RecordHighlight(outcome)
	}

	w.renderer.DrawMatrix(truth)
}

// Cleanup turns every cell off.
func (w *WordClock) Cleanup() {
	w.renderer.DrawMatrix(highlight.NewTruthMatrix(w.height, w.width))
}
