package services

import (
	"github.com/mescon/Unqlocked/internal/clock"
	"github.com/mescon/Unqlocked/internal/highlight"
	"github.com/mescon/Unqlocked/internal/statemachine"
)

// PhraseSource turns a time of day into the ordered, lowercase words to light.
type PhraseSource interface {
	ResolveTime(t clock.Time) []string
	// CountNodes is diagnostic only
	CountNodes() int
}

// Renderer is the surface a clock face draws on.
type Renderer interface {
	// DrawMatrix draws a truth matrix with the same dimensions as the layout.
	DrawMatrix(m [][]bool)
	// DrawSprites lights the given number of minute dots.
	DrawSprites(n int)
}

// HighlightRecorder receives the outcome of each highlight pass.
type HighlightRecorder interface {
	RecordHighlight(outcome highlight.Outcome)
}

// FaceTracker is told when state machines start and finish.
type FaceTracker interface {
	FaceStarted(face string)
	FaceStopped()
}

// Face is a clock face variant: the step/cleanup pair a state machine drives,
// plus the tick delay it needs.
type Face interface {
	statemachine.Face
	Delay() int
}
