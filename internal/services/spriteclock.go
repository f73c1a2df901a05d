package services

import (
	"github.com/mescon/Unqlocked/internal/clock"
)

// SpriteDelay is the tick interval of the minute dots.
const SpriteDelay = 60

// SpriteClock lights one dot per minute past the last five-minute mark, the
// companion of a word clock that only resolves five-minute steps.
type SpriteClock struct {
	renderer Renderer
}

// NewSpriteClock builds a minute-dot face drawing on renderer.
func NewSpriteClock(renderer Renderer) *SpriteClock {
	return &SpriteClock{renderer: renderer}
}

func (s *SpriteClock) Name() string { return string(KindSprites) }

func (s *SpriteClock) Delay() int { return SpriteDelay }

func (s *SpriteClock) Step(t clock.Time) {
	s.renderer.DrawSprites(t.Minutes() % 5)
}

func (s *SpriteClock) Cleanup() {
	s.renderer.DrawSprites(0)
}
