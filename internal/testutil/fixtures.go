package testutil

import (
	"testing"

	"github.com/mescon/Unqlocked/internal/layout"
)

// TinyLayoutYAML is a 3x5 face. At 0:00 the phrase fits with gaps, at 0:05
// "a" and "half" touch so only the relaxed attempt places them, and at 0:10
// "two" is not on the face at all.
const TinyLayoutYAML = `
name: Tiny
width: 5
height: 3
matrix:
  - "I T X I S"
  - "A H A L F"
  - "O N E X X"
hours: [twelve, one, two, three, four, five, six, seven, eight, nine, ten, eleven]
times:
  "0:00": "it is one"
  "0:05": "it is a half"
  "0:10": "it is a half two"
`

// MustLayout parses a layout document or fails the test.
func MustLayout(t *testing.T, doc string) *layout.Layout {
	t.Helper()
	l, err := layout.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}
	return l
}

// TinyLayout returns the parsed TinyLayoutYAML.
func TinyLayout(t *testing.T) *layout.Layout {
	t.Helper()
	return MustLayout(t, TinyLayoutYAML)
}
