// Package highlight projects an ordered list of words onto a character grid,
// producing the truth matrix of cells a clock face should light up.
//
// Cells may hold more than one character (such as the "o'" of "o'clock"), so a
// word is matched against the concatenation of the remaining cells in a row and
// then consumed cell by cell. Words never span rows.
package highlight

import (
	"strings"

	"github.com/mescon/Unqlocked/internal/logger"
)

// Outcome describes which attempt of Solve placed the tokens.
type Outcome string

const (
	// OutcomeStrict means every token was placed with a gap between adjacent words.
	OutcomeStrict Outcome = "strict"
	// OutcomeRelaxed means adjacent words had to be allowed to touch.
	OutcomeRelaxed Outcome = "relaxed"
	// OutcomePartial means some tokens could not be placed even when relaxed.
	OutcomePartial Outcome = "partial"
)

// NewTruthMatrix creates a height x width matrix with every cell unlit.
func NewTruthMatrix(height, width int) [][]bool {
	m := make([][]bool, height)
	for row := range m {
		m[row] = make([]bool, width)
	}
	return m
}

// Highlight marks tokens in truth as they are found in charGrid, scanning rows
// top to bottom. It reports whether every token was placed.
//
// When forceSpace is true, two consecutive tokens are never recognised without
// at least one unlit cell between them: with a row of a,h,a,l,f and tokens
// "a", "half", only the first "a" is lit and "half" must occur again later.
func Highlight(charGrid [][]string, truth [][]bool, tokens []string, forceSpace bool) bool {
	for row := range charGrid {
		if len(tokens) == 0 {
			break
		}
		consumed := HighlightRow(charGrid[row], row, truth, tokens, forceSpace)
		tokens = tokens[consumed:]
	}
	return len(tokens) == 0
}

// HighlightRow highlights as many leading tokens as possible within a single
// row and returns how many were consumed.
func HighlightRow(charRow []string, row int, truth [][]bool, tokens []string, forceSpace bool) int {
	consumed := 0
	i := 0
	for i < len(charRow) && consumed < len(tokens) {
		token := tokens[consumed]
		if !strings.HasPrefix(strings.Join(charRow[i:], ""), token) {
			i++
			continue
		}

		for len(token) > 0 {
			truth[row][i] = true
			// A cell can be wider than a single character
			if n := len(charRow[i]); n < len(token) {
				token = token[n:]
			} else {
				token = ""
			}
			i++
		}
		consumed++

		// i already points past the token; skipping one more cell enforces the gap
		if forceSpace {
			i++
		}
	}
	return consumed
}

// Solve lights the tokens on a fresh truth matrix. It first requires gaps
// between words, then retries once on a clean matrix allowing adjacent words.
// If both attempts leave tokens unplaced the second, partial matrix is kept.
// Failures are reported to log only.
func Solve(charGrid [][]string, height, width int, tokens []string, log logger.Logger) ([][]bool, Outcome) {
	truth := NewTruthMatrix(height, width)
	if Highlight(charGrid, truth, tokens, true) {
		return truth, OutcomeStrict
	}

	log.Infof("Unable to highlight solution. Reattempting with no spaces between words")
	truth = NewTruthMatrix(height, width)
	if Highlight(charGrid, truth, tokens, false) {
		log.Infof("Success")
		return truth, OutcomeRelaxed
	}

	log.Warnf("Failed to highlight solution %v again. Drawing best attempt", tokens)
	return truth, OutcomePartial
}
