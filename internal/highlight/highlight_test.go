package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescon/Unqlocked/internal/logger"
)

func grid(rows ...string) [][]string {
	g := make([][]string, len(rows))
	for i, r := range rows {
		g[i] = strings.Fields(r)
	}
	return g
}

// litSpans collects the text of each maximal run of lit cells, row by row.
func litSpans(charGrid [][]string, truth [][]bool) []string {
	var spans []string
	for row := range charGrid {
		var b strings.Builder
		for col, cell := range charGrid[row] {
			if truth[row][col] {
				b.WriteString(cell)
				continue
			}
			if b.Len() > 0 {
				spans = append(spans, b.String())
				b.Reset()
			}
		}
		if b.Len() > 0 {
			spans = append(spans, b.String())
		}
	}
	return spans
}

func TestNewTruthMatrix(t *testing.T) {
	m := NewTruthMatrix(3, 4)

	require.Len(t, m, 3)
	for _, row := range m {
		assert.Equal(t, []bool{false, false, false, false}, row)
	}
}

// =============================================================================
// HighlightRow tests
// =============================================================================

func TestHighlightRow_ForceSpaceRejectsAdjacency(t *testing.T) {
	row := []string{"a", "h", "a", "l", "f"}
	truth := NewTruthMatrix(1, 5)

	consumed := HighlightRow(row, 0, truth, []string{"a", "half"}, true)

	assert.Equal(t, 1, consumed)
	assert.Equal(t, []bool{true, false, false, false, false}, truth[0])
}

func TestHighlightRow_RelaxedAllowsAdjacency(t *testing.T) {
	row := []string{"a", "h", "a", "l", "f"}
	truth := NewTruthMatrix(1, 5)

	consumed := HighlightRow(row, 0, truth, []string{"a", "half"}, false)

	assert.Equal(t, 2, consumed)
	assert.Equal(t, []bool{true, true, true, true, true}, truth[0])
}

func TestHighlightRow_MultiCharacterCell(t *testing.T) {
	row := []string{"x", "o'", "c", "l", "o", "c", "k"}
	truth := NewTruthMatrix(1, len(row))

	consumed := HighlightRow(row, 0, truth, []string{"o'clock"}, true)

	assert.Equal(t, 1, consumed)
	assert.Equal(t, []bool{false, true, true, true, true, true, true}, truth[0])
}

func TestHighlightRow_TokenShorterThanCell(t *testing.T) {
	row := []string{"o'", "k"}
	truth := NewTruthMatrix(1, 2)

	consumed := HighlightRow(row, 0, truth, []string{"o"}, true)

	assert.Equal(t, 1, consumed)
	assert.Equal(t, []bool{true, false}, truth[0])
}

func TestHighlightRow_TokenLongerThanRow(t *testing.T) {
	row := []string{"t", "e", "n"}
	truth := NewTruthMatrix(1, 3)

	consumed := HighlightRow(row, 0, truth, []string{"tenth"}, true)

	assert.Equal(t, 0, consumed)
	assert.Equal(t, []bool{false, false, false}, truth[0])
}

func TestHighlightRow_SkipsToLaterOccurrence(t *testing.T) {
	row := []string{"t", "w", "o", "x", "t", "e", "n"}
	truth := NewTruthMatrix(1, len(row))

	consumed := HighlightRow(row, 0, truth, []string{"ten"}, true)

	assert.Equal(t, 1, consumed)
	assert.Equal(t, []bool{false, false, false, false, true, true, true}, truth[0])
}

func TestHighlightRow_NoTokens(t *testing.T) {
	truth := NewTruthMatrix(1, 2)

	assert.Equal(t, 0, HighlightRow([]string{"a", "b"}, 0, truth, nil, true))
}

// =============================================================================
// Highlight tests
// =============================================================================

func TestHighlight_EmptyTokensSucceeds(t *testing.T) {
	g := grid("a b")
	truth := NewTruthMatrix(1, 2)

	assert.True(t, Highlight(g, truth, nil, true))
	assert.Equal(t, []bool{false, false}, truth[0])
}

func TestHighlight_TokensCarryToNextRow(t *testing.T) {
	g := grid(
		"i t x i s",
		"t e n x x",
		"p a s t x",
	)
	truth := NewTruthMatrix(3, 5)
	tokens := []string{"it", "is", "ten", "past"}

	require.True(t, Highlight(g, truth, tokens, true))
	assert.Equal(t, []string{"it", "is", "ten", "past"}, litSpans(g, truth))
	assert.Equal(t, []string{"it", "is", "ten", "past"}, tokens, "caller's slice must not be modified")
}

func TestHighlight_TokensNeverSpanRows(t *testing.T) {
	g := grid(
		"x x h a",
		"l f x x",
	)
	truth := NewTruthMatrix(2, 4)

	assert.False(t, Highlight(g, truth, []string{"half"}, true))
	assert.Equal(t, [][]bool{{false, false, false, false}, {false, false, false, false}}, truth)
}

func TestHighlight_OrderIsPreserved(t *testing.T) {
	// "past" appears before "ten" but tokens must be consumed in order
	g := grid("p a s t x t e n x p a s t")
	truth := NewTruthMatrix(1, 13)

	require.True(t, Highlight(g, truth, []string{"ten", "past"}, true))
	assert.Equal(t, []string{"ten", "past"}, litSpans(g, truth))
	assert.False(t, truth[0][0], "the first 'past' precedes 'ten' and must stay unlit")
}

func TestHighlight_StopsScanningWhenDone(t *testing.T) {
	g := grid("o n e", "o n e")
	truth := NewTruthMatrix(2, 3)

	require.True(t, Highlight(g, truth, []string{"one"}, true))
	assert.Equal(t, []bool{true, true, true}, truth[0])
	assert.Equal(t, []bool{false, false, false}, truth[1])
}

// =============================================================================
// Solve tests
// =============================================================================

func TestSolve_Strict(t *testing.T) {
	g := grid("a x h a l f")

	truth, outcome := Solve(g, 1, 6, []string{"a", "half"}, logger.Nop())

	assert.Equal(t, OutcomeStrict, outcome)
	assert.Equal(t, []string{"a", "half"}, litSpans(g, truth))
}

func TestSolve_FallsBackToRelaxed(t *testing.T) {
	g := grid("a h a l f")

	truth, outcome := Solve(g, 1, 5, []string{"a", "half"}, logger.Nop())

	assert.Equal(t, OutcomeRelaxed, outcome)
	assert.Equal(t, [][]bool{{true, true, true, true, true}}, truth)
}

func TestSolve_PartialKeepsSecondAttempt(t *testing.T) {
	g := grid("a h a l f")

	truth, outcome := Solve(g, 1, 5, []string{"a", "half", "ten"}, logger.Nop())

	assert.Equal(t, OutcomePartial, outcome)
	assert.Equal(t, [][]bool{{true, true, true, true, true}}, truth, "relaxed attempt is the one drawn")
}

func TestSolve_EmptyTokens(t *testing.T) {
	truth, outcome := Solve(grid("a b"), 1, 2, nil, logger.Nop())

	assert.Equal(t, OutcomeStrict, outcome)
	assert.Equal(t, [][]bool{{false, false}}, truth)
}
