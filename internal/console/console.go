// Package console draws clock faces on a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Renderer prints each frame to an io.Writer. Lit cells are bold and coloured,
// unlit cells are faint. It is always visible.
type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	matrix [][]string
	// cellWidth pads multi-character cells so columns stay aligned
	cellWidth int
	lit       *color.Color
	unlit     *color.Color
	// plain marks lit cells by case instead of colour
	plain bool
	clear bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithoutColor disables ANSI colours. Lit cells are shown uppercase and unlit ones as dots.
func WithoutColor() Option {
	return func(r *Renderer) { r.plain = true }
}

// WithClearScreen redraws in place by clearing the terminal before each frame.
func WithClearScreen() Option {
	return func(r *Renderer) { r.clear = true }
}

// NewRenderer creates a renderer for the given character grid.
func NewRenderer(out io.Writer, matrix [][]string, opts ...Option) *Renderer {
	width := 1
	for _, row := range matrix {
		for _, cell := range row {
			if n := len([]rune(cell)); n > width {
				width = n
			}
		}
	}

	r := &Renderer{
		out:       out,
		matrix:    matrix,
		cellWidth: width,
		lit:       color.New(color.FgHiYellow, color.Bold),
		unlit:     color.New(color.Faint),
		plain:     color.NoColor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DrawMatrix prints the grid with the cells marked in m highlighted.
func (r *Renderer) DrawMatrix(m [][]bool) {
	var b strings.Builder
	for row, cells := range r.matrix {
		line := make([]string, len(cells))
		for col, cell := range cells {
			on := row < len(m) && col < len(m[row]) && m[row][col]
			line[col] = r.cell(cell, on)
		}
		b.WriteString(strings.TrimRight(strings.Join(line, " "), " "))
		b.WriteByte('\n')
	}
	r.write(b.String())
}

// DrawSprites prints n minute dots below the grid.
func (r *Renderer) DrawSprites(n int) {
	dots := strings.Repeat("● ", n) + strings.Repeat("○ ", 4-min(n, 4))
	r.write(strings.TrimRight(dots, " ") + "\n")
}

// IsVisible implements statemachine.Visibility. A terminal never goes away.
func (r *Renderer) IsVisible() bool {
	return true
}

func (r *Renderer) cell(text string, on bool) string {
	pad := strings.Repeat(" ", r.cellWidth-len([]rune(text)))
	switch {
	case r.plain && on:
		return strings.ToUpper(text) + pad
	case r.plain:
		return strings.Repeat(".", len([]rune(text))) + pad
	case on:
		return r.lit.Sprint(text + pad)
	default:
		return r.unlit.Sprint(text + pad)
	}
}

func (r *Renderer) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clear {
		s = "\033[H\033[2J" + s
	}
	fmt.Fprint(r.out, s)
}
