// Package layout loads clock face layouts: the character grid printed on the
// face, the words used for hours and the table of phrases for each time.
package layout

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mescon/Unqlocked/internal/clock"
)

//go:embed layouts/*.yaml
var builtin embed.FS

// DefaultName is the built-in layout used when no layout file is configured.
const DefaultName = "english"

// Placeholders substituted by the solver with hour words.
const (
	CurrentHour = "%1h"
	NextHour    = "%2h"
)

var (
	ErrNoTimes       = errors.New("layout has no time entries")
	ErrDimensions    = errors.New("layout matrix does not match declared dimensions")
	ErrMissingHours  = errors.New("layout uses hour placeholders but does not define 12 hours")
	ErrDuplicateTime = errors.New("layout defines the same time twice")
)

// Entry is one row of the phrase table.
type Entry struct {
	At     clock.Time
	Phrase string
}

// Layout is an immutable clock face description.
type Layout struct {
	Name   string
	Width  int
	Height int
	// Matrix holds Height rows of Width cells. A cell may contain several characters.
	Matrix [][]string
	// Hours maps hour%12 to its word.
	Hours []string
	// Times is sorted by time of day.
	Times []Entry
}

type document struct {
	Name   string            `yaml:"name"`
	Width  int               `yaml:"width"`
	Height int               `yaml:"height"`
	Matrix []string          `yaml:"matrix"`
	Hours  []string          `yaml:"hours"`
	Times  map[string]string `yaml:"times"`
}

// Load reads and validates a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// Builtin returns one of the layouts compiled into the binary.
func Builtin(name string) (*Layout, error) {
	data, err := builtin.ReadFile("layouts/" + strings.ToLower(name) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in layout %q", name)
	}
	return Parse(data)
}

// Default returns the built-in English layout.
func Default() *Layout {
	l, err := Builtin(DefaultName)
	if err != nil {
		panic(fmt.Sprintf("built-in layout is invalid: %v", err))
	}
	return l
}

// Parse decodes a YAML layout document.
func Parse(data []byte) (*Layout, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid layout yaml: %w", err)
	}

	l := &Layout{
		Name:   doc.Name,
		Width:  doc.Width,
		Height: doc.Height,
		Hours:  doc.Hours,
	}

	for _, row := range doc.Matrix {
		l.Matrix = append(l.Matrix, strings.Fields(row))
	}

	seen := make(map[int]bool, len(doc.Times))
	for key, phrase := range doc.Times {
		at, err := clock.Parse(key)
		if err != nil {
			return nil, err
		}
		if seen[at.ToSeconds()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTime, at)
		}
		seen[at.ToSeconds()] = true
		l.Times = append(l.Times, Entry{At: at, Phrase: phrase})
	}
	sort.Slice(l.Times, func(i, j int) bool {
		return l.Times[i].At.ToSeconds() < l.Times[j].At.ToSeconds()
	})

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the structural invariants the clock faces rely on.
func (l *Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 || len(l.Matrix) != l.Height {
		return fmt.Errorf("%w: %dx%d declared, %d rows", ErrDimensions, l.Width, l.Height, len(l.Matrix))
	}
	for i, row := range l.Matrix {
		if len(row) != l.Width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrDimensions, i, len(row), l.Width)
		}
	}
	if len(l.Times) == 0 {
		return ErrNoTimes
	}
	for _, e := range l.Times {
		if strings.Contains(e.Phrase, CurrentHour) || strings.Contains(e.Phrase, NextHour) {
			if len(l.Hours) != 12 {
				return ErrMissingHours
			}
			break
		}
	}
	return nil
}

// Lowered returns a deep copy of the matrix with every cell lowercased.
func (l *Layout) Lowered() [][]string {
	m := make([][]string, len(l.Matrix))
	for row := range l.Matrix {
		m[row] = make([]string, len(l.Matrix[row]))
		for col, cell := range l.Matrix[row] {
			m[row][col] = strings.ToLower(cell)
		}
	}
	return m
}

// TimeKeys returns the time of every phrase table entry.
func (l *Layout) TimeKeys() []clock.Time {
	keys := make([]clock.Time, len(l.Times))
	for i, e := range l.Times {
		keys[i] = e.At
	}
	return keys
}
