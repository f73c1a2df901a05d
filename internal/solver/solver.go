// Package solver turns a time of day into the words a layout uses to say it.
package solver

import (
	"strings"

	"github.com/mescon/Unqlocked/internal/clock"
	"github.com/mescon/Unqlocked/internal/layout"
)

type rule struct {
	at     clock.Time
	phrase string
	// hourly rules have a zero hour and repeat every hour
	hourly bool
}

// Solver resolves times against a layout's phrase table.
//
// Entries whose hour is zero repeat every hour; any other entry applies to that
// exact time of day. For a given time the latest rule starting at or before it
// wins, with exact rules beating hourly ones that start at the same second.
type Solver struct {
	rules []rule
	hours []string
}

// New builds a solver for l.
func New(l *layout.Layout) *Solver {
	s := &Solver{hours: l.Hours}
	for _, e := range l.Times {
		s.rules = append(s.rules, rule{
			at:     e.At,
			phrase: e.Phrase,
			hourly: e.At.Hours() == 0,
		})
	}
	return s
}

// CountNodes reports the number of rules the solver evaluates.
func (s *Solver) CountNodes() int {
	return len(s.rules)
}

// ResolveTime returns the lowercase tokens describing t.
// It returns nil when no rule applies.
func (s *Solver) ResolveTime(t clock.Time) []string {
	r, ok := s.match(t)
	if !ok {
		return nil
	}
	return s.tokens(r.phrase, t)
}

func (s *Solver) match(t clock.Time) (rule, bool) {
	var (
		best      rule
		bestStart = -1
		found     bool
	)
	hourStart := t.Hours() * 3600

	consider := func(r rule, start int) {
		if start > t.ToSeconds() {
			return
		}
		if start > bestStart || (start == bestStart && !r.hourly && best.hourly) {
			best, bestStart, found = r, start, true
		}
	}

	for _, r := range s.rules {
		if r.hourly {
			consider(r, hourStart+r.at.ToSeconds())
		} else {
			consider(r, r.at.ToSeconds())
		}
	}
	if found {
		return best, true
	}

	// Before the first rule of the day: fall back to the last exact rule of yesterday
	for _, r := range s.rules {
		if !r.hourly && (!found || r.at.ToSeconds() > best.at.ToSeconds()) {
			best, found = r, true
		}
	}
	return best, found
}

func (s *Solver) tokens(phrase string, t clock.Time) []string {
	if len(s.hours) == 12 {
		phrase = strings.ReplaceAll(phrase, layout.CurrentHour, s.hours[t.Hours()%12])
		phrase = strings.ReplaceAll(phrase, layout.NextHour, s.hours[(t.Hours()+1)%12])
	}
	return strings.Fields(strings.ToLower(phrase))
}
