package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mescon/Unqlocked/internal/clock"
	"github.com/mescon/Unqlocked/internal/layout"
)

func TestResolveTime_DefaultLayout(t *testing.T) {
	s := New(layout.Default())

	tests := []struct {
		at   clock.Time
		want []string
	}{
		{clock.FromHMS(10, 0, 0), []string{"it", "is", "ten", "o'clock"}},
		{clock.FromHMS(10, 7, 30), []string{"it", "is", "five", "past", "ten"}},
		{clock.FromHMS(10, 35, 0), []string{"it", "is", "twenty", "five", "to", "eleven"}},
		{clock.FromHMS(23, 55, 0), []string{"it", "is", "five", "to", "twelve"}},
		{clock.FromHMS(0, 15, 0), []string{"it", "is", "a", "quarter", "past", "twelve"}},
		{clock.FromHMS(13, 30, 0), []string{"it", "is", "half", "past", "one"}},
	}

	for _, tt := range tests {
		t.Run(tt.at.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, s.ResolveTime(tt.at))
		})
	}
}

func TestCountNodes(t *testing.T) {
	assert.Equal(t, 12, New(layout.Default()).CountNodes())
}

const exactLayout = `
width: 4
height: 1
matrix: ["N O O N"]
hours: [twelve, one, two, three, four, five, six, seven, eight, nine, ten, eleven]
times:
  "0:00": "%1h o'clock"
  "0:30": "half past %1h"
  "12:00": "Noon"
  "22:00": "Bed time"
`

func TestResolveTime_ExactRules(t *testing.T) {
	l, err := layout.Parse([]byte(exactLayout))
	require.NoError(t, err)
	s := New(l)

	assert.Equal(t, []string{"noon"}, s.ResolveTime(clock.FromHMS(12, 0, 0)), "exact rule wins the tie")
	assert.Equal(t, []string{"noon"}, s.ResolveTime(clock.FromHMS(12, 20, 0)))
	assert.Equal(t, []string{"half", "past", "twelve"}, s.ResolveTime(clock.FromHMS(12, 30, 0)))
	assert.Equal(t, []string{"bed", "time"}, s.ResolveTime(clock.FromHMS(22, 10, 0)))
	assert.Equal(t, []string{"eleven", "o'clock"}, s.ResolveTime(clock.FromHMS(23, 0, 0)))
}

func TestResolveTime_WrapsToPreviousDay(t *testing.T) {
	l, err := layout.Parse([]byte(`
width: 1
height: 1
matrix: ["A"]
times:
  "6:00": "morning"
  "20:00": "evening"
`))
	require.NoError(t, err)
	s := New(l)

	assert.Equal(t, []string{"evening"}, s.ResolveTime(clock.FromHMS(2, 0, 0)))
	assert.Equal(t, []string{"morning"}, s.ResolveTime(clock.FromHMS(6, 0, 0)))
}
