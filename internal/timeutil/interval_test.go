package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func iv(startHour, endHour int) Interval {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", iv(10, 11), iv(10, 11), true},
		{"partial overlap", iv(10, 12), iv(11, 13), true},
		{"contained", iv(10, 14), iv(11, 12), true},
		{"touching endpoints not overlap", iv(9, 10), iv(10, 11), false},
		{"touching endpoints reversed", iv(10, 11), iv(9, 10), false},
		{"disjoint", iv(8, 9), iv(10, 11), false},
		{"straddles both", iv(9, 13), iv(10, 11), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			// overlap is symmetric
			require.Equal(t, tt.want, Overlaps(tt.b, tt.a))
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(iv(10, 11)))
	require.ErrorIs(t, Validate(iv(11, 10)), ErrInvalidRange)
	require.ErrorIs(t, Validate(iv(10, 10)), ErrInvalidRange)
}

func TestValidateFuture(t *testing.T) {
	now := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, ValidateFuture(iv(10, 11), now))
	require.ErrorIs(t, ValidateFuture(iv(8, 11), now), ErrPastStartTime)
	// start exactly at now is still "past"
	require.ErrorIs(t, ValidateFuture(iv(9, 11), now), ErrPastStartTime)
	// malformed range reported before the future check
	require.ErrorIs(t, ValidateFuture(iv(11, 10), now), ErrInvalidRange)
}
