package day

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, Day("2026-03-05"), d)

	for _, raw := range []string{"", "05-03-2026", "2026-3-5", "2026-03-32", "tomorrow"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalid, "input %q", raw)
	}
}

func TestOrderingMatchesChronology(t *testing.T) {
	assert.True(t, Day("2026-03-05").Before("2026-03-06"))
	assert.True(t, Day("2026-03-31").Before("2026-04-01"))
	assert.True(t, Day("2026-12-31").Before("2027-01-01"))
	assert.False(t, Day("2026-03-05").Before("2026-03-05"))
}

func TestFromTimeTruncates(t *testing.T) {
	ts := time.Date(2026, 3, 5, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, Day("2026-03-05"), FromTime(ts))
}

func TestTimeRoundTrip(t *testing.T) {
	d, err := Parse("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), d.Time())
	assert.True(t, Day("").IsZero())
	assert.True(t, Day("").Time().IsZero())
}
