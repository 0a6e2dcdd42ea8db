package moneygameutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	parser := NewScheduleParser()
	now := time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC) // a Wednesday

	t.Run("rfc3339 passes through", func(t *testing.T) {
		got, err := parser.ParseSchedule("2026-08-15T09:00:00Z", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("natural language resolves relative to now", func(t *testing.T) {
		got, err := parser.ParseSchedule("tomorrow at 9am", now)
		require.NoError(t, err)
		assert.Equal(t, 13, got.Day())
		assert.Equal(t, 9, got.Hour())
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := parser.ParseSchedule("   ", now)
		assert.Error(t, err)
	})

	t.Run("gibberish rejected", func(t *testing.T) {
		_, err := parser.ParseSchedule("xyzzy plugh", now)
		assert.Error(t, err)
	})
}
