package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimer(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr error
	}{
		{"30s", 30 * time.Second, nil},
		{"5m", 5 * time.Minute, nil},
		{"2h", 2 * time.Hour, nil},
		{"24h", 24 * time.Hour, nil},
		{" 10S ", 10 * time.Second, nil},
		{"0s", 0, ErrTooShort},
		{"-5s", 0, ErrTooShort},
		{"25h", 0, ErrTooLong},
		{"1441m", 0, ErrTooLong},
		{"1d", 0, ErrInvalidFormat},
		{"10", 0, ErrInvalidFormat},
		{"s", 0, ErrInvalidFormat},
		{"", 0, ErrInvalidFormat},
		{"abc", 0, ErrInvalidFormat},
		{"1.5h", 0, ErrInvalidFormat},
		{"99999999999999999h", 0, ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimer(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReminder(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr error
	}{
		{"10s", 10 * time.Second, nil},
		{"1d", 24 * time.Hour, nil},
		{"30d", 30 * 24 * time.Hour, nil},
		{"720h", 720 * time.Hour, nil},
		{"9s", 0, ErrTooShort},
		{"31d", 0, ErrTooLong},
		{"721h", 0, ErrTooLong},
		{"1w", 0, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReminder(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReminderAt(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	t.Run("strict format wins", func(t *testing.T) {
		d, err := ParseReminderAt("5m", now, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, d)
	})

	t.Run("strict bounds are not bypassed", func(t *testing.T) {
		_, err := ParseReminderAt("5s", now, time.UTC)
		require.ErrorIs(t, err, ErrTooShort)
	})

	t.Run("natural language", func(t *testing.T) {
		d, err := ParseReminderAt("in 2 hours", now, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, d)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseReminderAt("whenever you feel like it", now, time.UTC)
		require.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "1 second", Humanize(time.Second))
	assert.Equal(t, "45 seconds", Humanize(45*time.Second))
	assert.Equal(t, "1 minute", Humanize(90*time.Second))
	assert.Equal(t, "5 minutes", Humanize(5*time.Minute))
	assert.Equal(t, "2 hours", Humanize(2*time.Hour))
}
