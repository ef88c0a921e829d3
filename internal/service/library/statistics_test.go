package library

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadStatistics_CountersAreConcurrencySafe(t *testing.T) {
	t.Parallel()

	const perKind = 50

	stats := NewDownloadStatistics()
	stats.start()

	var waitGroup sync.WaitGroup

	for iter := 0; iter < perKind; iter++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			stats.trackDownloaded(100)
			stats.trackSkipped()
			stats.trackFailed()
			stats.coverDownloaded()
			stats.coverSkipped()
			stats.coverFailed()
			stats.recordError("album", "item", "phase", errors.New("boom"))
		}()
	}

	waitGroup.Wait()
	stats.finish()

	assert.EqualValues(t, perKind, stats.TracksDownloaded)
	assert.EqualValues(t, perKind, stats.TracksSkipped)
	assert.EqualValues(t, perKind, stats.TracksFailed)
	assert.EqualValues(t, perKind, stats.CoversDownloaded)
	assert.EqualValues(t, perKind, stats.CoversSkipped)
	assert.EqualValues(t, perKind, stats.CoversFailed)
	assert.EqualValues(t, perKind*100, stats.TotalBytesDownloaded)
	assert.Len(t, stats.Errors, perKind)

	require.False(t, stats.StartTime.IsZero())
	assert.False(t, stats.EndTime.Before(stats.StartTime))
}

func TestDownloadStatistics_RecordErrorKeepsDetails(t *testing.T) {
	t.Parallel()

	stats := NewDownloadStatistics()
	stats.recordError("Happy Songs for Happy People", "Hunted by a Freak", "track download", errors.New("catalog is down"))

	require.Len(t, stats.Errors, 1)

	recorded := stats.Errors[0]
	assert.Equal(t, "Happy Songs for Happy People", recorded.AlbumTitle)
	assert.Equal(t, "Hunted by a Freak", recorded.ItemTitle)
	assert.Equal(t, "track download", recorded.Phase)
	assert.Equal(t, "catalog is down", recorded.ErrorMessage)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"sub-second", 250 * time.Millisecond, "250ms"},
		{"seconds only", 42 * time.Second, "42s"},
		{"minutes and seconds", 3*time.Minute + 5*time.Second, "3m 5s"},
		{"hours, minutes and seconds", 2*time.Hour + 15*time.Minute + 30*time.Second, "2h 15m 30s"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
