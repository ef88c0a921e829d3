package library

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aphonin/fonoteka/internal/logger"
)

// summarySeparator frames the end-of-run report.
const summarySeparator = "═══════════════════════════════════════════════════════════════"

// DownloadError captures one failure for the end-of-run report.
type DownloadError struct {
	// AlbumTitle names the album the failed item belongs to.
	AlbumTitle string
	// ItemTitle names the failed track or cover.
	ItemTitle string
	// Phase describes which step failed.
	Phase string
	// ErrorMessage is the failure description.
	ErrorMessage string
}

// DownloadStatistics accumulates counters across a download run. The
// increment methods are safe to call from concurrent download tasks.
type DownloadStatistics struct {
	mu sync.Mutex

	// StartTime marks when the run started.
	StartTime time.Time
	// EndTime marks when the run finished.
	EndTime time.Time

	// TracksDownloaded counts tracks encoded and moved into place.
	TracksDownloaded int64
	// TracksSkipped counts tracks whose files already existed.
	TracksSkipped int64
	// TracksFailed counts tracks that exhausted their retry budget.
	TracksFailed int64

	// CoversDownloaded counts album covers saved.
	CoversDownloaded int64
	// CoversSkipped counts covers whose files already existed.
	CoversSkipped int64
	// CoversFailed counts covers that exhausted their retry budget.
	CoversFailed int64

	// TotalBytesDownloaded counts raw audio bytes fed to the encoder.
	TotalBytesDownloaded int64

	// Errors collects failure details for the final report.
	Errors []DownloadError
}

// NewDownloadStatistics creates an empty statistics accumulator.
func NewDownloadStatistics() *DownloadStatistics {
	return &DownloadStatistics{}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// start records the beginning of a run.
func (s *DownloadStatistics) start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.StartTime = time.Now()
}

// finish records the end of a run.
func (s *DownloadStatistics) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.EndTime = time.Now()
}

// trackDownloaded counts one encoded track and its input bytes.
func (s *DownloadStatistics) trackDownloaded(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TracksDownloaded++
	s.TotalBytesDownloaded += bytes
}

// trackSkipped counts one track that already existed.
func (s *DownloadStatistics) trackSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TracksSkipped++
}

// trackFailed counts one track that exhausted its retries.
func (s *DownloadStatistics) trackFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TracksFailed++
}

// coverDownloaded counts one saved album cover.
func (s *DownloadStatistics) coverDownloaded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CoversDownloaded++
}

// coverSkipped counts one cover that already existed.
func (s *DownloadStatistics) coverSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CoversSkipped++
}

// coverFailed counts one cover that exhausted its retries.
func (s *DownloadStatistics) coverFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CoversFailed++
}

// recordError stores one failure for the final report.
func (s *DownloadStatistics) recordError(albumTitle, itemTitle, phase string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Errors = append(s.Errors, DownloadError{
		AlbumTitle:   albumTitle,
		ItemTitle:    itemTitle,
		Phase:        phase,
		ErrorMessage: err.Error(),
	})
}

// PrintDownloadSummary logs a formatted summary of download statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	stats := s.stats

	stats.mu.Lock()
	defer stats.mu.Unlock()

	totalTracks := stats.TracksDownloaded + stats.TracksSkipped + stats.TracksFailed
	totalCovers := stats.CoversDownloaded + stats.CoversSkipped + stats.CoversFailed

	// If nothing was processed, don't print a summary.
	if totalTracks == 0 && totalCovers == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	printSummaryHeader(ctx, wasInterrupted)
	printTrackStatistics(ctx, stats, totalTracks)
	printDataTransferStatistics(ctx, stats)
	printCoverStatistics(ctx, stats, totalCovers)
	logger.Info(ctx, summarySeparator)
	printErrorDetails(ctx, stats)
	printFinalMessage(ctx, wasInterrupted, stats)
}

// printSummaryHeader prints the summary header.
func printSummaryHeader(ctx context.Context, wasInterrupted bool) {
	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	if wasInterrupted {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summarySeparator)
}

// printTrackStatistics prints track download statistics.
func printTrackStatistics(ctx context.Context, stats *DownloadStatistics, totalTracks int64) {
	if totalTracks == 0 {
		return
	}

	logger.Infof(ctx, "Tracks:           %d total processed", totalTracks)

	if stats.TracksDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:     %d", stats.TracksDownloaded)
	}

	if stats.TracksSkipped > 0 {
		logger.Infof(ctx, "  Already Exist:  %d", stats.TracksSkipped)
	}

	if stats.TracksFailed > 0 {
		logger.Infof(ctx, "  Failed:         %d", stats.TracksFailed)
	}

	successCount := stats.TracksDownloaded + stats.TracksSkipped
	successRate := float64(successCount) / float64(totalTracks) * 100
	logger.Infof(ctx, "  Success Rate:   %.1f%%", successRate)
}

// printDataTransferStatistics prints data transfer statistics.
func printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	if stats.StartTime.IsZero() || stats.EndTime.IsZero() {
		return
	}

	duration := stats.EndTime.Sub(stats.StartTime)

	// Only show if the duration is meaningful (> 100ms).
	if duration <= 100*time.Millisecond {
		return
	}

	logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

	if stats.TotalBytesDownloaded > 0 {
		bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
		logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
	}
}

// printCoverStatistics prints cover art download statistics.
func printCoverStatistics(ctx context.Context, stats *DownloadStatistics, totalCovers int64) {
	if totalCovers == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Cover Art:        %d total", totalCovers)

	if stats.CoversDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:     %d", stats.CoversDownloaded)
	}

	if stats.CoversSkipped > 0 {
		logger.Infof(ctx, "  Already Exist:  %d", stats.CoversSkipped)
	}

	if stats.CoversFailed > 0 {
		logger.Infof(ctx, "  Failed:         %d", stats.CoversFailed)
	}
}

// printErrorDetails prints detailed error information if any errors occurred.
func printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	for i := range stats.Errors {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, stats.Errors[i].AlbumTitle, stats.Errors[i].ItemTitle)
		logger.Errorf(ctx, "      Phase: %s", stats.Errors[i].Phase)
		logger.Errorf(ctx, "      Error: %s", stats.Errors[i].ErrorMessage)
	}

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)
}

// printFinalMessage prints a helpful message based on download results.
func printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.TracksDownloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d track(s) before interruption.", stats.TracksDownloaded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.TracksDownloaded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	case stats.TracksSkipped > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All tracks already exist in the output directory.")
	}
}
