package library

import (
	"context"
	"fmt"
	"io"

	"github.com/aphonin/fonoteka/internal/client/catalog"
)

// ProgressState is a track's lifecycle stage. States form a total order and
// a track only moves forward within a single attempt; a retry resets the
// track back to StateWaiting.
type ProgressState int64

const (
	// StateWaiting means the track attempt has not started streaming yet.
	StateWaiting ProgressState = iota
	// StateDownloading means bytes are flowing into the encoder.
	StateDownloading
	// StateTranscoding means the input is complete and the encoder is draining.
	StateTranscoding
	// StateFinished means the output file is in place.
	StateFinished
)

// String returns a human-readable name of the state.
func (s ProgressState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateDownloading:
		return "downloading"
	case StateTranscoding:
		return "transcoding"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is one progress message flowing from download tasks to the aggregator.
type Event interface {
	isEvent()
}

// AlbumDiscovered announces an album entering the download board.
type AlbumDiscovered struct {
	AlbumID int64
	Album   *catalog.Album
}

// TrackProgress reports a track's lifecycle transition. Bytes carries the
// running input byte count for StateDownloading transitions.
type TrackProgress struct {
	AlbumID int64
	TrackID int64
	State   ProgressState
	Bytes   int64
}

// TrackFailed reports a track that exhausted its retry budget.
type TrackFailed struct {
	AlbumID int64
	TrackID int64
	Err     error
}

// AlbumDone announces that every task of an album has settled.
type AlbumDone struct {
	AlbumID int64
}

func (AlbumDiscovered) isEvent() {}
func (TrackProgress) isEvent()   {}
func (TrackFailed) isEvent()     {}
func (AlbumDone) isEvent()       {}

// Pool is a bounded permit pool. Both concurrency limits of the download
// path (simultaneous tracks, in-flight segment fetches) are Pool instances
// constructed by the caller and injected where they apply.
type Pool struct {
	permits chan struct{}
}

// NewPool creates a pool with the given number of permits.
func NewPool(size int64) *Pool {
	return &Pool{permits: make(chan struct{}, size)}
}

// Acquire blocks until a permit is available or the context is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.permits <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to acquire permit: %w", ctx.Err())
	}
}

// Release returns a previously acquired permit.
func (p *Pool) Release() {
	<-p.permits
}

// Size returns the permit capacity of the pool.
func (p *Pool) Size() int {
	return cap(p.permits)
}

// Task is the handle on one background download unit. A failed task never
// aborts its siblings; the caller collects the outcome through Wait.
type Task struct {
	name string
	done chan struct{}
	err  error
}

func newTask(name string) *Task {
	return &Task{
		name: name,
		done: make(chan struct{}),
	}
}

// complete settles the task. It must be called exactly once.
func (t *Task) complete(err error) {
	t.err = err
	close(t.done)
}

// Name returns a short description of what the task downloads.
func (t *Task) Name() string {
	return t.name
}

// Wait blocks until the task settles or the context is done, and returns
// the task's final error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return fmt.Errorf("interrupted while waiting for %s: %w", t.name, ctx.Err())
	}
}

// TrackMetadata carries the tag values embedded into an encoded file.
type TrackMetadata struct {
	Album       string
	AlbumArtist string
	Artists     []string
	Title       string
	TrackNumber int64
	DiscNumber  int64
	Year        int
}

// TranscodeRequest describes one encoder invocation.
type TranscodeRequest struct {
	// Input is the raw audio stream fed to the encoder's stdin.
	Input io.Reader
	// Metadata is embedded into the output container.
	Metadata TrackMetadata
	// OutputPath is the final destination. The encoder writes to a
	// temporary sibling which is renamed here only once every pass succeeds.
	OutputPath string
	// Progress receives lifecycle transitions as the transcode advances.
	Progress func(state ProgressState, bytes int64)
}
