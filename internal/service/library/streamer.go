package library

import (
	"context"
	"fmt"
	"io"
)

//go:generate $MOCKGEN -source=streamer.go -destination=mocks/streamer_mock.go

// URLFetcher performs a plain GET of the given URL and returns the response body.
// catalog.Client.FetchURL satisfies it.
type URLFetcher func(ctx context.Context, targetURL string) (io.ReadCloser, error)

// SegmentStreamer reassembles a segmented track into a single continuous stream.
type SegmentStreamer interface {
	// Stream fetches the plan's segments concurrently and returns a reader
	// that yields the initialization bytes followed by every media segment
	// in ascending number order. The reader must be closed by the caller;
	// closing it early stops the remaining fetches.
	Stream(ctx context.Context, plan *SegmentPlan) (io.ReadCloser, error)
}

// SegmentStreamerImpl implements the SegmentStreamer interface.
type SegmentStreamerImpl struct {
	// fetcher retrieves segment payloads over HTTP.
	fetcher URLFetcher
	// chunkPool bounds the number of segments fetched at the same time.
	chunkPool *Pool
}

// NewSegmentStreamer creates a new streamer over the given fetcher.
func NewSegmentStreamer(fetcher URLFetcher, chunkPool *Pool) SegmentStreamer {
	return &SegmentStreamerImpl{
		fetcher:   fetcher,
		chunkPool: chunkPool,
	}
}

// segmentResult carries the outcome of one segment fetch.
type segmentResult struct {
	data []byte
	err  error
}

// Stream fetches the initialization segment synchronously, so that a plan
// that cannot even start fails before the caller sees any payload bytes,
// then fans out the media segments and stitches them back in order.
func (s *SegmentStreamerImpl) Stream(ctx context.Context, plan *SegmentPlan) (io.ReadCloser, error) {
	initialization, err := s.fetchSegmentPooled(ctx, plan.InitializationURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch initialization segment: %w", err)
	}

	streamCtx, cancelStream := context.WithCancel(ctx)

	// Each segment gets its own single-buffered channel, queued in plan
	// order. A fetch goroutine sends exactly once and never blocks, so
	// abandoning the stream midway leaks nothing.
	results := make([]chan segmentResult, len(plan.Segments))

	for i, segment := range plan.Segments {
		results[i] = make(chan segmentResult, 1)

		go func(segment SegmentEntry, out chan<- segmentResult) {
			data, fetchErr := s.fetchSegmentPooled(streamCtx, plan.MediaURL(segment.Number))
			if fetchErr != nil {
				fetchErr = fmt.Errorf("failed to fetch segment %d: %w", segment.Number, fetchErr)
			}

			out <- segmentResult{data: data, err: fetchErr}
		}(segment, results[i])
	}

	pipeReader, pipeWriter := io.Pipe()

	go func() {
		defer cancelStream()

		if _, writeErr := pipeWriter.Write(initialization); writeErr != nil {
			return
		}

		for _, out := range results {
			result := <-out
			if result.err != nil {
				pipeWriter.CloseWithError(result.err) //nolint:errcheck,gosec // Pipe close never fails.

				return
			}

			if _, writeErr := pipeWriter.Write(result.data); writeErr != nil {
				// The reader has gone away; the deferred cancel stops
				// the remaining fetches.
				return
			}
		}

		pipeWriter.Close() //nolint:errcheck,gosec // Pipe close never fails.
	}()

	return pipeReader, nil
}

// fetchSegmentPooled downloads one segment while holding a chunk permit.
func (s *SegmentStreamerImpl) fetchSegmentPooled(ctx context.Context, targetURL string) ([]byte, error) {
	if err := s.chunkPool.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.chunkPool.Release()

	body, err := s.fetcher(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(body)

	body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

	if err != nil {
		return nil, err
	}

	return data, nil
}
