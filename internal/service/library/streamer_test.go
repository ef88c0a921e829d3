package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSegmentPlan(segmentCount int64) *SegmentPlan {
	plan := &SegmentPlan{
		InitializationURL: "https://cdn.example.com/init.mp4",
		MediaTemplate:     "https://cdn.example.com/segment-$Number$.m4s",
		StartNumber:       1,
		Segments:          make([]SegmentEntry, 0, segmentCount),
	}

	for i := int64(1); i <= segmentCount; i++ {
		plan.Segments = append(plan.Segments, SegmentEntry{Number: i, Duration: 40000})
	}

	return plan
}

func testSegmentPayloads(plan *SegmentPlan) map[string]string {
	payloads := map[string]string{plan.InitializationURL: "INIT|"}

	for _, segment := range plan.Segments {
		payloads[plan.MediaURL(segment.Number)] = fmt.Sprintf("segment-%d|", segment.Number)
	}

	return payloads
}

func TestSegmentStreamerImpl_Stream_ReassemblesInOrder(t *testing.T) {
	t.Parallel()

	plan := testSegmentPlan(8)
	payloads := testSegmentPayloads(plan)

	expected := payloads[plan.InitializationURL]
	for _, segment := range plan.Segments {
		expected += payloads[plan.MediaURL(segment.Number)]
	}

	fetcher := func(_ context.Context, targetURL string) (io.ReadCloser, error) {
		payload, ok := payloads[targetURL]
		if !ok {
			return nil, fmt.Errorf("unexpected URL %q", targetURL)
		}

		// Random latency shuffles the completion order.
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)

		return io.NopCloser(strings.NewReader(payload)), nil
	}

	streamer := NewSegmentStreamer(fetcher, NewPool(4))

	stream, err := streamer.Stream(context.Background(), plan)
	require.NoError(t, err)

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	assert.Equal(t, expected, string(data))
}

func TestSegmentStreamerImpl_Stream_SegmentFailureClosesStream(t *testing.T) {
	t.Parallel()

	plan := testSegmentPlan(3)
	payloads := testSegmentPayloads(plan)

	fetcher := func(_ context.Context, targetURL string) (io.ReadCloser, error) {
		if targetURL == plan.MediaURL(2) {
			return nil, errors.New("storage node is gone")
		}

		return io.NopCloser(strings.NewReader(payloads[targetURL])), nil
	}

	streamer := NewSegmentStreamer(fetcher, NewPool(4))

	stream, err := streamer.Stream(context.Background(), plan)
	require.NoError(t, err)

	defer stream.Close() //nolint:errcheck // Closing the stream, error is not critical.

	data, err := io.ReadAll(stream)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to fetch segment 2")
	assert.ErrorContains(t, err, "storage node is gone")

	// Everything before the failing segment is delivered intact.
	assert.Equal(t, "INIT|segment-1|", string(data))
}

func TestSegmentStreamerImpl_Stream_HonorsChunkPool(t *testing.T) {
	t.Parallel()

	var (
		trackerMutex  sync.Mutex
		activeFetches int
		peakFetches   int
	)

	fetcher := func(_ context.Context, _ string) (io.ReadCloser, error) {
		trackerMutex.Lock()

		activeFetches++
		if activeFetches > peakFetches {
			peakFetches = activeFetches
		}

		trackerMutex.Unlock()

		time.Sleep(5 * time.Millisecond)

		trackerMutex.Lock()
		activeFetches--
		trackerMutex.Unlock()

		return io.NopCloser(strings.NewReader("x")), nil
	}

	streamer := NewSegmentStreamer(fetcher, NewPool(2))

	stream, err := streamer.Stream(context.Background(), testSegmentPlan(12))
	require.NoError(t, err)

	_, err = io.ReadAll(stream)
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	trackerMutex.Lock()
	defer trackerMutex.Unlock()

	assert.LessOrEqual(t, peakFetches, 2)
}

func TestSegmentStreamerImpl_Stream_InitializationFailure(t *testing.T) {
	t.Parallel()

	var fetchCalls atomic.Int64

	fetcher := func(_ context.Context, _ string) (io.ReadCloser, error) {
		fetchCalls.Add(1)

		return nil, errors.New("storage node is gone")
	}

	streamer := NewSegmentStreamer(fetcher, NewPool(4))

	stream, err := streamer.Stream(context.Background(), testSegmentPlan(5))
	require.Error(t, err)
	assert.Nil(t, stream)
	assert.ErrorContains(t, err, "failed to fetch initialization segment")

	// No media segment is requested when the plan cannot even start.
	assert.EqualValues(t, 1, fetchCalls.Load())
}

func TestSegmentStreamerImpl_Stream_CloseStopsFetches(t *testing.T) {
	t.Parallel()

	plan := testSegmentPlan(2)
	payloads := testSegmentPayloads(plan)

	canceled := make(chan struct{})

	fetcher := func(ctx context.Context, targetURL string) (io.ReadCloser, error) {
		if targetURL == plan.MediaURL(2) {
			<-ctx.Done()
			close(canceled)

			return nil, ctx.Err()
		}

		return io.NopCloser(strings.NewReader(payloads[targetURL])), nil
	}

	streamer := NewSegmentStreamer(fetcher, NewPool(4))

	stream, err := streamer.Stream(context.Background(), plan)
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	select {
	case <-canceled:
	case <-time.After(5 * time.Second):
		t.Fatal("pending segment fetch was not canceled after the stream was closed")
	}
}
