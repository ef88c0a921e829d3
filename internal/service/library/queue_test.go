package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueue_DeliversInOrder(t *testing.T) {
	t.Parallel()

	queue := NewQueue[int]()

	for i := 0; i < 100; i++ {
		queue.Push(i)
	}

	queue.Close()

	received := make([]int, 0, 100)
	for value := range queue.Receive() {
		received = append(received, value)
	}

	expected := make([]int, 0, 100)
	for i := 0; i < 100; i++ {
		expected = append(expected, i)
	}

	assert.Equal(t, expected, received)
}

func TestQueue_PushNeverBlocks(t *testing.T) {
	t.Parallel()

	queue := NewQueue[int]()
	pushed := make(chan struct{})

	// Nothing reads from the queue while the producer runs.
	go func() {
		defer close(pushed)

		for i := 0; i < 10_000; i++ {
			queue.Push(i)
		}
	}()

	select {
	case <-pushed:
	case <-time.After(5 * time.Second):
		t.Fatal("queue backpressured a producer")
	}

	queue.Close()

	count := 0
	for range queue.Receive() {
		count++
	}

	assert.Equal(t, 10_000, count)
}

func TestQueue_PushAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	queue := NewQueue[string]()
	queue.Push("kept")
	queue.Close()

	// A straggler task may still report after shutdown; its message is
	// dropped silently.
	queue.Push("dropped")

	var received []string
	for value := range queue.Receive() {
		received = append(received, value)
	}

	assert.Equal(t, []string{"kept"}, received)
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	queue := NewQueue[int]()
	queue.Close()
	queue.Close()

	_, ok := <-queue.Receive()
	assert.False(t, ok)
}
