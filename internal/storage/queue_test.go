package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteQueueRunsInSubmissionOrder(t *testing.T) {
	q := newWriteQueue()

	var (
		mu    sync.Mutex
		order []int
	)
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.enqueue("shifts.json", func() error {
			close(started)
			<-release
			mu.Lock()
			order = append(order, 1)
			mu.Unlock()
			return nil
		})
	}()

	// second mutation submitted while the first is still running
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.enqueue("shifts.json", func() error {
			mu.Lock()
			order = append(order, 2)
			mu.Unlock()
			return nil
		})
	}()

	close(release)
	wg.Wait()

	require.Equal(t, []int{1, 2}, order)
}

func TestWriteQueueFailureDoesNotStallSuccessors(t *testing.T) {
	q := newWriteQueue()

	err := q.enqueue("shifts.json", func() error {
		return errors.New("boom")
	})
	require.Error(t, err)

	ran := false
	err = q.enqueue("shifts.json", func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestWriteQueueIsPerPath(t *testing.T) {
	q := newWriteQueue()

	blocked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = q.enqueue("shifts.json", func() error {
			<-blocked
			return nil
		})
		close(done)
	}()

	// a different file's queue is independent of the blocked one
	err := q.enqueue("users.json", func() error { return nil })
	require.NoError(t, err)

	close(blocked)
	<-done
}
