package storage

import "sync"

// writeQueue serializes mutations per file within the process. Each file
// has an independent FIFO chain: a new mutation attaches behind the
// previous one at submission time, so later submissions always observe
// earlier results, and a failed mutation never stalls its successors.
//
// This is the in-process half of the write serializer; the cross-process
// half is the lock file (filelock.go).
type writeQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newWriteQueue() *writeQueue {
	return &writeQueue{tails: make(map[string]chan struct{})}
}

// enqueue runs fn after every previously enqueued mutation for path has
// finished, and returns fn's error.
func (q *writeQueue) enqueue(path string, fn func() error) error {
	q.mu.Lock()
	prev := q.tails[path]
	done := make(chan struct{})
	q.tails[path] = done
	q.mu.Unlock()

	defer func() {
		close(done)
		q.mu.Lock()
		if q.tails[path] == done {
			delete(q.tails, path)
		}
		q.mu.Unlock()
	}()

	if prev != nil {
		<-prev
	}
	return fn()
}
