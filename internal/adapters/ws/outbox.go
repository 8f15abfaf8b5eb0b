package ws

import "sync"

// outbox is an unbounded FIFO of outbound frames. It starts at the
// configured capacity and grows as needed. ready holds a token while frames
// are pending and is closed once the outbox is closed.
type outbox struct {
	mu     sync.Mutex
	frames [][]byte
	ready  chan struct{}
	closed bool
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{
		frames: make([][]byte, 0, capacity),
		ready:  make(chan struct{}, 1),
	}
}

// push appends a frame. Returns false if the outbox is closed.
func (q *outbox) push(frame []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.frames = append(q.frames, frame)
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// drain removes and returns every pending frame in order.
func (q *outbox) drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil
	}
	out := q.frames
	q.frames = make([][]byte, 0, cap(out))
	return out
}

func (q *outbox) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// close rejects further pushes and wakes the reader. Reports whether this
// call closed it.
func (q *outbox) close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.closed = true
	q.frames = nil
	close(q.ready)
	return true
}
