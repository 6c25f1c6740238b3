package synq

import "sync"

// Cursor is a mutex-guarded enumeration over a loaded result set. One
// cursor instance backs each logical database and is shared across
// repeated calls, so every method holds the lock for its duration:
// concurrent Next calls observe a linearizable pop order with each item
// delivered exactly once.
//
// Lifecycle: a cursor starts closed. Open loads a full ordered queue,
// Next pops the front item until the queue is exhausted (the cursor
// stays open), Close discards whatever remains. Calling Next on a
// closed cursor is a protocol violation by the caller and panics; the
// surrounding open/next/close convention guarantees open-before-next.
type Cursor[T any] struct {
	mu    sync.Mutex
	items []T
	open  bool
}

func NewCursor[T any]() *Cursor[T] {
	return &Cursor[T]{}
}

// Open loads the cursor with items in order. Opening an already-open
// cursor replaces the pending queue.
func (c *Cursor[T]) Open(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append([]T(nil), items...)
	c.open = true
}

// Next pops and returns the front item. The second result is false
// once the queue is exhausted; the cursor remains open and still needs
// an explicit Close.
func (c *Cursor[T]) Next() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		panic("synq: Next on a closed cursor")
	}

	var zero T
	if len(c.items) == 0 {
		return zero, false
	}

	v := c.items[0]
	c.items[0] = zero // move out, don't retain
	c.items = c.items[1:]
	return v, true
}

// Close discards any remaining items. Closing a closed cursor is a
// no-op.
func (c *Cursor[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.open = false
}

func (c *Cursor[T]) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Cursor[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
