package narration

import "sync"

// Completion resolves exactly once, when narration of a point is over. It is
// safe to resolve from any goroutine; later resolutions are ignored.
type Completion struct {
	once sync.Once
	done chan struct{}

	mu  sync.Mutex
	err error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Done is closed once the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Resolved reports whether Done is closed.
func (c *Completion) Resolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Err returns the speaker error that ended the narration, if any. It is only
// meaningful after Done is closed.
func (c *Completion) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Completion) resolve(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
}
