package queue

import "sync"

// Mailbox collects work for the foreground goroutine. Any goroutine may Post;
// only the foreground calls Drain.
type Mailbox struct {
	mu      sync.Mutex
	pending []func()
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) Post(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Async is Post, so a Mailbox can stand in wherever a dispatcher is expected.
func (m *Mailbox) Async(fn func()) bool {
	m.Post(fn)
	return true
}

// Drain runs everything posted before the call, in order, and returns how many
// functions ran. Work posted while draining waits for the next Drain.
func (m *Mailbox) Drain() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
