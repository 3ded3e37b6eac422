package connection

import "sync"

// dispatcher delivers values to handlers in the order they were queued, on a
// single goroutine. The manager runs one for its events and one for the
// protocol log, so neither handlers nor log writes run under its lock.
type dispatcher[T any] struct {
	mu       sync.Mutex
	queue    []T
	handlers []func(T)
	closed   bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func newDispatcher[T any]() *dispatcher[T] {
	d := &dispatcher[T]{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// subscribe adds a handler. Handlers run in registration order.
func (d *dispatcher[T]) subscribe(h func(T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// enqueue queues a value without blocking. Values queued after close are
// dropped.
func (d *dispatcher[T]) enqueue(v T) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, v)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
		// Already pending
	}
}

// close delivers the values already queued and stops the dispatcher.
// Must not be called from a handler.
func (d *dispatcher[T]) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
}

func (d *dispatcher[T]) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.wake:
			d.drain()
		case <-d.done:
			d.drain()
			return
		}
	}
}

func (d *dispatcher[T]) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		batch := d.queue
		d.queue = nil
		handlers := d.handlers
		d.mu.Unlock()

		for _, v := range batch {
			for _, h := range handlers {
				h(v)
			}
		}
	}
}
