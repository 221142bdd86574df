package recommendation

import "sync"

// Observable holds the latest value of T and pushes every new value to its
// subscribers. A subscriber that falls behind skips intermediate values but
// always ends up holding the newest one.
type Observable[T any] struct {
	mu     sync.Mutex
	value  T
	nextID uint64
	subs   map[uint64]chan T
}

func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[uint64]chan T),
	}
}

// Current returns the latest emitted value.
func (o *Observable[T]) Current() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Emit replaces the current value and notifies subscribers without blocking.
func (o *Observable[T]) Emit(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.value = v
	for _, ch := range o.subs {
		offerLatest(ch, v)
	}
}

// Update replaces the current value with fn applied to it, atomically with
// respect to Emit, and notifies subscribers.
func (o *Observable[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.value = fn(o.value)
	for _, ch := range o.subs {
		offerLatest(ch, o.value)
	}
	return o.value
}

// Subscribe returns a channel primed with the current value and a function
// that unsubscribes and closes the channel. The cancel func is idempotent.
func (o *Observable[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++

	ch := make(chan T, 1)
	ch <- o.value
	o.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (o *Observable[T]) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// offerLatest must be called with o.mu held; ch has capacity 1.
func offerLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	// drop the stale value, then send
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
