package recommendation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable_SubscribePrimedWithCurrent(t *testing.T) {
	o := NewObservable(1)
	ch, cancel := o.Subscribe()
	defer cancel()

	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 1, o.Current())
}

func TestObservable_SlowSubscriberGetsLatest(t *testing.T) {
	o := NewObservable(0)
	ch, cancel := o.Subscribe()
	defer cancel()

	for i := 1; i <= 10; i++ {
		o.Emit(i)
	}

	assert.Equal(t, 10, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestObservable_CancelIsIdempotent(t *testing.T) {
	o := NewObservable("idle")
	ch, cancel := o.Subscribe()
	require.Equal(t, 1, o.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, o.Subscribers())

	<-ch // primed value is still buffered
	_, open := <-ch
	assert.False(t, open)

	// emitting after cancel must not panic on the closed channel
	o.Emit("selecting")
	assert.Equal(t, "selecting", o.Current())
}

func TestObservable_ConcurrentEmitters(t *testing.T) {
	o := NewObservable(0)
	ch, cancel := o.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.Emit(n*100 + j)
			}
		}(i)
	}
	wg.Wait()

	o.Emit(-1)
	assert.Equal(t, -1, <-ch)
}

func TestObservable_UpdateAppliesToLatest(t *testing.T) {
	o := NewObservable(1)
	ch, cancel := o.Subscribe()
	defer cancel()
	<-ch

	o.Emit(5)
	got := o.Update(func(v int) int { return v * 10 })

	assert.Equal(t, 50, got)
	assert.Equal(t, 50, o.Current())
	assert.Equal(t, 50, <-ch)
}
