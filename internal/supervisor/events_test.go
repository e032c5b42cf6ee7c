// ABOUTME: Tests for the publish-subscribe event emitter.
// ABOUTME: Covers subscription, unsubscription, and dispatch order.

package supervisor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_DeliversToAllHandlers(t *testing.T) {
	e := NewEmitter(nil)

	var got []int
	e.Subscribe(EventStarted, func(Event) { got = append(got, 1) })
	e.Subscribe(EventStarted, func(Event) { got = append(got, 2) })
	e.Subscribe(EventStopped, func(Event) { got = append(got, 3) })

	e.Emit(Event{Name: EventStarted, AgentID: "a"})

	assert.Equal(t, []int{1, 2}, got, "handlers run in subscription order; other events untouched")
}

func TestEmitter_EmitWithNoHandlers(t *testing.T) {
	e := NewEmitter(nil)
	// Must not panic or block.
	e.Emit(Event{Name: EventUnhealthy, AgentID: "a"})
}

func TestEmitter_Unsubscribe(t *testing.T) {
	e := NewEmitter(nil)

	var calls int
	subID := e.Subscribe(EventStarted, func(Event) { calls++ })

	e.Emit(Event{Name: EventStarted})
	e.Unsubscribe(EventStarted, subID)
	e.Emit(Event{Name: EventStarted})

	assert.Equal(t, 1, calls)

	// Unsubscribing twice or with an unknown ID is harmless.
	e.Unsubscribe(EventStarted, subID)
	e.Unsubscribe("nope", "nope")
}

func TestEmitter_ConcurrentSubscribeAndEmit(t *testing.T) {
	e := NewEmitter(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.Subscribe(EventStateChanged, func(Event) {})
		}()
		go func() {
			defer wg.Done()
			e.Emit(Event{Name: EventStateChanged, Timestamp: time.Now()})
		}()
	}
	wg.Wait()
}
