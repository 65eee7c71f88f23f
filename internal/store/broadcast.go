package store

import (
	"context"
	"sync"
)

// broadcaster fans a collection's full snapshots out to subscribers.
// Each subscriber channel is buffered with capacity 1 and delivery is
// latest-wins: a slow consumer sees the newest snapshot, never a backlog of
// stale ones.
type broadcaster[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []T
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]chan []T)}
}

// subscribe registers a new subscriber. The subscription is released when ctx
// is cancelled; no goroutine keeps running for it afterwards.
func (b *broadcaster[T]) subscribe(ctx context.Context) chan []T {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan []T, 1)
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()

	return ch
}

// publish delivers a snapshot to every current subscriber, replacing any
// undelivered previous snapshot.
func (b *broadcaster[T]) publish(snapshot []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		sendLatest(ch, snapshot)
	}
}

// deliver sends a snapshot to a single subscriber channel, serialized against
// publish so two senders never race for the one buffer slot.
func (b *broadcaster[T]) deliver(ch chan []T, snapshot []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sendLatest(ch, snapshot)
}

// sendLatest replaces the pending value on a capacity-1 channel.
func sendLatest[T any](ch chan []T, snapshot []T) {
	select {
	case <-ch:
	default:
	}
	ch <- snapshot
}
