// Package broadcast is the cross-context invalidation channel: a
// publish/subscribe abstraction that lets one context notify its
// siblings that a logical resource changed. The only message is
// "invalidate"; subscribers are expected to re-fetch canonical state,
// never to merge partial updates.
package broadcast

import (
	"context"
	"sync"
)

// Topic for keyring account mutations.
const TopicAccounts = "accounts"

// Broker fan-outs invalidation signals per topic.
type Broker interface {
	// Subscribe returns a channel that receives a signal for every
	// invalidation of topic, and a cancel function that releases the
	// subscription.
	Subscribe(topic string) (<-chan struct{}, func())

	// Invalidate notifies every subscriber of topic. Delivery is
	// best-effort; no ordering guarantee is made beyond "eventually
	// every subscriber observes an invalidate after the mutation".
	Invalidate(ctx context.Context, topic string) error
}

// MemoryBroker is the in-process Broker used when all contexts share
// one process.
type MemoryBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]chan struct{})}
}

func (b *MemoryBroker) Subscribe(topic string) (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan struct{})
	}
	id := b.nextID
	b.nextID++

	ch := make(chan struct{}, 1)
	b.subs[topic][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
	return ch, cancel
}

func (b *MemoryBroker) Invalidate(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[topic] {
		// A pending signal already forces a re-fetch; coalesce.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}
