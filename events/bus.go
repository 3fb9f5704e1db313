package events

import (
	"fmt"
	"sync"
)

// Handler receives the payload published on a topic. Handlers run
// synchronously on the publisher's goroutine and must not block.
type Handler func(payload interface{})

// Bus is an in-process publish/subscribe relay. It holds no queue and
// offers no retry or cross-process delivery; consumers that can miss
// events (other tabs, other devices) reconcile by re-fetching.
//
// A Bus is constructed once and injected into every producer and
// consumer; there is no package-level instance.
type Bus struct {
	mu     sync.RWMutex
	topics map[Topic]*topicNode
	nextID uint64
}

type topicNode struct {
	subs []*Subscription
}

// Subscription is the handle returned by Subscribe. Cancel deregisters
// the handler; owning surfaces cancel on teardown.
type Subscription struct {
	bus     *Bus
	topic   Topic
	id      uint64
	handler Handler
}

func NewBus() *Bus {
	return &Bus{topics: make(map[Topic]*topicNode)}
}

// Subscribe registers handler for topic. Multiple subscribers per topic
// are allowed; each sees the topic's events in publish order.
func (b *Bus) Subscribe(topic Topic, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	node, ok := b.topics[topic]
	if !ok {
		node = &topicNode{}
		b.topics[topic] = node
	}

	b.nextID++
	sub := &Subscription{
		bus:     b,
		topic:   topic,
		id:      b.nextID,
		handler: handler,
	}
	node.subs = append(node.subs, sub)
	return sub
}

// Publish invokes every current subscriber of topic with payload, on the
// calling goroutine. A panicking handler is isolated so the remaining
// handlers still run.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	b.mu.RLock()
	node, ok := b.topics[topic]
	var subs []*Subscription
	if ok {
		subs = make([]*Subscription, len(node.subs))
		copy(subs, node.subs)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		invoke(sub, topic, payload)
	}
}

func invoke(sub *Subscription, topic Topic, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("event handler panic on topic %s: %v\n", topic, r)
		}
	}()
	sub.handler(payload)
}

// Cancel deregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	node, ok := s.bus.topics[s.topic]
	if !ok {
		return
	}
	for i, sub := range node.subs {
		if sub.id == s.id {
			node.subs = append(node.subs[:i], node.subs[i+1:]...)
			return
		}
	}
}
