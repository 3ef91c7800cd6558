/*
Copyright 2022 The Kruise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package eventbus is an in-process, lossy broadcast of domain Events.
// Producers never block; a subscriber that falls behind drops the events
// it couldn't keep up with instead of stalling the producer.
package eventbus

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
)

// DefaultCapacity is the suggested per-subscriber buffer depth.
const DefaultCapacity = 1024

// Bus is a single-producer-side, multi-consumer broadcast of Events.
type Bus struct {
	capacity int
	log      logr.Logger

	mu   sync.Mutex
	subs map[int]chan domain.Event
	next int
}

func New(log logr.Logger, capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{capacity: capacity, log: log, subs: make(map[int]chan domain.Event)}
}

// Subscription is a single subscriber's view of the Bus.
type Subscription struct {
	id     int
	bus    *Bus
	events chan domain.Event
}

// Events returns the channel to range over.
func (s *Subscription) Events() <-chan domain.Event { return s.events }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if ch, ok := s.bus.subs[s.id]; ok {
		delete(s.bus.subs, s.id)
		close(ch)
	}
}

// Subscribe registers a new subscriber with its own buffered channel.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan domain.Event, b.capacity)
	b.subs[id] = ch
	return &Subscription{id: id, bus: b, events: ch}
}

// Send publishes event to every current subscriber. It never blocks: a
// subscriber whose buffer is full has the event dropped for it, not for
// anyone else.
func (b *Bus) Send(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Error(&epsilonerr.SendEventError{Kind: string(event.Kind)}, "dropping event for lagging subscriber")
		}
	}
}

// SubscriberCount reports the number of currently registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
