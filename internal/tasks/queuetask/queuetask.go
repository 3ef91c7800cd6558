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

// Package queuetask implements QueueTask: drains per-template queues onto
// ready instances, opening new instances under capacity pressure.
package queuetask

import (
	"context"
	"time"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/eventbus"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/probe"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/queue"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
)

const Interval = 2 * time.Second

// Task drains every non-empty Queue in registry onto Running Server
// instances for that Queue's template, opening new instances as needed.
type Task struct {
	provider *provider.Provider
	registry *queue.Registry
	bus      *eventbus.Bus
}

func New(p *provider.Provider, registry *queue.Registry, bus *eventbus.Bus) *Task {
	return &Task{provider: p, registry: registry, bus: bus}
}

func (t *Task) Name() string { return "QueueTask" }

func (t *Task) Run(ctx context.Context) error {
	var firstErr error
	t.registry.ForEach(func(template string, q *queue.Queue) {
		if q.IsEmpty() {
			return
		}
		if err := t.drain(ctx, template, q); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

func (t *Task) drain(ctx context.Context, template string, q *queue.Queue) error {
	serverKind := v1alpha1.Server
	startingState := v1alpha1.Starting
	runningState := v1alpha1.Running

	starting := t.provider.GetInstances(store.Query{Kind: &serverKind, Template: &template, State: &startingState})
	ready := t.provider.GetInstances(store.Query{Kind: &serverKind, Template: &template, State: &runningState})

	if len(starting) == 0 && len(ready) == 0 {
		_, err := t.provider.StartInstance(ctx, template, "")
		return err
	}

	available, err := probe.AvailableSlots(ctx, ready)
	if err == nil && available < 1 && len(starting) == 0 {
		if _, err := t.provider.StartInstance(ctx, template, ""); err != nil {
			return err
		}
	}

	for _, inst := range ready {
		online, err := probe.OnlineOf(ctx, inst)
		if err != nil {
			continue
		}
		avail := int(inst.Status.Slots) - online

		for avail > 0 {
			g, ok := q.Peek()
			if !ok {
				break
			}
			if len(g.Players) > avail {
				break // head-of-line: never skip an oversized group
			}
			g, _ = q.Pop()
			t.bus.Send(domain.Event{Kind: domain.SendToServer, Group: g, InstanceName: inst.Name})
			avail -= len(g.Players)
		}
	}
	return nil
}
