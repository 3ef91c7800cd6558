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

// Package hub implements HubTask: scale Hub instances to absorb 1.6x the
// observed hub population, with hysteresis on scale-down.
package hub

import (
	"context"
	"time"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/probe"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
)

const Interval = 2 * time.Second

// cooldownTicks is how many consecutive over-provisioned ticks it takes to
// remove one hub: the first cooldownTicks-1 only count, the next removes —
// roughly 120s at the 2s period.
const cooldownTicks = 60

// Task scales Hub instances; state is the cooldown counter, which is reset
// whenever the task scales up or actually removes a hub.
type Task struct {
	provider *provider.Provider
	prober   probe.Prober
	cfg      domain.HubConfig

	cooldown int
}

func New(p *provider.Provider, prober probe.Prober, cfg domain.HubConfig) *Task {
	return &Task{provider: p, prober: prober, cfg: cfg}
}

func (t *Task) Name() string { return "HubTask" }

func (t *Task) Run(ctx context.Context) error {
	proxyKind := v1alpha1.Proxy
	runningProxy := v1alpha1.Running
	proxies := t.provider.GetInstances(store.Query{Kind: &proxyKind, State: &runningProxy})
	if len(proxies) == 0 {
		return nil
	}

	hubKind := v1alpha1.Server
	startingState := v1alpha1.Starting
	starting := t.provider.GetInstances(store.Query{Kind: &hubKind, Template: &t.cfg.Template, State: &startingState})
	if len(starting) > 0 {
		return nil
	}

	runningState := v1alpha1.Running
	ready := t.provider.GetInstances(store.Query{Kind: &hubKind, Template: &t.cfg.Template, State: &runningState})
	nReady := len(ready)

	online, err := t.prober.SumOnline(ctx, ready)
	if err != nil {
		return err
	}

	slots := slotsOf(ready)
	needed := 1
	if slots > 0 {
		needed = (online*16)/(10*slots) + 1
	}

	switch {
	case nReady < needed:
		if _, err := t.provider.StartInstance(ctx, t.cfg.Template, ""); err != nil {
			return err
		}
		t.cooldown = 0
	case nReady > needed:
		if t.cooldown < cooldownTicks-1 {
			t.cooldown++
			return nil
		}
		t.cooldown = 0
		victim, ok := t.lowestOnline(ctx, ready)
		if !ok {
			return nil
		}
		return t.provider.RemoveInstance(ctx, victim)
	}
	return nil
}

// slotsOf returns the declared capacity of the ready set, assumed uniform
// across one template's instances.
func slotsOf(ready []v1alpha1.EpsilonInstance) int {
	if len(ready) == 0 {
		return 0
	}
	return int(ready[0].Status.Slots)
}

// lowestOnline selects the Running hub with the smallest online count,
// ties broken by iteration (store) order.
func (t *Task) lowestOnline(ctx context.Context, ready []v1alpha1.EpsilonInstance) (string, bool) {
	var (
		bestName   string
		bestOnline = -1
		found      bool
	)
	for _, inst := range ready {
		online, err := t.prober.Online(ctx, inst)
		if err != nil {
			continue
		}
		if !found || online < bestOnline {
			bestName = inst.Name
			bestOnline = online
			found = true
		}
	}
	return bestName, found
}
