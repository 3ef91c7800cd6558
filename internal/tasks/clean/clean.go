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

// Package clean implements CleanTask: a periodic sweep that re-issues
// deletion for any Server or Proxy instance whose status.close latch is set
// but which is still observed in the store. This is a defensive backstop
// against a remove_instance call dropped by the reconciler (§4.2 step 6) or
// lost to an orchestrator write failure; it is not part of the main
// reconcile path.
package clean

import (
	"context"
	"time"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
)

const Interval = 30 * time.Second

// Task re-sweeps Server and Proxy instances latched for closure.
type Task struct {
	provider *provider.Provider
}

func New(p *provider.Provider) *Task {
	return &Task{provider: p}
}

func (t *Task) Name() string { return "CleanTask" }

func (t *Task) Run(ctx context.Context) error {
	serverKind := v1alpha1.Server
	proxyKind := v1alpha1.Proxy

	for _, kind := range []*v1alpha1.InstanceKind{&serverKind, &proxyKind} {
		for _, inst := range t.provider.GetInstances(store.Query{Kind: kind}) {
			if !inst.Status.Close {
				continue
			}
			if err := t.provider.RemoveInstance(ctx, inst.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
