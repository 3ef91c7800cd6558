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

// Package provider is the command surface tasks and the HTTP layer use to
// create, delete, and query Instances. It never talks to the orchestrator
// itself; it delegates to a gateway.Gateway and reads from a store.Store.
package provider

import (
	"context"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/gateway"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
)

// Provider is the InstanceProvider command surface.
type Provider struct {
	namespace string
	gw        gateway.Gateway
	store     *store.Store
}

func New(namespace string, gw gateway.Gateway, st *store.Store) *Provider {
	return &Provider{namespace: namespace, gw: gw, store: st}
}

// StartInstance creates an Instance resource with generateName "{template}-"
// and no status yet.
func (p *Provider) StartInstance(ctx context.Context, template, content string) (*v1alpha1.EpsilonInstance, error) {
	return p.gw.CreateInstance(ctx, p.namespace, template, content)
}

// RemoveInstance deletes the named Instance resource.
func (p *Provider) RemoveInstance(ctx context.Context, name string) error {
	return p.gw.DeleteInstance(ctx, p.namespace, name)
}

// GetInstance returns a single Instance if it has an observed status.
func (p *Provider) GetInstance(name string) (v1alpha1.EpsilonInstance, error) {
	return p.store.GetWithStatus(name)
}

// GetInstances applies the (kind?, template?, state?) filter over the store.
func (p *Provider) GetInstances(q store.Query) []v1alpha1.EpsilonInstance {
	return p.store.List(q)
}

// EnableInGame patches status.state = InGame. The current status must be
// retrievable from the store first; an Instance absent from the store has
// nothing to patch.
func (p *Provider) EnableInGame(ctx context.Context, name string) error {
	inst, ok := p.store.Get(name)
	if !ok {
		return &epsilonerr.RetrieveStatusError{Detail: "instance " + name + " not found in store"}
	}
	return p.gw.PatchInstanceStatus(ctx, &inst, func(s *v1alpha1.InstanceStatus) {
		s.State = v1alpha1.InGame
	})
}
