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

package probe

import (
	"context"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
)

// Prober is the aggregate probing surface HubTask depends on. It exists so
// that task can be driven against a fake in tests instead of a real TCP dial
// against a fixed port. QueueTask calls this package's functions directly.
type Prober interface {
	Online(ctx context.Context, inst v1alpha1.EpsilonInstance) (int, error)
	SumOnline(ctx context.Context, instances []v1alpha1.EpsilonInstance) (int, error)
	AvailableSlots(ctx context.Context, instances []v1alpha1.EpsilonInstance) (int, error)
}

type netProber struct{}

// NewProber returns the real Prober, which speaks the Minecraft status
// handshake over TCP against each instance's entry port.
func NewProber() Prober { return netProber{} }

func (netProber) Online(ctx context.Context, inst v1alpha1.EpsilonInstance) (int, error) {
	return OnlineOf(ctx, inst)
}

func (netProber) SumOnline(ctx context.Context, instances []v1alpha1.EpsilonInstance) (int, error) {
	return SumOnline(ctx, instances)
}

func (netProber) AvailableSlots(ctx context.Context, instances []v1alpha1.EpsilonInstance) (int, error) {
	return AvailableSlots(ctx, instances)
}
