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
	"github.com/epsilon-fr/epsilon-autoscaler/internal/gateway"
)

// SumOnline probes every instance and sums its online count. It aborts and
// returns an error on the first probe failure — callers skip the
// probe-dependent decision for that tick, per the ProbeError contract.
func SumOnline(ctx context.Context, instances []v1alpha1.EpsilonInstance) (int, error) {
	total := 0
	for _, inst := range instances {
		status, err := Get(ctx, inst.Status.IP, gateway.EntryPort(inst.Status.Kind))
		if err != nil {
			return 0, err
		}
		total += status.Online
	}
	return total, nil
}

// AvailableSlots sums (slots - online) over instances, aborting on the
// first probe failure.
func AvailableSlots(ctx context.Context, instances []v1alpha1.EpsilonInstance) (int, error) {
	total := 0
	for _, inst := range instances {
		status, err := Get(ctx, inst.Status.IP, gateway.EntryPort(inst.Status.Kind))
		if err != nil {
			return 0, err
		}
		total += int(inst.Status.Slots) - status.Online
	}
	return total, nil
}

// OnlineOf probes a single instance, returning its online count.
func OnlineOf(ctx context.Context, inst v1alpha1.EpsilonInstance) (int, error) {
	status, err := Get(ctx, inst.Status.IP, gateway.EntryPort(inst.Status.Kind))
	if err != nil {
		return 0, err
	}
	return status.Online, nil
}
