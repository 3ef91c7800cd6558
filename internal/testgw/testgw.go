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

// Package testgw is a fake gateway.Gateway shared by the scheduler tasks'
// unit tests. It is test-only plumbing, not a second implementation meant
// for production use.
package testgw

import (
	"context"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
)

// Fake records every call made against it for assertions.
type Fake struct {
	mu sync.Mutex

	Created []string
	Removed []string
	Patched map[string]v1alpha1.InstanceStatus
}

func New() *Fake {
	return &Fake{Patched: map[string]v1alpha1.InstanceStatus{}}
}

func (f *Fake) CreatePod(context.Context, *corev1.Pod) error         { return nil }
func (f *Fake) DeletePod(context.Context, string, string) error      { return nil }
func (f *Fake) PatchPod(context.Context, *corev1.Pod, client.Patch) error { return nil }

func (f *Fake) GetPod(context.Context, string, string) (*corev1.Pod, bool, error) {
	return nil, false, nil
}

func (f *Fake) CreateInstance(_ context.Context, _, template, _ string) (*v1alpha1.EpsilonInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, template)
	return &v1alpha1.EpsilonInstance{ObjectMeta: metav1.ObjectMeta{Name: template + "-fake"}}, nil
}

func (f *Fake) DeleteInstance(_ context.Context, _, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removed = append(f.Removed, name)
	return nil
}

func (f *Fake) PatchInstanceStatus(_ context.Context, inst *v1alpha1.EpsilonInstance, mutate func(*v1alpha1.InstanceStatus)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(&inst.Status)
	f.Patched[inst.Name] = inst.Status
	return nil
}
