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

// Package gateway is the thin adapter over pod CRUD and Instance CRUD. It is
// the only package allowed to call the orchestrator API directly; every
// other component goes through it or through the InstanceStore it backs.
package gateway

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
)

// Gateway is the collaborator surface every other component depends on
// instead of a raw client.Client.
type Gateway interface {
	CreatePod(ctx context.Context, pod *corev1.Pod) error
	DeletePod(ctx context.Context, namespace, name string) error
	GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, bool, error)
	PatchPod(ctx context.Context, pod *corev1.Pod, patch client.Patch) error

	CreateInstance(ctx context.Context, namespace, template, content string) (*v1alpha1.EpsilonInstance, error)
	DeleteInstance(ctx context.Context, namespace, name string) error
	PatchInstanceStatus(ctx context.Context, inst *v1alpha1.EpsilonInstance, mutate func(*v1alpha1.InstanceStatus)) error
}

type gateway struct {
	client.Client
}

// New wraps a controller-runtime client as a Gateway.
func New(c client.Client) Gateway {
	return &gateway{Client: c}
}

func (g *gateway) CreatePod(ctx context.Context, pod *corev1.Pod) error {
	if err := g.Create(ctx, pod); err != nil {
		return &epsilonerr.OrchestratorError{Op: "create_pod", Detail: err.Error()}
	}
	return nil
}

func (g *gateway) DeletePod(ctx context.Context, namespace, name string) error {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
	if err := g.Delete(ctx, pod); err != nil && !apierrors.IsNotFound(err) {
		return &epsilonerr.OrchestratorError{Op: "delete_pod", Detail: err.Error()}
	}
	return nil
}

func (g *gateway) GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, bool, error) {
	pod := &corev1.Pod{}
	err := g.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, pod)
	if apierrors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &epsilonerr.OrchestratorError{Op: "get_pod", Detail: err.Error()}
	}
	return pod, true, nil
}

func (g *gateway) PatchPod(ctx context.Context, pod *corev1.Pod, patch client.Patch) error {
	if err := g.Patch(ctx, pod, patch); err != nil {
		return &epsilonerr.OrchestratorError{Op: "patch_pod", Detail: err.Error()}
	}
	return nil
}

func (g *gateway) CreateInstance(ctx context.Context, namespace, template, content string) (*v1alpha1.EpsilonInstance, error) {
	inst := &v1alpha1.EpsilonInstance{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: template + "-",
			Namespace:    namespace,
			Annotations:  map[string]string{"epsilon.fr/content": content},
		},
		Spec: v1alpha1.InstanceSpec{Template: template},
	}
	if err := g.Create(ctx, inst); err != nil {
		return nil, &epsilonerr.CreateInstanceError{Template: template, Cause: err}
	}
	return inst, nil
}

func (g *gateway) DeleteInstance(ctx context.Context, namespace, name string) error {
	inst := &v1alpha1.EpsilonInstance{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
	if err := g.Delete(ctx, inst); err != nil && !apierrors.IsNotFound(err) {
		return &epsilonerr.RemoveInstanceError{Name: name, Cause: err}
	}
	return nil
}

func (g *gateway) PatchInstanceStatus(ctx context.Context, inst *v1alpha1.EpsilonInstance, mutate func(*v1alpha1.InstanceStatus)) error {
	original := inst.DeepCopy()
	mutate(&inst.Status)
	if err := g.Status().Patch(ctx, inst, client.MergeFrom(original)); err != nil {
		return &epsilonerr.OrchestratorError{Op: "patch_instance_status", Detail: err.Error()}
	}
	return nil
}
