/*
Copyright 2023 The Kruise Authors.

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

package metrics

import (
	"context"
	"sync"
	"time"

	"k8s.io/client-go/tools/cache"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/queue"
)

const queueSampleInterval = 5 * time.Second

// instanceLabels is the label tuple a Controller last recorded for one
// Instance, kept so an update or delete event can retract the right gauge
// series instead of only ever incrementing.
type instanceLabels struct {
	kind     string
	template string
	state    string
}

// Controller keeps the process's Prometheus gauges in sync with Instance
// lifecycle events and periodic queue-depth samples.
type Controller struct {
	registry *queue.Registry

	mu     sync.Mutex
	labels map[string]instanceLabels
}

// NewController builds a Controller. Call Sync to wire it to an Instance
// informer and Run to start the periodic queue-depth sampler.
func NewController(registry *queue.Registry) *Controller {
	return &Controller{
		registry: registry,
		labels:   make(map[string]instanceLabels),
	}
}

// Name identifies this Controller as a scheduler.Task.
func (c *Controller) Name() string { return "MetricsTask" }

// Sync registers this Controller's event handlers on mgr's Instance
// informer, the same informer internal/store subscribes to.
func Sync(ctx context.Context, mgr manager.Manager, c *Controller) error {
	informer, err := mgr.GetCache().GetInformer(ctx, &v1alpha1.EpsilonInstance{})
	if err != nil {
		return err
	}

	_, err = informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			if inst, ok := obj.(*v1alpha1.EpsilonInstance); ok {
				c.recordInstanceAdd(inst)
			}
		},
		UpdateFunc: func(_, newObj interface{}) {
			if inst, ok := newObj.(*v1alpha1.EpsilonInstance); ok {
				c.recordInstanceUpdate(inst)
			}
		},
		DeleteFunc: func(obj interface{}) {
			if inst, ok := obj.(*v1alpha1.EpsilonInstance); ok {
				c.recordInstanceDelete(inst)
				return
			}
			if tombstone, ok := obj.(cache.DeletedFinalStateUnknown); ok {
				if inst, ok := tombstone.Obj.(*v1alpha1.EpsilonInstance); ok {
					c.recordInstanceDelete(inst)
				}
			}
		},
	})
	if err != nil {
		klog.ErrorS(err, "failed to register metrics informer handler")
		return err
	}
	return nil
}

func labelsOf(inst *v1alpha1.EpsilonInstance) instanceLabels {
	template := inst.Status.Template
	if template == "" {
		template = inst.Spec.Template
	}
	return instanceLabels{
		kind:     string(inst.Status.Kind),
		template: template,
		state:    string(inst.Status.State),
	}
}

func (c *Controller) recordInstanceAdd(inst *v1alpha1.EpsilonInstance) {
	InstancesTotal.WithLabelValues().Inc()

	l := labelsOf(inst)
	InstancesStateCount.WithLabelValues(l.kind, l.template, l.state).Inc()
	InstanceOnlineCount.WithLabelValues(inst.Name, inst.Namespace).Set(float64(inst.Status.Online))
	InstanceSlotsCount.WithLabelValues(inst.Name, inst.Namespace).Set(float64(inst.Status.Slots))

	c.mu.Lock()
	c.labels[inst.Name] = l
	c.mu.Unlock()
}

func (c *Controller) recordInstanceUpdate(inst *v1alpha1.EpsilonInstance) {
	newLabels := labelsOf(inst)

	c.mu.Lock()
	oldLabels, known := c.labels[inst.Name]
	c.labels[inst.Name] = newLabels
	c.mu.Unlock()

	if known && oldLabels != newLabels {
		InstancesStateCount.WithLabelValues(oldLabels.kind, oldLabels.template, oldLabels.state).Dec()
		InstancesStateCount.WithLabelValues(newLabels.kind, newLabels.template, newLabels.state).Inc()
	} else if !known {
		InstancesStateCount.WithLabelValues(newLabels.kind, newLabels.template, newLabels.state).Inc()
	}

	InstanceOnlineCount.WithLabelValues(inst.Name, inst.Namespace).Set(float64(inst.Status.Online))
	InstanceSlotsCount.WithLabelValues(inst.Name, inst.Namespace).Set(float64(inst.Status.Slots))
}

func (c *Controller) recordInstanceDelete(inst *v1alpha1.EpsilonInstance) {
	c.mu.Lock()
	l, known := c.labels[inst.Name]
	delete(c.labels, inst.Name)
	c.mu.Unlock()

	if !known {
		l = labelsOf(inst)
	}
	InstancesStateCount.WithLabelValues(l.kind, l.template, l.state).Dec()
	InstanceOnlineCount.DeleteLabelValues(inst.Name, inst.Namespace)
	InstanceSlotsCount.DeleteLabelValues(inst.Name, inst.Namespace)
}

// Run samples queue depth once, then every queueSampleInterval, and blocks
// until ctx is done. Because it does not return between samples, main.go
// starts it on its own goroutine rather than through the scheduler.
func (c *Controller) Run(ctx context.Context) error {
	c.sampleQueueDepths()
	ticker := time.NewTicker(queueSampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.sampleQueueDepths()
		}
	}
}

func (c *Controller) sampleQueueDepths() {
	if c.registry == nil {
		return
	}
	c.registry.ForEach(func(template string, q *queue.Queue) {
		QueueDepth.WithLabelValues(template).Set(float64(q.Len()))
	})
}
