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
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Metric names
const (
	MetricInstancesStateCount  = "epsilon_instances_state_count"
	MetricInstancesTotal       = "epsilon_instances_total"
	MetricInstanceOnlineCount  = "epsilon_instance_online_count"
	MetricInstanceSlotsCount   = "epsilon_instance_slots_count"
	MetricQueueDepth           = "epsilon_queue_depth"
)

// Metric label names
const (
	LabelKind      = "kind"
	LabelTemplate  = "template"
	LabelState     = "state"
	LabelName      = "name"
	LabelNamespace = "namespace"
)

func init() {
	metrics.Registry.MustRegister(InstancesStateCount)
	metrics.Registry.MustRegister(InstancesTotal)
	metrics.Registry.MustRegister(InstanceOnlineCount)
	metrics.Registry.MustRegister(InstanceSlotsCount)
	metrics.Registry.MustRegister(QueueDepth)
}

var (
	// InstancesStateCount tracks how many Instances sit in each
	// kind/template/state combination.
	InstancesStateCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricInstancesStateCount,
			Help: "The number of instances per kind, template and state",
		},
		[]string{LabelKind, LabelTemplate, LabelState},
	)
	// InstancesTotal counts every Instance add event observed, regardless
	// of how long the instance survives.
	InstancesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricInstancesTotal,
			Help: "The total of instances created",
		},
		[]string{},
	)
	// InstanceOnlineCount mirrors the player count reported by an
	// Instance's status.
	InstanceOnlineCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricInstanceOnlineCount,
			Help: "The number of players currently online on an instance",
		},
		[]string{LabelName, LabelNamespace},
	)
	// InstanceSlotsCount mirrors the slot capacity reported by an
	// Instance's status.
	InstanceSlotsCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricInstanceSlotsCount,
			Help: "The slot capacity of an instance",
		},
		[]string{LabelName, LabelNamespace},
	)
	// QueueDepth tracks how many Groups are waiting per template queue.
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricQueueDepth,
			Help: "The number of groups waiting in a queue",
		},
		[]string{LabelTemplate},
	)
)
