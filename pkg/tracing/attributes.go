/*
Copyright 2024 The Kruise Authors.

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

package tracing

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/epsilon-fr/epsilon-autoscaler/pkg/telemetryfields"
)

var (
	componentKey        = attribute.Key(telemetryfields.FieldComponent)
	errorTypeKey         = attribute.Key(telemetryfields.FieldErrorType)
	reconcileTriggerKey  = attribute.Key(telemetryfields.FieldReconcileTrigger)
	reconcileActionKey   = attribute.Key(telemetryfields.FieldReconcileAction)
	reconcileRequeueKey  = attribute.Key(telemetryfields.FieldReconcileRequeue)
	linkReasonKey        = attribute.Key(telemetryfields.FieldLinkReason)
	k8sNamespaceKey      = attribute.Key(telemetryfields.FieldK8sNamespaceName)

	instanceNameKey      = attribute.Key(telemetryfields.FieldInstanceName)
	instanceNamespaceKey = attribute.Key(telemetryfields.FieldInstanceNamespace)
	instanceTemplateKey  = attribute.Key(telemetryfields.FieldInstanceTemplate)
	instanceKindKey      = attribute.Key(telemetryfields.FieldInstanceKind)
	instanceStateKey     = attribute.Key(telemetryfields.FieldInstanceState)

	taskNameKey   = attribute.Key(telemetryfields.FieldTaskName)
	queueNameKey  = attribute.Key(telemetryfields.FieldQueueName)
	queueDepthKey = attribute.Key(telemetryfields.FieldQueueDepth)
	groupSizeKey  = attribute.Key(telemetryfields.FieldGroupSize)
)

// AttrComponent returns a span attribute representing which component emits the span.
func AttrComponent(component string) attribute.KeyValue {
	return componentKey.String(component)
}

// AttrErrorType returns a span attribute representing the classified error type.
func AttrErrorType(errType string) attribute.KeyValue {
	return errorTypeKey.String(errType)
}

// AttrReconcileTrigger returns a span attribute representing the reconcile trigger
// (instance/pod/unknown).
func AttrReconcileTrigger(trigger string) attribute.KeyValue {
	return reconcileTriggerKey.String(trigger)
}

// AttrReconcileAction returns a span attribute representing the action taken this
// reconcile (create_pod/patch_status/delete_instance/noop).
func AttrReconcileAction(action string) attribute.KeyValue {
	return reconcileActionKey.String(action)
}

// AttrReconcileRequeue returns a bool attribute indicating whether the controller
// runtime will re-drive this object (always false here; retries happen via
// owned-resource watches, not explicit requeues).
func AttrReconcileRequeue(requeue bool) attribute.KeyValue {
	return reconcileRequeueKey.Bool(requeue)
}

// AttrLinkReason returns an attribute describing the reason a trace Link was added.
func AttrLinkReason(reason string) attribute.KeyValue {
	return linkReasonKey.String(reason)
}

// AttrK8sNamespaceName returns a span attribute for k8s.namespace.name.
func AttrK8sNamespaceName(namespace string) attribute.KeyValue {
	return k8sNamespaceKey.String(namespace)
}

// AttrK8sPodName returns a span attribute for k8s.pod.name.
func AttrK8sPodName(podName string) attribute.KeyValue {
	return attribute.Key(telemetryfields.FieldK8sPodName).String(podName)
}

// AttrK8sNodeName returns a span attribute for k8s.node.name.
func AttrK8sNodeName(nodeName string) attribute.KeyValue {
	return attribute.Key(telemetryfields.FieldK8sNodeName).String(nodeName)
}

// AttrServiceName returns a span attribute for service.name.
func AttrServiceName(name string) attribute.KeyValue {
	return attribute.Key(telemetryfields.FieldServiceName).String(name)
}

// AttrServiceNamespace returns a span attribute for service.namespace.
func AttrServiceNamespace(ns string) attribute.KeyValue {
	return attribute.Key(telemetryfields.FieldServiceNamespace).String(ns)
}

// AttrInstanceName returns a span attribute for the Instance name.
func AttrInstanceName(name string) attribute.KeyValue {
	return instanceNameKey.String(name)
}

// AttrInstanceNamespace returns a span attribute for the Instance namespace.
func AttrInstanceNamespace(namespace string) attribute.KeyValue {
	return instanceNamespaceKey.String(namespace)
}

// AttrInstanceTemplate returns a span attribute for the Instance's template name.
func AttrInstanceTemplate(template string) attribute.KeyValue {
	return instanceTemplateKey.String(template)
}

// AttrInstanceKind returns a span attribute for the Instance kind (Server/Proxy).
func AttrInstanceKind(kind string) attribute.KeyValue {
	return instanceKindKey.String(kind)
}

// AttrInstanceState returns a span attribute for the Instance's observed state.
func AttrInstanceState(state string) attribute.KeyValue {
	return instanceStateKey.String(state)
}

// AttrTaskName returns a span attribute naming the scheduler Task that owns a span.
func AttrTaskName(name string) attribute.KeyValue {
	return taskNameKey.String(name)
}

// AttrQueueName returns a span attribute naming the queue's template.
func AttrQueueName(template string) attribute.KeyValue {
	return queueNameKey.String(template)
}

// AttrQueueDepth returns a span attribute for the number of groups waiting in a queue.
func AttrQueueDepth(depth int) attribute.KeyValue {
	return queueDepthKey.Int(depth)
}

// AttrGroupSize returns a span attribute for the player count of a dispatched group.
func AttrGroupSize(size int) attribute.KeyValue {
	return groupSizeKey.Int(size)
}

// AttrsForInstance returns the attribute set identifying one Instance.
func AttrsForInstance(namespace, name, template, kind string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if namespace != "" {
		attrs = append(attrs, AttrInstanceNamespace(namespace))
	}
	if name != "" {
		attrs = append(attrs, AttrInstanceName(name))
	}
	if template != "" {
		attrs = append(attrs, AttrInstanceTemplate(template))
	}
	if kind != "" {
		attrs = append(attrs, AttrInstanceKind(kind))
	}
	return attrs
}
