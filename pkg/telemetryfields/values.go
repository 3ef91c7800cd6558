package telemetryfields

import "strings"

// This file contains enumeration values and attribute key names for
// low-cardinality telemetry fields. These are canonical, snake_case values
// intended for spanmetrics dimensions, plus the field key constants used to
// attach them to spans and structured logs.

const (
	// Error types
	ErrorTypeAPICall          = "api_call_error"
	ErrorTypeInternal         = "internal_error"
	ErrorTypeParameter        = "parameter_error"
	ErrorTypeNotImplemented   = "not_implemented_error"
	ErrorTypeResourceNotReady = "resource_not_ready"
	ErrorTypeQueueNotFound    = "queue_not_found"
	ErrorTypeProbeFailure     = "probe_failure"
)

// Field key constants attached to spans and structured log entries.
const (
	FieldComponent        = "epsilon.component"
	FieldErrorType         = "epsilon.error.type"
	FieldReconcileTrigger  = "epsilon.reconcile.trigger"
	FieldReconcileAction   = "epsilon.reconcile.action"
	FieldReconcileRequeue  = "epsilon.reconcile.requeue"
	FieldLinkReason        = "epsilon.link.reason"

	FieldInstanceName      = "epsilon.instance.name"
	FieldInstanceNamespace = "epsilon.instance.namespace"
	FieldInstanceTemplate  = "epsilon.instance.template"
	FieldInstanceKind      = "epsilon.instance.kind"
	FieldInstanceState     = "epsilon.instance.state"

	FieldTaskName     = "epsilon.task.name"
	FieldQueueName    = "epsilon.queue.template"
	FieldQueueDepth   = "epsilon.queue.depth"
	FieldGroupSize    = "epsilon.group.size"

	FieldEvent     = "event"
	FieldCollector = "epsilon.otel.collector"
	FieldError     = "error"
	FieldSpanName  = "epsilon.span.name"

	FieldK8sNamespaceName = "k8s.namespace.name"
	FieldK8sPodName       = "k8s.pod.name"
	FieldK8sPodUID        = "k8s.pod.uid"
	FieldK8sNodeName      = "k8s.node.name"
	FieldServiceName      = "service.name"
	FieldServiceNamespace = "service.namespace"
)

// NormalizeErrorType maps many possible error-type string formats into a canonical
// lower_snake_case enumeration.
func NormalizeErrorType(raw string) string {
	switch raw {
	case "ApiCallError", "apiCallError", "api_call_error", "APICallError":
		return ErrorTypeAPICall
	case "InternalError", "internalError", "internal_error":
		return ErrorTypeInternal
	case "ParameterError", "parameterError", "parameter_error":
		return ErrorTypeParameter
	case "NotImplementedError", "notImplementedError", "not_implemented_error":
		return ErrorTypeNotImplemented
	case "ResourceNotReady", "resourceNotReady", "resource_not_ready":
		return ErrorTypeResourceNotReady
	case "QueueNotFound", "queueNotFound", "queue_not_found":
		return ErrorTypeQueueNotFound
	case "ProbeFailure", "probeFailure", "probe_failure":
		return ErrorTypeProbeFailure
	default:
		res := normalizeDimensionValue(raw)
		res = strings.ReplaceAll(res, "-", "_")
		return res
	}
}

// normalizeDimensionValue converts human-friendly names into a lower-case string
// with spaces and tabs converted to underscore.
func normalizeDimensionValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if strings.ContainsAny(lower, " \t") {
		lower = strings.Join(strings.Fields(lower), "_")
	}
	return lower
}
