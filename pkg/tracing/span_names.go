package tracing

// Root span names. Keep the verb-object naming convention so collectors and
// tests can filter using stable, centralized values.
const (
	// SpanReconcileInstance is the root span for InstanceReconciler.Reconcile.
	SpanReconcileInstance = "reconcile instance"

	// Scheduler task spans.
	SpanRunProxyTask = "run proxy_task"
	SpanRunHubTask   = "run hub_task"
	SpanRunQueueTask = "run queue_task"

	// HTTP surface spans.
	SpanHTTPPushQueue      = "http push queue"
	SpanHTTPCreateInstance = "http create instance"
	SpanHTTPCloseInstance  = "http close instance"
	SpanHTTPEnableInGame   = "http enable in_game"
	SpanHTTPStreamEvents   = "http stream events"
)
