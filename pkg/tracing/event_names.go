package tracing

// Canonical span event names. The reconciler emits the instance.reconcile.*
// events; the hub_task and queue_task names are defined here but no task
// emits them.
const (
	EventInstanceReconcileCreatePod        = "instance.reconcile.create_pod"
	EventInstanceReconcileStatusMaterialize = "instance.reconcile.status_materialize"
	EventInstanceReconcileClose             = "instance.reconcile.close"
	EventInstanceReconcileDelete            = "instance.reconcile.delete"

	EventHubTaskScaleUp   = "hub_task.scale_up"
	EventHubTaskScaleDown = "hub_task.scale_down"

	EventQueueTaskDispatch = "queue_task.dispatch"
)
