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

// Package reconciler implements InstanceReconciler: for every Instance
// resource it ensures the backing pod exists, derives status from the pod's
// phase and readiness, and initiates deletion once the instance has gone
// terminal.
package reconciler

import (
	"context"
	"flag"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	"k8s.io/client-go/util/workqueue"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
	"sigs.k8s.io/controller-runtime/pkg/source"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/gateway"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/templateclient"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/logging"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/telemetryfields"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/tracing"
)

func init() {
	flag.IntVar(&concurrentReconciles, "instance-workers", concurrentReconciles, "Max concurrent workers for the Instance controller.")
}

var (
	controllerKind       = v1alpha1.GroupVersion.WithKind("EpsilonInstance")
	concurrentReconciles = 5
)

// Add wires the InstanceReconciler into mgr, including the owned-pod watch
// that re-drives an Instance reconcile whenever its backing pod changes.
func Add(mgr manager.Manager, templates *templateclient.Client, hubTemplate string) error {
	return add(mgr, newReconciler(mgr, templates, hubTemplate))
}

func newReconciler(mgr manager.Manager, templates *templateclient.Client, hubTemplate string) reconcile.Reconciler {
	return &InstanceReconciler{
		Client:      mgr.GetClient(),
		Scheme:      mgr.GetScheme(),
		gw:          gateway.New(mgr.GetClient()),
		templates:   templates,
		hubTemplate: hubTemplate,
		recorder:    mgr.GetEventRecorderFor("instance-controller"),
	}
}

func add(mgr manager.Manager, r reconcile.Reconciler) error {
	klog.InfoS("Starting controller", "event", "controller.start", "controller", "instance", "workers", concurrentReconciles)
	c, err := controller.New("instance-controller", mgr, controller.Options{Reconciler: r, MaxConcurrentReconciles: concurrentReconciles})
	if err != nil {
		klog.Error(err)
		return err
	}
	if err = c.Watch(source.Kind(mgr.GetCache(),
		&v1alpha1.EpsilonInstance{},
		&handler.TypedEnqueueRequestForObject[*v1alpha1.EpsilonInstance]{})); err != nil {
		klog.Error(err)
		return err
	}
	return watchPod(mgr, c)
}

// watchPod re-enqueues the owning Instance whenever a pod it owns changes.
// This is the runtime mechanism behind "the reconcile re-fires on any
// owned-resource event": pods are named identically to their owning
// Instance, so the namespaced name translates directly into a request.
func watchPod(mgr manager.Manager, c controller.Controller) error {
	enqueueOwner := func(pod *corev1.Pod, q workqueue.RateLimitingInterface) {
		if _, ok := pod.GetLabels()[v1alpha1.InstanceTemplateLabelKey]; !ok {
			return
		}
		q.Add(reconcile.Request{NamespacedName: types.NamespacedName{
			Namespace: pod.GetNamespace(),
			Name:      pod.GetName(),
		}})
	}
	return c.Watch(source.Kind(mgr.GetCache(), &corev1.Pod{}, &handler.TypedFuncs[*corev1.Pod]{
		CreateFunc: func(_ context.Context, e event.TypedCreateEvent[*corev1.Pod], q workqueue.RateLimitingInterface) {
			enqueueOwner(e.Object, q)
		},
		UpdateFunc: func(_ context.Context, e event.TypedUpdateEvent[*corev1.Pod], q workqueue.RateLimitingInterface) {
			enqueueOwner(e.ObjectNew, q)
		},
		DeleteFunc: func(_ context.Context, e event.TypedDeleteEvent[*corev1.Pod], q workqueue.RateLimitingInterface) {
			enqueueOwner(e.Object, q)
		},
	}))
}

// InstanceReconciler reconciles an EpsilonInstance object.
type InstanceReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	gw          gateway.Gateway
	templates   *templateclient.Client
	hubTemplate string
	recorder    record.EventRecorder
}

//+kubebuilder:rbac:groups=controller.epsilon.fr,resources=epsiloninstances,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=controller.epsilon.fr,resources=epsiloninstances/status,verbs=get;update;patch
//+kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch;create;update;patch;delete

// Reconcile ensures the pod backing one Instance exists, derives its status,
// and, once that status goes terminal, latches a close and deletes it.
func (r *InstanceReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	namespacedName := req.NamespacedName

	tracer := otel.Tracer("epsilon-autoscaler")
	ctx, span := tracer.Start(ctx, tracing.SpanReconcileInstance,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			tracing.AttrK8sNamespaceName(namespacedName.Namespace),
			tracing.AttrInstanceNamespace(namespacedName.Namespace),
			tracing.AttrInstanceName(namespacedName.Name),
		))
	defer span.End()

	logger := logging.FromContextWithTrace(ctx).WithValues(
		telemetryfields.FieldInstanceNamespace, namespacedName.Namespace,
		telemetryfields.FieldInstanceName, namespacedName.Name,
	)

	inst := &v1alpha1.EpsilonInstance{}
	instErr := r.Get(ctx, namespacedName, inst)
	instFound := true
	if instErr != nil {
		if apierrors.IsNotFound(instErr) {
			instFound = false
		} else {
			logger.Error(instErr, "failed to get instance")
			span.RecordError(instErr)
			span.SetStatus(codes.Error, "failed to get instance")
			return ctrl.Result{}, instErr
		}
	}
	if !instFound {
		// The Instance is gone; nothing to reconcile. Its pod, if orphaned,
		// will be garbage-collected by ownership.
		span.SetAttributes(tracing.AttrReconcileTrigger("unknown"))
		return ctrl.Result{}, nil
	}

	pod := &corev1.Pod{}
	podErr := r.Get(ctx, namespacedName, pod)
	podFound := true
	if podErr != nil {
		if apierrors.IsNotFound(podErr) {
			podFound = false
		} else {
			logger.Error(podErr, "failed to get pod")
			span.RecordError(podErr)
			span.SetStatus(codes.Error, "failed to get pod")
			return ctrl.Result{}, podErr
		}
	}

	if !podFound {
		span.SetAttributes(tracing.AttrReconcileTrigger("instance"), tracing.AttrReconcileAction("create_pod"))
		return r.createPod(ctx, span, logger, inst)
	}

	span.SetAttributes(tracing.AttrReconcileTrigger("pod"), tracing.AttrReconcileAction("patch_status"))
	return r.syncStatus(ctx, span, logger, inst, pod)
}

// createPod fetches the Instance's Template and materializes its backing
// pod. It never touches status: the pod-created watch event drives the
// follow-up reconcile that derives status.
func (r *InstanceReconciler) createPod(ctx context.Context, span trace.Span, logger logr.Logger, inst *v1alpha1.EpsilonInstance) (ctrl.Result, error) {
	tmpl, err := r.templates.Get(ctx, inst.Spec.Template)
	if err != nil {
		// Template fetch failure: skip this pass. The task loops that drive
		// instance creation will retry on their own schedule.
		logger.Error(err, "failed to fetch template, skipping pod creation", telemetryfields.FieldInstanceTemplate, inst.Spec.Template)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch template")
		return ctrl.Result{}, nil
	}

	owner := ownerReference(inst)
	pod := gateway.BuildPodSpec(inst.Namespace, owner, tmpl)
	if err := r.gw.CreatePod(ctx, pod); err != nil {
		logger.Error(err, "failed to create pod")
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create pod")
		return ctrl.Result{}, err
	}
	span.AddEvent(tracing.EventInstanceReconcileCreatePod, trace.WithAttributes(tracing.AttrInstanceTemplate(tmpl.Name)))
	r.recorder.Eventf(inst, corev1.EventTypeNormal, "PodCreated", "created backing pod for template %s", tmpl.Name)
	return ctrl.Result{}, nil
}

// syncStatus derives state from the pod, materializes or updates status, and
// actions the close-then-delete sequence once state goes Stopping.
func (r *InstanceReconciler) syncStatus(ctx context.Context, span trace.Span, logger logr.Logger, inst *v1alpha1.EpsilonInstance, pod *corev1.Pod) (ctrl.Result, error) {
	state := deriveState(pod, inst.Status.State)

	var patchErr error
	if inst.Status.Kind == "" && inst.Status.State == "" {
		tmpl, err := r.templates.Get(ctx, inst.Spec.Template)
		if err != nil {
			logger.Error(err, "failed to fetch template while materializing status")
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch template")
			return ctrl.Result{}, nil
		}
		patchErr = r.gw.PatchInstanceStatus(ctx, inst, func(s *v1alpha1.InstanceStatus) {
			*s = v1alpha1.InstanceStatus{
				IP:       pod.Status.PodIP,
				Template: tmpl.Name,
				Kind:     tmpl.Kind,
				Hub:      tmpl.Name == r.hubTemplate,
				Content:  "",
				Slots:    tmpl.Slots,
				State:    state,
				Close:    state == v1alpha1.Stopping,
			}
		})
	} else {
		patchErr = r.gw.PatchInstanceStatus(ctx, inst, func(s *v1alpha1.InstanceStatus) {
			s.IP = pod.Status.PodIP
			s.State = state
		})
	}
	if patchErr != nil {
		logger.Error(patchErr, "failed to patch instance status")
		span.RecordError(patchErr)
		span.SetStatus(codes.Error, "failed to patch status")
		return ctrl.Result{}, patchErr
	}
	span.AddEvent(tracing.EventInstanceReconcileStatusMaterialize, trace.WithAttributes(tracing.AttrInstanceState(string(state))))

	if state != v1alpha1.Stopping || inst.Status.Close {
		span.SetStatus(codes.Ok, "reconcile completed")
		return ctrl.Result{}, nil
	}

	// The close latch guarantees delete_instance is issued exactly once even
	// if this reconcile re-fires before the delete is observed.
	if err := r.gw.PatchInstanceStatus(ctx, inst, func(s *v1alpha1.InstanceStatus) { s.Close = true }); err != nil {
		logger.Error(err, "failed to latch close")
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to latch close")
		return ctrl.Result{}, err
	}
	span.AddEvent(tracing.EventInstanceReconcileClose)
	r.recorder.Event(inst, corev1.EventTypeNormal, "InstanceClosing", "pod stopped, deleting instance")

	if err := r.gw.DeleteInstance(ctx, inst.Namespace, inst.Name); err != nil {
		logger.Error(err, "failed to delete instance")
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete instance")
		return ctrl.Result{}, err
	}
	span.AddEvent(tracing.EventInstanceReconcileDelete)
	span.SetStatus(codes.Ok, "reconcile completed")
	return ctrl.Result{}, nil
}

// deriveState computes the observed state from the pod's phase and
// readiness. A prior InGame status is preserved across reconciles as long as
// the pod remains ready: InGame is only ever entered via enable_in_game, and
// losing it on every routine reconcile would make it useless for callers
// that poll status between ticks.
func deriveState(pod *corev1.Pod, prior v1alpha1.InstanceState) v1alpha1.InstanceState {
	phase := pod.Status.Phase
	ready := podReady(pod)

	switch {
	case phase == corev1.PodPending || phase == "" || (phase == corev1.PodRunning && !ready):
		return v1alpha1.Starting
	case phase == corev1.PodRunning && ready:
		if prior == v1alpha1.InGame {
			return v1alpha1.InGame
		}
		return v1alpha1.Running
	default:
		return v1alpha1.Stopping
	}
}

func podReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady && cond.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

func ownerReference(inst *v1alpha1.EpsilonInstance) metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion:         controllerKind.GroupVersion().String(),
		Kind:               controllerKind.Kind,
		Name:               inst.Name,
		UID:                inst.UID,
		Controller:         boolPtr(true),
		BlockOwnerDeletion: boolPtr(true),
	}
}

func boolPtr(b bool) *bool { return &b }
