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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/config"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/eventbus"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/gateway"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/manifests"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/probe"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/queue"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/reconciler"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/scheduler"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/tasks/clean"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/tasks/hub"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/tasks/proxy"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/tasks/queuetask"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/templateclient"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/logging"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/metrics"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/server"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/telemetryfields"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/tracing"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/util"
	//+kubebuilder:scaffold:imports
)

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
	//+kubebuilder:scaffold:scheme
}

func main() {
	var metricsAddr string
	var probeAddr string
	var httpAddr string
	var manifestDir string
	var enableLeaderElection bool
	logOptions := logging.NewOptions()
	logOptions.AddFlags(flag.CommandLine)
	tracingOptions := tracing.NewOptions()
	tracingOptions.AddFlags(flag.CommandLine)
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8082", "The address the probe endpoint binds to.")
	flag.StringVar(&httpAddr, "http-bind-address", ":8090", "The address the player-facing HTTP API binds to.")
	flag.StringVar(&manifestDir, "manifest-dir", "./resources", "Directory CustomResourceDefinition manifests are written to at startup.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")

	flag.Parse()

	logResult, err := logOptions.Apply(flag.CommandLine)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	setupLog = ctrl.Log.WithName("setup")
	if logResult.Warning != "" {
		setupLog.Info(logResult.Warning)
	}

	if err := tracingOptions.Apply(); err != nil {
		setupLog.Info("tracing initialization failed, using no-op tracer", telemetryfields.FieldError, err.Error())
	} else if tracingOptions.Enabled {
		setupLog.Info("tracing initialized successfully", telemetryfields.FieldCollector, tracingOptions.CollectorEndpoint)
		func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			tracer := otel.Tracer("epsilon-autoscaler")
			_, span := tracer.Start(ctx, "controller-startup-test")
			span.SetAttributes(
				attribute.String("test.type", "smoke-test"),
				attribute.String("test.purpose", "verify-tracing-pipeline"),
			)
			setupLog.Info("sent hello-world trace span", telemetryfields.FieldSpanName, "controller-startup-test")
			span.End()
			time.Sleep(2 * time.Second)
		}()

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx); err != nil {
				setupLog.Error(err, "failed to shutdown tracer")
			}
		}()
	}

	namespace, err := namespaceFromServiceAccount(serviceAccountNamespaceFile)
	if err != nil {
		setupLog.Error(err, "unable to determine namespace")
		os.Exit(1)
	}

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}

	if err := manifests.Write(manifestDir); err != nil {
		setupLog.Error(err, "unable to write CRD manifests")
		os.Exit(1)
	}

	restConfig := ctrl.GetConfigOrDie()
	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "epsilon-autoscaler-manager",
		// LeaderElectionReleaseOnCancel speeds up leader transitions on
		// restart; safe here since the process exits as soon as the
		// manager stops.
		LeaderElectionReleaseOnCancel: true,
		Cache: cache.Options{
			DefaultNamespaces: map[string]cache.Config{namespace: {}},
		},
	})
	if err != nil {
		setupLog.Error(err, "unable to start epsilon-autoscaler manager")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	instanceStore := store.New()
	if err := store.Sync(context.Background(), mgr, instanceStore); err != nil {
		setupLog.Error(err, "unable to wire Instance store sync")
		os.Exit(1)
	}

	gw := gateway.New(mgr.GetClient())
	prov := provider.New(namespace, gw, instanceStore)
	templates := templateclient.New(util.GetHostTemplate())
	prober := probe.NewProber()
	bus := eventbus.New(setupLog.WithName("eventbus"), eventbus.DefaultCapacity)

	queueTargets, err := loadQueueTargets(context.Background(), mgr.GetAPIReader(), namespace)
	if err != nil {
		setupLog.Error(err, "unable to load queue targets")
		os.Exit(1)
	}
	registry := queue.NewRegistry(queueTargets)

	if err := reconciler.Add(mgr, templates, cfg.Hub.Template); err != nil {
		setupLog.Error(err, "unable to set up Instance reconciler")
		os.Exit(1)
	}

	metricsController := metrics.NewController(registry)
	if err := metrics.Sync(context.Background(), mgr, metricsController); err != nil {
		setupLog.Error(err, "unable to wire metrics informer handler")
		os.Exit(1)
	}

	//+kubebuilder:scaffold:builder

	sched := scheduler.New(setupLog.WithName("scheduler"),
		scheduler.Entry{Task: proxy.New(prov, cfg.Proxy), Interval: proxy.Interval},
		scheduler.Entry{Task: hub.New(prov, prober, cfg.Hub), Interval: hub.Interval},
		scheduler.Entry{Task: queuetask.New(prov, registry, bus), Interval: queuetask.Interval},
		scheduler.Entry{Task: clean.New(prov), Interval: clean.Interval},
	)

	signal := ctrl.SetupSignalHandler()
	sched.Start(signal)

	go func() {
		if err := metricsController.Run(signal); err != nil {
			setupLog.Error(err, "metrics queue-depth sampler exited unexpectedly")
		}
	}()

	httpServer := server.New(prov, registry, bus)
	go func() {
		setupLog.Info("starting player-facing HTTP API", telemetryfields.FieldEvent, "http.start", "address", httpAddr)
		if err := httpServer.Run(httpAddr); err != nil && err != http.ErrServerClosed {
			setupLog.Error(err, "HTTP server exited unexpectedly")
			os.Exit(1)
		}
	}()

	logServiceReadySummary(setupLog, serviceSummary{
		MetricsAddr:    metricsAddr,
		HealthAddr:     probeAddr,
		HTTPAddr:       httpAddr,
		Namespace:      namespace,
		LeaderElection: enableLeaderElection,
		LogFormat:      logResult.Format,
		LogJSONPreset:  logResult.JSONPreset,
		QueueTemplates: queueTargets,
	})

	setupLog.Info("starting epsilon-autoscaler manager", telemetryfields.FieldEvent, "service.start")

	if err := mgr.Start(signal); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

// namespaceFromServiceAccount reads the namespace the process runs in from
// the projected service account file. The process cannot decide which
// namespace to scope its cache and CRs to without it, so a missing or empty
// file is fatal.
func namespaceFromServiceAccount(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read service account namespace file %s: %w", path, err)
	}
	ns := strings.TrimSpace(string(data))
	if ns == "" {
		return "", fmt.Errorf("service account namespace file %s is empty", path)
	}
	return ns, nil
}

// loadQueueTargets lists EpsilonQueue resources directly against the API
// server (bypassing the cache, which has not synced yet) to build the
// initial set of queues the process should serve.
func loadQueueTargets(ctx context.Context, reader client.Reader, namespace string) ([]string, error) {
	var list v1alpha1.EpsilonQueueList
	if err := reader.List(ctx, &list, client.InNamespace(namespace)); err != nil {
		return nil, fmt.Errorf("list EpsilonQueues: %w", err)
	}
	targets := make([]string, 0, len(list.Items))
	for _, q := range list.Items {
		targets = append(targets, q.Spec.Target)
	}
	return targets, nil
}

type serviceSummary struct {
	MetricsAddr    string
	HealthAddr     string
	HTTPAddr       string
	Namespace      string
	LeaderElection bool
	LogFormat      string
	LogJSONPreset  logging.JSONPreset
	QueueTemplates []string
}

func logServiceReadySummary(logger logr.Logger, summary serviceSummary) {
	fields := []interface{}{
		telemetryfields.FieldEvent, "service.ready",
		"leader_election", summary.LeaderElection,
	}
	if summary.MetricsAddr != "" {
		fields = append(fields, "metrics.bind_address", summary.MetricsAddr)
	}
	if summary.HealthAddr != "" {
		fields = append(fields, "healthz.bind_address", summary.HealthAddr)
	}
	if summary.HTTPAddr != "" {
		fields = append(fields, "http.bind_address", summary.HTTPAddr)
	}
	if summary.Namespace != "" {
		fields = append(fields, "namespace_scope", summary.Namespace)
	}
	if summary.LogFormat != "" {
		fields = append(fields, "log.format", summary.LogFormat)
	}
	if summary.LogJSONPreset != "" {
		fields = append(fields, "log.json_preset", string(summary.LogJSONPreset))
	}
	if len(summary.QueueTemplates) > 0 {
		fields = append(fields, "queue.templates", summary.QueueTemplates)
	}
	logger.Info("service configuration snapshot", fields...)
}
