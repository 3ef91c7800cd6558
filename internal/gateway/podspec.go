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

package gateway

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/utils/ptr"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/util"
)

const (
	serverPort  = 25565
	proxyPort   = 25577
	metricsPort = 9090

	requiredConfigMap = "epsilon-configuration"
	optionalConfigMap = "epsilon-configuration-instance"
)

// BuildPodSpec derives the full Pod for instance from template and the
// owning Instance's name and UID. It is pure: no cluster calls.
func BuildPodSpec(namespace string, owner metav1.OwnerReference, tmpl domain.Template) *corev1.Pod {
	image := fmt.Sprintf("%s/%s", util.GetHostRegistry(), tmpl.Name)

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      owner.Name,
			Namespace: namespace,
			Labels: map[string]string{
				v1alpha1.InstanceKindLabelKey:     string(tmpl.Kind),
				v1alpha1.InstanceTemplateLabelKey: tmpl.Name,
			},
			OwnerReferences: []metav1.OwnerReference{owner},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:            "instance",
					Image:           image,
					ImagePullPolicy: corev1.PullAlways,
					Ports:           portsFor(tmpl.Kind),
					EnvFrom:         envFrom(),
					Resources:       resourcesFor(tmpl.Resources),
					ReadinessProbe: &corev1.Probe{
						ProbeHandler: corev1.ProbeHandler{
							Exec: &corev1.ExecAction{Command: []string{"cat", "epsilon_start"}},
						},
						InitialDelaySeconds: 5,
						PeriodSeconds:       1,
						SuccessThreshold:    1,
						FailureThreshold:    3,
					},
				},
			},
		},
	}
	return pod
}

func portsFor(kind v1alpha1.InstanceKind) []corev1.ContainerPort {
	switch kind {
	case v1alpha1.Proxy:
		return []corev1.ContainerPort{
			{Name: "proxy", ContainerPort: proxyPort, Protocol: corev1.ProtocolTCP},
			{Name: "metrics", ContainerPort: metricsPort, Protocol: corev1.ProtocolTCP},
		}
	default:
		return []corev1.ContainerPort{
			{Name: "server", ContainerPort: serverPort, Protocol: corev1.ProtocolTCP},
		}
	}
}

func envFrom() []corev1.EnvFromSource {
	return []corev1.EnvFromSource{
		{ConfigMapRef: &corev1.ConfigMapEnvSource{
			LocalObjectReference: corev1.LocalObjectReference{Name: requiredConfigMap},
		}},
		{ConfigMapRef: &corev1.ConfigMapEnvSource{
			LocalObjectReference: corev1.LocalObjectReference{Name: optionalConfigMap},
			Optional:             ptr.To(true),
		}},
	}
}

func resourcesFor(r domain.TemplateResources) corev1.ResourceRequirements {
	return corev1.ResourceRequirements{
		Requests: corev1.ResourceList{
			corev1.ResourceCPU:    *resource.NewQuantity(r.CPU.Min, resource.DecimalSI),
			corev1.ResourceMemory: resource.MustParse(fmt.Sprintf("%dM", r.RAM.Min)),
		},
		Limits: corev1.ResourceList{
			corev1.ResourceCPU:    *resource.NewQuantity(r.CPU.Max, resource.DecimalSI),
			corev1.ResourceMemory: resource.MustParse(fmt.Sprintf("%dM", r.RAM.Max)),
		},
	}
}

// EntryPort returns the port the Probe should dial for kind.
func EntryPort(kind v1alpha1.InstanceKind) int {
	if kind == v1alpha1.Proxy {
		return proxyPort
	}
	return serverPort
}
