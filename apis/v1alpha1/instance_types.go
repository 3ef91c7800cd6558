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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// InstanceKindLabelKey records the instance kind (Server/Proxy) on the
	// backing pod so list-by-label selection doesn't need an API round trip.
	InstanceKindLabelKey = "epsilon.fr/instance"
	// InstanceTemplateLabelKey records the owning template name on the pod.
	InstanceTemplateLabelKey = "epsilon.fr/template"
)

// InstanceKind distinguishes a game-facing Server from a network front-door Proxy.
type InstanceKind string

const (
	Server InstanceKind = "Server"
	Proxy  InstanceKind = "Proxy"
)

// InstanceState is the externally observed lifecycle stage of an Instance.
type InstanceState string

const (
	Starting InstanceState = "Starting"
	Running  InstanceState = "Running"
	InGame   InstanceState = "InGame"
	Stopping InstanceState = "Stopping"
)

// InstanceSpec defines the desired state of an Instance.
type InstanceSpec struct {
	// Template names the Template this Instance is materialized from.
	// Immutable after creation.
	Template string `json:"template"`
}

// InstanceStatus defines the observed state of an Instance, derived entirely
// from the backing pod and the Template that produced it.
type InstanceStatus struct {
	// IP is the backing pod's network address, once assigned.
	IP string `json:"ip,omitempty"`
	// Template echoes spec.template.
	Template string       `json:"template,omitempty"`
	Kind     InstanceKind `json:"kind,omitempty"`
	// Hub is true iff Template == config.hub.template.
	Hub bool `json:"hub,omitempty"`
	// Content is an opaque payload field. The reconciler leaves it empty;
	// the content given to start_instance is kept in the
	// epsilon.fr/content annotation instead.
	Content string        `json:"content,omitempty"`
	State   InstanceState `json:"state,omitempty"`
	// Slots is the template-declared capacity.
	Slots int32 `json:"slots,omitempty"`
	// Online is a player count field. No code in this controller writes it;
	// the tasks probe player counts live instead.
	Online int32 `json:"online,omitempty"`
	// Close latches true once the reconciler has decided to delete this
	// Instance. Never reverts to false.
	Close bool `json:"close,omitempty"`
}

//+genclient
//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:printcolumn:name="TEMPLATE",type="string",JSONPath=".spec.template",description="The template this instance was created from"
//+kubebuilder:printcolumn:name="KIND",type="string",JSONPath=".status.kind",description="Server or Proxy"
//+kubebuilder:printcolumn:name="STATE",type="string",JSONPath=".status.state",description="The current observed state"
//+kubebuilder:printcolumn:name="ONLINE",type="integer",JSONPath=".status.online",description="Last probed player count"
//+kubebuilder:printcolumn:name="AGE",type="date",JSONPath=".metadata.creationTimestamp"
//+kubebuilder:resource:shortName=einst

// EpsilonInstance is the Schema for the instances API.
type EpsilonInstance struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   InstanceSpec   `json:"spec,omitempty"`
	Status InstanceStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// EpsilonInstanceList contains a list of EpsilonInstance.
type EpsilonInstanceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EpsilonInstance `json:"items"`
}

func init() {
	SchemeBuilder.Register(&EpsilonInstance{}, &EpsilonInstanceList{})
}
