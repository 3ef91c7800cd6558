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

// QueueSpec defines the desired state of an EpsilonQueue. The in-process
// QueueRegistry is the source of truth at runtime; this resource exists so
// the target template list can be declared and inspected like any other
// cluster object.
type QueueSpec struct {
	// Target is the template name this queue routes Groups towards.
	Target string `json:"target"`
}

//+genclient
//+kubebuilder:object:root=true
//+kubebuilder:printcolumn:name="TARGET",type="string",JSONPath=".spec.target"
//+kubebuilder:printcolumn:name="AGE",type="date",JSONPath=".metadata.creationTimestamp"
//+kubebuilder:resource:shortName=equeue

// EpsilonQueue is the Schema for the queues API.
type EpsilonQueue struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec QueueSpec `json:"spec,omitempty"`
}

//+kubebuilder:object:root=true

// EpsilonQueueList contains a list of EpsilonQueue.
type EpsilonQueueList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EpsilonQueue `json:"items"`
}

func init() {
	SchemeBuilder.Register(&EpsilonQueue{}, &EpsilonQueueList{})
}
