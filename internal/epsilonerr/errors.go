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

// Package epsilonerr declares the error taxonomy shared by the reconciler,
// the scheduler tasks, and the HTTP surface. Errors are distinct types, not
// sentinel strings, so callers can switch on kind with errors.As.
package epsilonerr

import "fmt"

// OrchestratorError wraps a transport-level failure talking to the
// orchestrator (pod CRUD, watch, patch). Recoverable: the caller logs and
// lets the next tick or reconcile retry.
type OrchestratorError struct {
	Op     string
	Detail string
}

func (e *OrchestratorError) Error() string {
	return fmt.Sprintf("orchestrator: %s: %s", e.Op, e.Detail)
}

// CreateInstanceError wraps a rejected start_instance call.
type CreateInstanceError struct {
	Template string
	Cause    error
}

func (e *CreateInstanceError) Error() string {
	return fmt.Sprintf("create instance for template %q: %v", e.Template, e.Cause)
}

func (e *CreateInstanceError) Unwrap() error { return e.Cause }

// RemoveInstanceError wraps a rejected remove_instance call.
type RemoveInstanceError struct {
	Name  string
	Cause error
}

func (e *RemoveInstanceError) Error() string {
	return fmt.Sprintf("remove instance %q: %v", e.Name, e.Cause)
}

func (e *RemoveInstanceError) Unwrap() error { return e.Cause }

// RetrieveInstanceError covers a failed instance lookup or a query that hit
// an Instance with no observed status.
type RetrieveInstanceError struct {
	Detail string
}

func (e *RetrieveInstanceError) Error() string {
	return "retrieve instance: " + e.Detail
}

// RetrieveStatusError covers a failed status read or decode.
type RetrieveStatusError struct {
	Detail string
}

func (e *RetrieveStatusError) Error() string {
	return "retrieve status: " + e.Detail
}

// QueueNotFoundError is the 404-class error for an unknown queue target.
type QueueNotFoundError struct {
	Name string
}

func (e *QueueNotFoundError) Error() string {
	return fmt.Sprintf("queue %q not found", e.Name)
}

// ProbeError wraps a Probe timeout or handshake failure. Always recovered by
// the caller: online is treated as 0, or the probe-dependent decision is
// skipped for one tick.
type ProbeError struct {
	Address string
	Cause   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Address, e.Cause)
}

func (e *ProbeError) Unwrap() error { return e.Cause }

// TemplateFetchError wraps a failed call against the template registry.
type TemplateFetchError struct {
	URL   string
	Cause error
}

func (e *TemplateFetchError) Error() string {
	return fmt.Sprintf("fetch template %s: %v", e.URL, e.Cause)
}

func (e *TemplateFetchError) Unwrap() error { return e.Cause }

// ParseError covers malformed config or JSON. Fatal at startup, 500 at
// runtime.
type ParseError struct {
	Detail string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse: %s: %v", e.Detail, e.Cause)
	}
	return "parse: " + e.Detail
}

func (e *ParseError) Unwrap() error { return e.Cause }

// SendEventError wraps a subscriber-side delivery failure. Logged, does not
// abort dispatch.
type SendEventError struct {
	Kind string
}

func (e *SendEventError) Error() string {
	return fmt.Sprintf("send event %q failed", e.Kind)
}
