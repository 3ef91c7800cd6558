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

// Package domain holds the plain value types shared across the reconciler,
// the scheduler tasks, the queue dispatcher, and the HTTP surface. None of
// these types carry behavior tied to the orchestrator client; they are pure
// data, fetched or constructed by other packages.
package domain

import "github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"

// ResourceRange declares a min/max pair for one resource dimension.
type ResourceRange struct {
	Min int64
	Max int64
}

// TemplateResources declares the CPU (whole cores) and RAM (megabytes)
// ranges a Template requests for its pod.
type TemplateResources struct {
	CPU ResourceRange
	RAM ResourceRange
}

// Template is an immutable descriptor fetched from the template registry.
// It has no cross-instance identity: every reconcile fetches it fresh.
type Template struct {
	Name      string            `json:"name"`
	Parent    string            `json:"parent,omitempty"`
	Kind      v1alpha1.InstanceKind `json:"kind"`
	Slots     int32             `json:"slots"`
	Resources TemplateResources `json:"resources"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Group is an indivisible set of players to be routed together onto one
// instance.
type Group struct {
	Players []string `json:"players"`
	Queue   string   `json:"queue"`
}

// EventKind tags the variant carried by an Event. SendToServer is the only
// variant today; the type exists so EventBus stays open to future kinds
// without a breaking change to its API.
type EventKind string

const SendToServer EventKind = "SendToServer"

// Event is the tagged payload broadcast over the EventBus.
type Event struct {
	Kind         EventKind `json:"event"`
	Group        Group     `json:"group"`
	InstanceName string    `json:"instance_name"`
}

// ProxyConfig and HubConfig mirror the two sections of the process-wide
// Config file.
type ProxyConfig struct {
	Template       string `json:"template"`
	MinimumProxies uint8  `json:"minimum_proxies"`
}

type HubConfig struct {
	Template    string `json:"template"`
	MinimumHubs uint8  `json:"minimum_hubs"`
}

// Config is loaded once at startup from ./config.json.
type Config struct {
	Proxy ProxyConfig `json:"proxy"`
	Hub   HubConfig   `json:"hub"`
}

// DefaultConfig matches the defaults auto-written to a missing config file.
func DefaultConfig() Config {
	return Config{
		Proxy: ProxyConfig{Template: "proxy", MinimumProxies: 1},
		Hub:   HubConfig{Template: "hub", MinimumHubs: 1},
	}
}
