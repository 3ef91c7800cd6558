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

package queue

import "github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"

// Registry holds one Queue per template name. The map itself is immutable
// after construction; only the Queues inside it mutate.
type Registry struct {
	queues map[string]*Queue
}

// NewRegistry constructs one Queue per name in templateNames.
func NewRegistry(templateNames []string) *Registry {
	queues := make(map[string]*Queue, len(templateNames))
	for _, name := range templateNames {
		queues[name] = New()
	}
	return &Registry{queues: queues}
}

// Get returns the Queue for template, or a QueueNotFoundError if the
// registry was never constructed with that template.
func (r *Registry) Get(template string) (*Queue, error) {
	q, ok := r.queues[template]
	if !ok {
		return nil, &epsilonerr.QueueNotFoundError{Name: template}
	}
	return q, nil
}

// Templates returns every template name this registry holds a Queue for.
func (r *Registry) Templates() []string {
	names := make([]string, 0, len(r.queues))
	for name := range r.queues {
		names = append(names, name)
	}
	return names
}

// ForEach visits every (template, Queue) pair. Iteration order is
// unspecified (Go map order), unlike Store.List, which sorts by name.
func (r *Registry) ForEach(fn func(template string, q *Queue)) {
	for name, q := range r.queues {
		fn(name, q)
	}
}
