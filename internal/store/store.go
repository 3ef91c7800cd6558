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

// Package store holds the read-only, lock-free projection of all Instance
// resources. It never calls the orchestrator itself; it is kept current by
// whatever registers watch handlers against it (see Sync).
package store

import (
	"sort"
	"sync/atomic"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
)

// Store is a reflector-style snapshot: readers see a consistent view of any
// one Instance, but there is no cross-Instance atomicity. That's acceptable
// because every task reading it is idempotent and decisions converge over
// ticks (see the concurrency design notes).
type Store struct {
	snapshot atomic.Pointer[map[string]v1alpha1.EpsilonInstance]
}

func New() *Store {
	s := &Store{}
	empty := map[string]v1alpha1.EpsilonInstance{}
	s.snapshot.Store(&empty)
	return s
}

// Put inserts or replaces the entry for inst, copy-on-write.
func (s *Store) Put(inst v1alpha1.EpsilonInstance) {
	for {
		old := s.snapshot.Load()
		next := make(map[string]v1alpha1.EpsilonInstance, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[inst.Name] = inst
		if s.snapshot.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Delete removes the entry for name, copy-on-write.
func (s *Store) Delete(name string) {
	for {
		old := s.snapshot.Load()
		if _, ok := (*old)[name]; !ok {
			return
		}
		next := make(map[string]v1alpha1.EpsilonInstance, len(*old))
		for k, v := range *old {
			if k != name {
				next[k] = v
			}
		}
		if s.snapshot.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Get returns the current entry for name.
func (s *Store) Get(name string) (v1alpha1.EpsilonInstance, bool) {
	m := *s.snapshot.Load()
	inst, ok := m[name]
	return inst, ok
}

// Query is the (kind?, template?, state?) filter from §4.3.
type Query struct {
	Kind     *v1alpha1.InstanceKind
	Template *string
	State    *v1alpha1.InstanceState
}

// List returns every Instance matching q, ordered by name. Entries that have
// never been observed with a status are excluded entirely, so callers
// always reason over stable objects only — the same "no observed status"
// rule GetWithStatus enforces by returning RetrieveInstanceError, applied
// here per-entry instead of per-call since a multi-instance list has no
// single error to return for one excluded member. A deterministic order
// (rather than raw map order) is what makes "ties broken by store order" in
// the scale-down tasks reproducible.
func (s *Store) List(q Query) []v1alpha1.EpsilonInstance {
	m := *s.snapshot.Load()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]v1alpha1.EpsilonInstance, 0, len(m))
	for _, name := range names {
		inst := m[name]
		if inst.Status.Kind == "" && inst.Status.State == "" {
			continue
		}
		if q.Kind != nil && inst.Status.Kind != *q.Kind {
			continue
		}
		if q.Template != nil && inst.Status.Template != *q.Template {
			continue
		}
		if q.State != nil && inst.Status.State != *q.State {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// GetWithStatus looks up name and fails with RetrieveInstanceError unless
// the Instance exists and carries an observed status.
func (s *Store) GetWithStatus(name string) (v1alpha1.EpsilonInstance, error) {
	inst, ok := s.Get(name)
	if !ok {
		return v1alpha1.EpsilonInstance{}, &epsilonerr.RetrieveInstanceError{Detail: "instance " + name + " not found"}
	}
	if inst.Status.Kind == "" && inst.Status.State == "" {
		return v1alpha1.EpsilonInstance{}, &epsilonerr.RetrieveInstanceError{Detail: "instance " + name + " has no observed status"}
	}
	return inst, nil
}

// Len reports the number of Instances currently observed, including ones
// without status yet.
func (s *Store) Len() int {
	return len(*s.snapshot.Load())
}
