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

// Package scheduler runs a fixed set of periodic Tasks, one goroutine each,
// on independent intervals. A task's error never affects another task's
// schedule; it is logged against the task's declared name and the loop
// keeps ticking.
package scheduler

import (
	"context"
	"time"

	"github.com/go-logr/logr"
)

// Task differs only in its constructor, its run body, and a display name —
// the same polymorphism the source captured with an interface over
// run/name; here it is the capability every periodic job implements.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a Task with the interval it should be driven at.
type Entry struct {
	Task     Task
	Interval time.Duration
}

// Scheduler owns one goroutine per Entry.
type Scheduler struct {
	entries []Entry
	log     logr.Logger
}

func New(log logr.Logger, entries ...Entry) *Scheduler {
	return &Scheduler{entries: entries, log: log}
}

// Start launches every task's ticking goroutine and returns immediately.
// Each goroutine exits once ctx is done, finishing any in-flight tick
// first.
func (s *Scheduler) Start(ctx context.Context) {
	for _, e := range s.entries {
		go s.run(ctx, e)
	}
}

func (s *Scheduler) run(ctx context.Context, e Entry) {
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	log := s.log.WithValues("task", e.Task.Name())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Task.Run(ctx); err != nil {
				log.Error(err, "task tick failed")
			}
		}
	}
}
