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

// Package proxy implements ProxyTask: keep at least one Proxy instance
// alive. Scaling down is never performed.
package proxy

import (
	"context"
	"time"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
)

const Interval = 6 * time.Second

// Task keeps at least one Proxy instance; it starts one only when none
// exists and does not read cfg.MinimumProxies.
type Task struct {
	provider *provider.Provider
	cfg      domain.ProxyConfig
}

func New(p *provider.Provider, cfg domain.ProxyConfig) *Task {
	return &Task{provider: p, cfg: cfg}
}

func (t *Task) Name() string { return "ProxyTask" }

func (t *Task) Run(ctx context.Context) error {
	kind := v1alpha1.Proxy
	proxies := t.provider.GetInstances(store.Query{Kind: &kind})
	if len(proxies) == 0 {
		_, err := t.provider.StartInstance(ctx, t.cfg.Template, "")
		return err
	}
	return nil
}
