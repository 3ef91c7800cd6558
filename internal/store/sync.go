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

package store

import (
	"context"

	"k8s.io/client-go/tools/cache"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
)

// Sync registers informer handlers on mgr's cache so Store stays current
// for the tasks and the HTTP surface, which read instances only from Store.
// The reconciler still reads the Instance and its Pod through the manager's
// client. This is the watch_instances() reflector the gateway exposes in the
// design.
func Sync(ctx context.Context, mgr manager.Manager, s *Store) error {
	informer, err := mgr.GetCache().GetInformer(ctx, &v1alpha1.EpsilonInstance{})
	if err != nil {
		return err
	}

	_, err = informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			if inst, ok := obj.(*v1alpha1.EpsilonInstance); ok {
				s.Put(*inst)
			}
		},
		UpdateFunc: func(_, newObj interface{}) {
			if inst, ok := newObj.(*v1alpha1.EpsilonInstance); ok {
				s.Put(*inst)
			}
		},
		DeleteFunc: func(obj interface{}) {
			if inst, ok := obj.(*v1alpha1.EpsilonInstance); ok {
				s.Delete(inst.Name)
				return
			}
			if tombstone, ok := obj.(cache.DeletedFinalStateUnknown); ok {
				if inst, ok := tombstone.Obj.(*v1alpha1.EpsilonInstance); ok {
					s.Delete(inst.Name)
				}
			}
		},
	})
	if err != nil {
		klog.ErrorS(err, "failed to register instance store informer handler")
		return err
	}
	return nil
}
