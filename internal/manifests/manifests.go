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

// Package manifests renders the CustomResourceDefinitions for the types in
// apis/v1alpha1 and writes them to disk. It stands in for the generated
// config/crd/bases output a kubebuilder Makefile target would normally
// produce, since that generator cannot run here.
package manifests

import (
	"fmt"
	"os"
	"path/filepath"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
)

// Write renders every CustomResourceDefinition this process owns into dir,
// one YAML file per resource, creating dir if necessary.
func Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifests dir: %w", err)
	}
	for _, crd := range []apiextensionsv1.CustomResourceDefinition{instanceCRD(), queueCRD()} {
		data, err := yaml.Marshal(crd)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", crd.Name, err)
		}
		path := filepath.Join(dir, crd.Spec.Names.Singular+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func instanceCRD() apiextensionsv1.CustomResourceDefinition {
	return apiextensionsv1.CustomResourceDefinition{
		TypeMeta: metav1.TypeMeta{APIVersion: "apiextensions.k8s.io/v1", Kind: "CustomResourceDefinition"},
		ObjectMeta: metav1.ObjectMeta{
			Name: "epsiloninstances." + v1alpha1.GroupVersion.Group,
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: v1alpha1.GroupVersion.Group,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Plural:     "epsiloninstances",
				Singular:   "epsiloninstance",
				Kind:       "EpsilonInstance",
				ListKind:   "EpsilonInstanceList",
				ShortNames: []string{"einst"},
			},
			Scope: apiextensionsv1.NamespaceScoped,
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{
				{
					Name:    v1alpha1.GroupVersion.Version,
					Served:  true,
					Storage: true,
					Subresources: &apiextensionsv1.CustomResourceSubresources{
						Status: &apiextensionsv1.CustomResourceSubresourceStatus{},
					},
					Schema: &apiextensionsv1.CustomResourceValidation{
						OpenAPIV3Schema: &apiextensionsv1.JSONSchemaProps{
							Type: "object",
							Properties: map[string]apiextensionsv1.JSONSchemaProps{
								"spec": {
									Type: "object",
									Properties: map[string]apiextensionsv1.JSONSchemaProps{
										"template": {Type: "string"},
									},
									Required: []string{"template"},
								},
								"status": {
									Type:                   "object",
									XPreserveUnknownFields: boolPtr(true),
								},
							},
						},
					},
					AdditionalPrinterColumns: []apiextensionsv1.CustomResourceColumnDefinition{
						{Name: "Template", Type: "string", JSONPath: ".spec.template"},
						{Name: "Kind", Type: "string", JSONPath: ".status.kind"},
						{Name: "State", Type: "string", JSONPath: ".status.state"},
						{Name: "Online", Type: "integer", JSONPath: ".status.online"},
						{Name: "Age", Type: "date", JSONPath: ".metadata.creationTimestamp"},
					},
				},
			},
		},
	}
}

func queueCRD() apiextensionsv1.CustomResourceDefinition {
	return apiextensionsv1.CustomResourceDefinition{
		TypeMeta: metav1.TypeMeta{APIVersion: "apiextensions.k8s.io/v1", Kind: "CustomResourceDefinition"},
		ObjectMeta: metav1.ObjectMeta{
			Name: "epsilonqueues." + v1alpha1.GroupVersion.Group,
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: v1alpha1.GroupVersion.Group,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Plural:     "epsilonqueues",
				Singular:   "epsilonqueue",
				Kind:       "EpsilonQueue",
				ListKind:   "EpsilonQueueList",
				ShortNames: []string{"equeue"},
			},
			Scope: apiextensionsv1.NamespaceScoped,
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{
				{
					Name:    v1alpha1.GroupVersion.Version,
					Served:  true,
					Storage: true,
					Schema: &apiextensionsv1.CustomResourceValidation{
						OpenAPIV3Schema: &apiextensionsv1.JSONSchemaProps{
							Type: "object",
							Properties: map[string]apiextensionsv1.JSONSchemaProps{
								"spec": {
									Type: "object",
									Properties: map[string]apiextensionsv1.JSONSchemaProps{
										"target": {Type: "string"},
									},
									Required: []string{"target"},
								},
							},
						},
					},
					AdditionalPrinterColumns: []apiextensionsv1.CustomResourceColumnDefinition{
						{Name: "Target", Type: "string", JSONPath: ".spec.target"},
						{Name: "Age", Type: "date", JSONPath: ".metadata.creationTimestamp"},
					},
				},
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
