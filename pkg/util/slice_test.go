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

package util

import "testing"

func TestIsStringInList(t *testing.T) {
	tests := []struct {
		str    string
		list   []string
		result bool
	}{
		{str: "a", list: []string{"a", "b"}, result: true},
		{str: "c", list: []string{"a", "b"}, result: false},
		{str: "a", list: nil, result: false},
	}
	for _, test := range tests {
		if got := IsStringInList(test.str, test.list); got != test.result {
			t.Errorf("IsStringInList(%q, %v) = %v, want %v", test.str, test.list, got, test.result)
		}
	}
}

func TestRemoveStringRepeat(t *testing.T) {
	got := RemoveStringRepeat([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("RemoveStringRepeat length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RemoveStringRepeat()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
