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

// Package config loads the process-wide Config from ./config.json, writing
// defaults on first run.
package config

import (
	"encoding/json"
	"os"

	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
)

const DefaultPath = "./config.json"

// Load reads Config from path, writing a default file if one does not yet
// exist. A malformed file is a ParseError — fatal at startup per the
// process's exit-code contract.
func Load(path string) (domain.Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		def := domain.DefaultConfig()
		if writeErr := write(path, def); writeErr != nil {
			return domain.Config{}, writeErr
		}
		return def, nil
	}
	if err != nil {
		return domain.Config{}, &epsilonerr.ParseError{Detail: "read " + path, Cause: err}
	}

	var cfg domain.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, &epsilonerr.ParseError{Detail: "decode " + path, Cause: err}
	}
	return cfg, nil
}

func write(path string, cfg domain.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &epsilonerr.ParseError{Detail: "encode defaults", Cause: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &epsilonerr.ParseError{Detail: "write " + path, Cause: err}
	}
	return nil
}
