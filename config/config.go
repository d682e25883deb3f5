// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package config loads MiniDP's environment-overridable defaults. Recipe
// and flag values, when present, always win over these; Load supplies the
// fallback a bare CLI invocation runs with.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config provides environment-overridable defaults for the runner.
type Config struct {
	Debug bool `envconfig:"DEBUG"`
	Trace bool `envconfig:"TRACE"`

	// WorkspaceDir is used when a recipe omits workspace_dir.
	WorkspaceDir string `envconfig:"WORKSPACE_DIR" default:"./runs"`

	// MaxWorkers is the default max_workers for a MapProcessor step that
	// does not set the param itself.
	MaxWorkers int `envconfig:"MAX_WORKERS" default:"1"`

	// ChunkSize is the default in_memory_chunksize for parallel mode.
	ChunkSize int `envconfig:"CHUNK_SIZE" default:"10000"`
}

// Load loads the configuration from the environment, prefixed MINIDP_.
func Load() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("minidp", &cfg)
	return cfg, err
}
