// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:           12345,
		PoolSize:       4,
		LogLevel:       "info",
		SessionTimeout: 10 * time.Minute,
		ChunkThreshold: 60,
		ChunkSize:      50,
		AcceptBurst:    10,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port high", func(c *Config) { c.Port = 70000 }, false},
		{"port max", func(c *Config) { c.Port = 65535 }, true},
		{"negative timeout", func(c *Config) { c.SessionTimeout = -time.Second }, false},
		{"zero timeout", func(c *Config) { c.SessionTimeout = 0 }, true},
		{"zero chunk threshold", func(c *Config) { c.ChunkThreshold = 0 }, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, false},
		{"negative rate", func(c *Config) { c.AcceptRate = -1 }, false},
		{"level none", func(c *Config) { c.LogLevel = "none" }, true},
		{"level NONE", func(c *Config) { c.LogLevel = "NONE" }, true},
		{"level Debug", func(c *Config) { c.LogLevel = "Debug" }, true},
		{"level bogus", func(c *Config) { c.LogLevel = "loud" }, false},
	}

	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)

		err := cfg.Validate()
		if tt.ok && err != nil {
			t.Errorf("%v: unexpected error: %v", tt.name, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%v: expected an error", tt.name)
		}
	}
}
