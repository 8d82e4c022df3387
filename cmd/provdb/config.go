// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sandia-minimega/provdb/internal/server"
	log "github.com/sandia-minimega/provdb/pkg/minilog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the daemon configuration, merged from flags, PROVDB_*
// environment variables, and an optional key=value config file, in that
// precedence order.
type Config struct {
	Port           int
	PoolSize       int
	TariffFile     string
	DataRoot       string
	LogLevel       string
	LogFile        string
	LogFilters     string
	SessionTimeout time.Duration
	ChunkThreshold int
	ChunkSize      int
	MetricsAddr    string
	AcceptRate     float64
	AcceptBurst    int
}

// config keys use underscores; accept dashed flag spellings too
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)

	flags := rootCmd.Flags()

	flags.String("config", "", "path to a key=value config file")
	flags.Int("port", 12345, "TCP listen port")
	flags.Int("thread_pool_size", 4, "session worker count")
	flags.String("tariff_file_path", "", "tariff file; empty means a zero tariff")
	flags.String("server_data_root_dir", "", "sandbox root for LOAD/SAVE; empty means the working directory")
	flags.String("log_level", "info", "log level: debug, info, warn, error, none")
	flags.String("log_file_path", "server.log", "log file; empty logs to stderr only")
	flags.String("log_filters", "", "comma-separated substrings to drop from log output")
	flags.Duration("session_timeout", 10*time.Minute, "per-read client receive timeout; 0 disables")
	flags.Int("chunk_threshold", server.DefaultChunkThreshold, "record count at which list replies switch to chunking")
	flags.Int("chunk_size", server.DefaultChunkSize, "records per chunk")
	flags.String("metrics_addr", "", "prometheus listen address; empty disables metrics")
	flags.Float64("accept_rate", 0, "per-IP accepted connections per second; 0 means unlimited")
	flags.Int("accept_burst", 10, "per-IP connection burst when accept_rate is set")

	viper.BindPFlags(flags)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetConfigType("properties")

	path := viper.GetString("config")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("provdb")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/provdb")
	}

	viper.SetEnvPrefix("PROVDB")
	viper.AutomaticEnv()

	// log sinks aren't up yet, so an explicit-file failure goes to stderr
	if err := viper.ReadInConfig(); err != nil && path != "" {
		fmt.Fprintf(os.Stderr, "reading config file %v: %v\n", path, err)
		os.Exit(1)
	}
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		Port:           viper.GetInt("port"),
		PoolSize:       viper.GetInt("thread_pool_size"),
		TariffFile:     viper.GetString("tariff_file_path"),
		DataRoot:       viper.GetString("server_data_root_dir"),
		LogLevel:       viper.GetString("log_level"),
		LogFile:        viper.GetString("log_file_path"),
		LogFilters:     viper.GetString("log_filters"),
		SessionTimeout: viper.GetDuration("session_timeout"),
		ChunkThreshold: viper.GetInt("chunk_threshold"),
		ChunkSize:      viper.GetInt("chunk_size"),
		MetricsAddr:    viper.GetString("metrics_addr"),
		AcceptRate:     viper.GetFloat64("accept_rate"),
		AcceptBurst:    viper.GetInt("accept_burst"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port %v out of range [1, 65535]", c.Port)
	}

	if c.SessionTimeout < 0 {
		return errors.New("session_timeout cannot be negative")
	}

	if c.ChunkThreshold < 1 {
		return errors.Errorf("chunk_threshold %v must be at least 1", c.ChunkThreshold)
	}
	if c.ChunkSize < 1 {
		return errors.Errorf("chunk_size %v must be at least 1", c.ChunkSize)
	}

	if c.AcceptRate < 0 {
		return errors.New("accept_rate cannot be negative")
	}

	if !strings.EqualFold(c.LogLevel, "none") {
		if _, err := log.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
			return errors.Wrapf(err, "log_level %q", c.LogLevel)
		}
	}

	return nil
}
