// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sandia-minimega/provdb/internal/sandbox"
	"github.com/sandia-minimega/provdb/internal/server"
	"github.com/sandia-minimega/provdb/internal/sigterm"
	"github.com/sandia-minimega/provdb/internal/store"
	"github.com/sandia-minimega/provdb/internal/tariff"
	"github.com/sandia-minimega/provdb/internal/version"
	log "github.com/sandia-minimega/provdb/pkg/minilog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "go.uber.org/automaxprocs"
)

var rootCmd = &cobra.Command{
	Use:     "provdb",
	Short:   "provdb serves a subscriber traffic record store over TCP",
	Version: version.Full(),
	RunE:    run,
	// don't print help when the daemon returns an error
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logSetup(cfg); err != nil {
		return err
	}

	log.Info("provdb %v", version.Full())
	if file := viper.ConfigFileUsed(); file != "" {
		log.Info("using config file: %v", file)
	}

	db := &store.Database{}

	tab := &tariff.Table{}
	if cfg.TariffFile != "" {
		if err := tab.Load(cfg.TariffFile); err != nil {
			return errors.Wrap(err, "loading tariff table")
		}
		log.Info("loaded tariff table from %v", cfg.TariffFile)
	} else {
		log.Warn("no tariff_file_path set; all charges compute to zero")
	}

	srv := server.New(server.Config{
		Addr:           fmt.Sprintf(":%v", cfg.Port),
		PoolSize:       cfg.PoolSize,
		SessionTimeout: cfg.SessionTimeout,
		ChunkThreshold: cfg.ChunkThreshold,
		ChunkSize:      cfg.ChunkSize,
		MetricsAddr:    cfg.MetricsAddr,
		AcceptRate:     cfg.AcceptRate,
		AcceptBurst:    cfg.AcceptBurst,
	}, db, tab, sandbox.New(cfg.DataRoot, ""))

	if err := srv.Start(); err != nil {
		return err
	}

	// block until SIGTERM or SIGINT
	<-sigterm.CancelContext(context.Background()).Done()

	log.Info("shutting down")
	srv.Stop()

	return nil
}
