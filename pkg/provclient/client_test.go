// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package provclient_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/sandia-minimega/provdb/internal/sandbox"
	"github.com/sandia-minimega/provdb/internal/server"
	"github.com/sandia-minimega/provdb/internal/store"
	"github.com/sandia-minimega/provdb/internal/tariff"
	"github.com/sandia-minimega/provdb/pkg/provclient"
	"github.com/sandia-minimega/provdb/pkg/wire"
)

func startServer(t *testing.T) (*server.Server, *store.Database) {
	t.Helper()

	db := &store.Database{}
	srv := server.New(server.Config{
		Addr:           "127.0.0.1:0",
		PoolSize:       2,
		SessionTimeout: 10 * time.Second,
	}, db, &tariff.Table{}, sandbox.New(t.TempDir(), ""))

	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Stop)

	return srv, db
}

func TestRunSingle(t *testing.T) {
	srv, _ := startServer(t)

	c, err := provclient.Dial(srv.Addr(), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	resps, err := c.Run(`ADD FIO "Иванов И.И." IP 1.2.3.4 DATE 01.01.2023`)
	if err != nil {
		t.Fatal(err)
	}
	if len(resps) != 1 {
		t.Fatalf("got %v frames, want 1", len(resps))
	}
	if resps[0].Status != wire.StatusOK {
		t.Errorf("status %v, want %v", resps[0].Status, wire.StatusOK)
	}
}

func TestRunSeries(t *testing.T) {
	srv, db := startServer(t)

	for i := 0; i < 120; i++ {
		r, err := store.NewRecord(fmt.Sprintf("User %03d", i),
			store.IP{10, 0, byte(i / 100), byte(i % 100)},
			store.Date{Day: 1, Month: 1, Year: 2023},
			make([]float64, 24), make([]float64, 24))
		if err != nil {
			t.Fatal(err)
		}
		db.Add(r)
	}

	c, err := provclient.Dial(srv.Addr(), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	resps, err := c.Run("PRINT_ALL")
	if err != nil {
		t.Fatal(err)
	}

	// 120 records chunk as 50+50+20 plus the series terminator
	if len(resps) != 4 {
		t.Fatalf("got %v frames, want 4", len(resps))
	}
	if resps[0].Status != wire.StatusMultiBegin {
		t.Errorf("first status %v, want %v", resps[0].Status, wire.StatusMultiBegin)
	}
	last := resps[len(resps)-1]
	if last.Status != wire.StatusMultiEnd {
		t.Errorf("last status %v, want %v", last.Status, wire.StatusMultiEnd)
	}
	if last.TotalRecords != 120 {
		t.Errorf("total %v, want 120", last.TotalRecords)
	}

	got := 0
	for _, resp := range resps {
		got += resp.RecordsInPayload
	}
	if got != 120 {
		t.Errorf("frames carried %v records, want 120", got)
	}
}

func TestRunServerError(t *testing.T) {
	srv, _ := startServer(t)

	c, err := provclient.Dial(srv.Addr(), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// a rejected query is still a successful round trip
	resps, err := c.Run("FROBNICATE")
	if err != nil {
		t.Fatal(err)
	}
	if len(resps) != 1 || resps[0].Status != wire.StatusBadRequest {
		t.Errorf("got %v frames, first status %v", len(resps), resps[0].Status)
	}
	if resps[0].PayloadType != wire.PayloadError {
		t.Errorf("payload type %v, want %v", resps[0].PayloadType, wire.PayloadError)
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := provclient.Dial("127.0.0.1:1", 500*time.Millisecond); err == nil {
		t.Error("dial to a dead port succeeded")
	}
}

func TestRunAfterClose(t *testing.T) {
	srv, _ := startServer(t)

	c, err := provclient.Dial(srv.Addr(), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Run("HELP"); err == nil {
		t.Error("Run on a closed connection succeeded")
	}
}
