// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sandia-minimega/provdb/internal/version"
	log "github.com/sandia-minimega/provdb/pkg/minilog"
	"github.com/sandia-minimega/provdb/pkg/minipager"
	"github.com/sandia-minimega/provdb/pkg/provclient"
	"github.com/sandia-minimega/provdb/pkg/wire"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	fAddr    string
	fExec    string
	fFile    string
	fOutput  string
	fTimeout time.Duration
	fRaw     bool
)

// queries a completer can offer; trailing space where parameters follow
var commands = []string{
	"ADD ", "SELECT ", "DELETE ", "EDIT ", "CALCULATE_CHARGES ",
	"PRINT_ALL", "LOAD ", "SAVE", "HELP", "EXIT",
}

var rootCmd = &cobra.Command{
	Use:          "provcli",
	Short:        "provcli is the interactive and scripted client for a provdb server",
	Version:      version.Full(),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVar(&fAddr, "addr", "127.0.0.1:12345", "provdb server address")
	flags.StringVarP(&fExec, "exec", "e", "", "run one query and exit")
	flags.StringVarP(&fFile, "file", "f", "", "run queries from a script file and exit")
	flags.StringVarP(&fOutput, "output", "o", "", "write raw response payloads to a file")
	flags.DurationVar(&fTimeout, "timeout", 10*time.Second, "response wait per frame")
	flags.BoolVar(&fRaw, "raw", false, "print raw response payloads instead of rendering")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if fExec != "" && fFile != "" {
		return errors.New("--exec and --file are mutually exclusive")
	}

	c, err := provclient.Dial(fAddr, fTimeout)
	if err != nil {
		return err
	}
	defer c.Close()

	d := &display{raw: fRaw, out: os.Stdout}

	if fOutput != "" {
		f, err := os.Create(fOutput)
		if err != nil {
			return errors.Wrapf(err, "creating output file %v", fOutput)
		}
		defer f.Close()

		d.tee = f
	}

	switch {
	case fExec != "":
		return runQuery(c, d, fExec)
	case fFile != "":
		return runScript(c, d, fFile)
	default:
		return attach(c, d)
	}
}

func runQuery(c *provclient.Conn, d *display, query string) error {
	resps, err := c.Run(query)
	if err != nil {
		return err
	}

	d.Render(resps)
	return nil
}

// runScript feeds a query file to the server, one query per line. Blank
// lines and # comments are skipped; a DELAY <duration> line pauses the
// script client-side.
func runScript(c *provclient.Conn, d *display, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening script %v", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, wire.MaxPayload), wire.MaxPayload)

	lineno := 0
	for scanner.Scan() {
		lineno++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if fields := strings.Fields(line); strings.EqualFold(fields[0], "DELAY") {
			if len(fields) != 2 {
				return errors.Errorf("line %v: DELAY takes one duration", lineno)
			}

			dur, err := time.ParseDuration(fields[1])
			if err != nil {
				return errors.Wrapf(err, "line %v", lineno)
			}

			log.Debug("delaying %v", dur)
			time.Sleep(dur)
			continue
		}

		if err := runQuery(c, d, line); err != nil {
			return errors.Wrapf(err, "line %v", lineno)
		}
	}

	return scanner.Err()
}

// attach runs the interactive prompt against the dialed server.
func attach(c *provclient.Conn, d *display) error {
	fmt.Printf("connected to %v\n", c.Addr())
	fmt.Println("use 'disconnect' or ^d to leave, HELP for the query language")
	fmt.Println()

	// long record tables go through $PAGER at the prompt
	d.pager = minipager.DefaultPager

	input := liner.NewLiner()
	defer input.Close()

	input.SetCtrlCAborts(true)
	input.SetTabCompletionStyle(liner.TabPrints)
	input.SetCompleter(func(line string) []string {
		var out []string
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, strings.ToUpper(line)) {
				out = append(out, cmd)
			}
		}
		return out
	})

	prompt := fmt.Sprintf("provdb:%v$ ", c.Addr())

	for {
		line, err := input.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		} else if err == io.EOF {
			fmt.Println()
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)

		log.Debug("got line from stdin: `%s`", line)

		// skip blank lines
		if line == "" {
			continue
		}

		input.AppendHistory(line)

		// handled client-side, never sent to the server
		if line == "disconnect" {
			log.Debugln("disconnecting")
			return nil
		}

		if err := runQuery(c, d, line); err != nil {
			return err
		}

		// the server hangs up after acknowledging EXIT
		if strings.EqualFold(line, "EXIT") {
			return nil
		}
	}
}
