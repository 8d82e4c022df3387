// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// provgen emits random subscriber traffic records in the provdb text
// format, suitable as LOAD input or for smoke-testing a server.
package main

import (
	"bufio"
	"io"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/sandia-minimega/provdb/internal/store"
	"github.com/sandia-minimega/provdb/internal/version"
	log "github.com/sandia-minimega/provdb/pkg/minilog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	fCount int
	fOut   string
	fSeed  int64
	fStart string
	fEnd   string
	fMaxGB float64
)

var rootCmd = &cobra.Command{
	Use:          "provgen",
	Short:        "provgen generates random subscriber traffic records",
	Version:      version.Full(),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.Flags()

	flags.IntVarP(&fCount, "count", "n", 100, "records to generate")
	flags.StringVarP(&fOut, "out", "o", "", "output file; empty writes to stdout")
	flags.Int64Var(&fSeed, "seed", 0, "random seed; 0 seeds from the clock")
	flags.StringVar(&fStart, "start", "01.01.2023", "earliest record date")
	flags.StringVar(&fEnd, "end", "31.12.2023", "latest record date")
	flags.Float64Var(&fMaxGB, "max-gb", 2.5, "per-hour traffic cap in GB")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if fCount < 0 {
		return errors.Errorf("count %v cannot be negative", fCount)
	}
	if fMaxGB <= 0 {
		return errors.Errorf("max-gb %v must be positive", fMaxGB)
	}

	start, err := store.ParseDate(fStart)
	if err != nil {
		return errors.Wrap(err, "start")
	}
	end, err := store.ParseDate(fEnd)
	if err != nil {
		return errors.Wrap(err, "end")
	}
	if end.Before(start) {
		return errors.Errorf("start %v is after end %v", start, end)
	}

	var w io.Writer = os.Stdout
	if fOut != "" {
		f, err := os.Create(fOut)
		if err != nil {
			return errors.Wrapf(err, "creating %v", fOut)
		}
		defer f.Close()
		w = f
	}

	seed := fSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug("seed %v", seed)

	gen := newGenerator(rand.New(rand.NewSource(seed)), start, end, fMaxGB)

	bw := bufio.NewWriter(w)
	if err := gen.emit(bw, fCount); err != nil {
		return err
	}
	return bw.Flush()
}

type generator struct {
	r     *rand.Rand
	start time.Time
	days  int
	maxGB float64
}

func newGenerator(r *rand.Rand, start, end store.Date, maxGB float64) *generator {
	from := time.Date(start.Year, time.Month(start.Month), start.Day, 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year, time.Month(end.Month), end.Day, 0, 0, 0, 0, time.UTC)

	return &generator{
		r:     r,
		start: from,
		days:  int(to.Sub(from)/(24*time.Hour)) + 1,
		maxGB: maxGB,
	}
}

func (g *generator) emit(w io.Writer, count int) error {
	for i := 0; i < count; i++ {
		r, err := g.record()
		if err != nil {
			return err
		}

		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := store.WriteRecord(w, r); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) record() (store.Record, error) {
	return store.NewRecord(g.name(), g.ip(), g.date(), g.traffic(), g.traffic())
}

var surnames = []string{
	"Иванов", "Петров", "Сидоров", "Смирнов", "Кузнецов",
	"Попов", "Соколов", "Лебедев", "Козлов", "Новиков",
	"Морозов", "Волков", "Соловьёв", "Васильев", "Зайцев",
	"Павлов", "Семёнов", "Голубев", "Виноградов", "Богданов",
}

var initials = []rune("АБВГДЕЖЗИКЛМНОПРСТУФ")

func (g *generator) name() string {
	surname := surnames[g.r.Intn(len(surnames))]
	first := initials[g.r.Intn(len(initials))]
	second := initials[g.r.Intn(len(initials))]

	return surname + " " + string(first) + "." + string(second) + "."
}

func (g *generator) ip() store.IP {
	return store.IP{
		byte(1 + g.r.Intn(223)),
		byte(g.r.Intn(256)),
		byte(g.r.Intn(256)),
		byte(1 + g.r.Intn(254)),
	}
}

func (g *generator) date() store.Date {
	day := g.start.AddDate(0, 0, g.r.Intn(g.days))

	return store.Date{
		Day:   day.Day(),
		Month: int(day.Month()),
		Year:  day.Year(),
	}
}

// traffic returns 24 hourly values in [0, maxGB), rounded to two decimals
// to match the record text format.
func (g *generator) traffic() []float64 {
	vals := make([]float64, store.HoursPerDay)
	for i := range vals {
		vals[i] = math.Round(g.r.Float64()*g.maxGB*100) / 100
	}
	return vals
}
