// Copyright 2017-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// This package extends Go's logging functionality to allow for multiple
// loggers, each one with their own logging level. To use minilog, call
// AddLogger() to set up each desired logger, then use the package-level
// logging functions defined to send messages to all defined loggers.

package minilog

import (
	"bufio"
	"errors"
	"io"
	"log"
	"os"
	"sync"
)

var (
	// guards loggers and all per-logger state
	mu      sync.Mutex
	loggers map[string]*minilogger
)

func init() {
	loggers = make(map[string]*minilogger)
}

// AddLogger adds a named logger set to log only events at level specified or
// higher. output is the io.Writer to log to (can be os.Stderr or os.Stdout).
func AddLogger(name string, output io.Writer, level Level, color bool) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &minilogger{
		logger: log.New(output, "", log.LstdFlags),
		Level:  level,
		Color:  color,
	}
}

// AddLogRing adds a named logger writing to an in-memory ring of recent
// messages. The ring can be dumped at any time, see Ring.Dump.
func AddLogRing(name string, ring *Ring, level Level) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &minilogger{
		logger: ring,
		Level:  level,
	}
}

func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()

	delete(loggers, name)
}

// Loggers returns the names of all the loggers currently configured.
func Loggers() []string {
	mu.Lock()
	defer mu.Unlock()

	var names []string
	for name := range loggers {
		names = append(names, name)
	}
	return names
}

func SetLevel(name string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	if loggers[name] == nil {
		return errors.New("logger does not exist")
	}
	loggers[name].Level = level
	return nil
}

// SetLevelAll updates the log level for all loggers.
func SetLevelAll(level Level) {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		l.Level = level
	}
}

func GetLevel(name string) (Level, error) {
	mu.Lock()
	defer mu.Unlock()

	if loggers[name] == nil {
		return -1, errors.New("logger does not exist")
	}
	return loggers[name].Level, nil
}

// AddFilter adds a string filter to the named logger. Log messages containing
// the filter string are not logged.
func AddFilter(name, filter string) error {
	mu.Lock()
	defer mu.Unlock()

	l := loggers[name]
	if l == nil {
		return errors.New("logger does not exist")
	}

	for _, f := range l.filters {
		if f == filter {
			return nil
		}
	}
	l.filters = append(l.filters, filter)
	return nil
}

func DelFilter(name, filter string) error {
	mu.Lock()
	defer mu.Unlock()

	l := loggers[name]
	if l == nil {
		return errors.New("logger does not exist")
	}

	for i, f := range l.filters {
		if f == filter {
			l.filters = append(l.filters[:i], l.filters[i+1:]...)
			break
		}
	}
	return nil
}

// Filters returns the filters set on the named logger.
func Filters(name string) ([]string, error) {
	mu.Lock()
	defer mu.Unlock()

	l := loggers[name]
	if l == nil {
		return nil, errors.New("logger does not exist")
	}

	filters := make([]string, len(l.filters))
	copy(filters, l.filters)
	return filters, nil
}

// WillLog returns true if any logger would log at the given level. Useful to
// skip building expensive debug output when nobody is listening.
func WillLog(level Level) bool {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		if l.Level <= level {
			return true
		}
	}
	return false
}

// LogAll logs all input from an io.Reader, splitting on lines, until EOF,
// prefixing each message with name instead of the caller's file and line.
// LogAll starts a goroutine and returns immediately.
func LogAll(i io.Reader, level Level, name string) {
	go func() {
		r := bufio.NewReader(i)
		for {
			d, err := r.ReadString('\n')
			if d != "" {
				mu.Lock()
				for _, l := range loggers {
					if l.Level <= level {
						l.logln(level, name, d)
					}
				}
				mu.Unlock()
			}
			if err != nil {
				break
			}
		}
	}()
}

func logAll(level Level, format string, arg ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.log(level, "", format, arg...)
		}
	}
}

func logAllln(level Level, arg ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.logln(level, "", arg...)
		}
	}
}

func Debug(format string, arg ...interface{}) {
	logAll(DEBUG, format, arg...)
}

func Info(format string, arg ...interface{}) {
	logAll(INFO, format, arg...)
}

func Warn(format string, arg ...interface{}) {
	logAll(WARN, format, arg...)
}

func Error(format string, arg ...interface{}) {
	logAll(ERROR, format, arg...)
}

func Fatal(format string, arg ...interface{}) {
	logAll(FATAL, format, arg...)
	os.Exit(1)
}

func Debugln(arg ...interface{}) {
	logAllln(DEBUG, arg...)
}

func Infoln(arg ...interface{}) {
	logAllln(INFO, arg...)
}

func Warnln(arg ...interface{}) {
	logAllln(WARN, arg...)
}

func Errorln(arg ...interface{}) {
	logAllln(ERROR, arg...)
}

func Fatalln(arg ...interface{}) {
	logAllln(FATAL, arg...)
	os.Exit(1)
}
