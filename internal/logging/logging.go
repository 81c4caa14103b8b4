// Package logging configures the process-wide zerolog logger used by
// tagotip-gatewayd.
package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLogLevel   = "TAGOTIP_LOG_LEVEL"
	EnvLogFile    = "TAGOTIP_LOG_FILE"
	EnvLogNoColor = "TAGOTIP_LOG_NOCOLOR"
)

// Profile selects a logging preset. Tests want synchronous, uncolored,
// debug-level output; the running daemon wants info-level with color on
// a terminal.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

// ConfigureRuntime sets up the global logger for the daemon. Safe to call
// more than once; only the first call takes effect.
func ConfigureRuntime() {
	configureOnce.Do(func() {
		log.Logger = build(ProfileRuntime)
	})
}

// ConfigureTests sets up the global logger for package tests.
func ConfigureTests() {
	configureOnce.Do(func() {
		log.Logger = build(ProfileTest)
	})
}

func build(profile Profile) zerolog.Logger {
	level := zerolog.InfoLevel
	noColor := false
	if profile == ProfileTest {
		level = zerolog.DebugLevel
		noColor = true
	}

	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		noColor = v
	}

	var w zerolog.ConsoleWriter
	if path := strings.TrimSpace(os.Getenv(EnvLogFile)); path != "" {
		w = zerolog.ConsoleWriter{
			Out: &lumberjack.Logger{
				Filename:   path,
				MaxSize:    100,
				MaxBackups: 5,
				MaxAge:     28,
				Compress:   true,
			},
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "tagotip-gatewayd").Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
