// Package config loads automation settings from a Settings.ini file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Settings collects every tunable the automation layer reads, with
// documented defaults for everything absent from the file.
type Settings struct {
	// Paths to the external tools.
	XephyrPath  string
	XdotoolPath string
	WMPath      string
	VGLRunPath  string

	// Search defaults.
	Confidence   float64
	Timeout      time.Duration
	PollInterval time.Duration

	// UniqueDisplay restricts the registry to a single handle.
	UniqueDisplay bool

	// Output locations.
	ScreenshotDir string
	HistoryDBPath string

	// LogLevel is DEBUG, INFO, WARN or ERROR.
	LogLevel string
}

// NewDefaultSettings returns the built-in defaults.
func NewDefaultSettings() *Settings {
	return &Settings{
		XephyrPath:    "Xephyr",
		XdotoolPath:   "xdotool",
		WMPath:        "spectrwm",
		VGLRunPath:    "vglrun",
		Confidence:    0.7,
		Timeout:       time.Second,
		PollInterval:  100 * time.Millisecond,
		UniqueDisplay: false,
		ScreenshotDir: "screenshots",
		HistoryDBPath: "xcontrol.db",
		LogLevel:      "INFO",
	}
}

// LoadFromINI loads settings from an ini file, filling in defaults for
// anything unset.
func LoadFromINI(path string) (*Settings, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	defaults := NewDefaultSettings()

	paths := cfg.Section("Paths")
	search := cfg.Section("Search")
	output := cfg.Section("Output")
	logging := cfg.Section("Logging")

	settings := &Settings{
		XephyrPath:    paths.Key("Xephyr").MustString(defaults.XephyrPath),
		XdotoolPath:   paths.Key("Xdotool").MustString(defaults.XdotoolPath),
		WMPath:        paths.Key("WindowManager").MustString(defaults.WMPath),
		VGLRunPath:    paths.Key("VGLRun").MustString(defaults.VGLRunPath),
		Confidence:    search.Key("Confidence").MustFloat64(defaults.Confidence),
		Timeout:       time.Duration(search.Key("TimeoutMs").MustInt(1000)) * time.Millisecond,
		PollInterval:  time.Duration(search.Key("PollIntervalMs").MustInt(100)) * time.Millisecond,
		UniqueDisplay: search.Key("UniqueDisplay").MustBool(defaults.UniqueDisplay),
		ScreenshotDir: output.Key("ScreenshotDir").MustString(defaults.ScreenshotDir),
		HistoryDBPath: output.Key("HistoryDB").MustString(defaults.HistoryDBPath),
		LogLevel:      logging.Key("Level").MustString(defaults.LogLevel),
	}

	if settings.Confidence < 0 || settings.Confidence > 1 {
		return nil, fmt.Errorf("Confidence must be within [0, 1], got %v", settings.Confidence)
	}
	return settings, nil
}
