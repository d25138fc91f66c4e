package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyProgID      = "automation.prog_id"
	KeyDryRun      = "automation.dry_run"
	KeyPreflight   = "pipeline.preflight"
	KeyHistoryOn   = "history.enabled"
	KeyHistoryKeep = "history.keep"
	KeyLogVerbose  = "log.verbose"
	KeyLogFile     = "log.file"
)

// Environment variables that override stored settings.
const (
	EnvDryRun  = "MACRORUN_DRY_RUN"
	EnvVerbose = "MACRORUN_VERBOSE"
)

var settingKeys = []string{
	KeyProgID,
	KeyDryRun,
	KeyPreflight,
	KeyHistoryOn,
	KeyHistoryKeep,
	KeyLogVerbose,
	KeyLogFile,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
// Stored values fall back to defaults; environment overrides win.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Automation: domain.AutomationSettings{
			ProgID: s.getString(KeyProgID, defaults.Automation.ProgID),
			DryRun: s.getBool(KeyDryRun, defaults.Automation.DryRun),
		},
		Pipeline: domain.PipelineSettings{
			Preflight: s.getBool(KeyPreflight, defaults.Pipeline.Preflight),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(KeyHistoryOn, defaults.History.Enabled),
			Keep:    s.getInt(KeyHistoryKeep, defaults.History.Keep),
		},
		Log: domain.LogSettings{
			Verbose: s.getBool(KeyLogVerbose, defaults.Log.Verbose),
			File:    s.configStore.GetString(KeyLogFile),
		},
	}

	if v, ok := s.envBool(EnvDryRun); ok {
		settings.Automation.DryRun = v
	}
	if v, ok := s.envBool(EnvVerbose); ok {
		settings.Log.Verbose = v
	}

	return settings, nil
}

// Set validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var stored any
	switch key {
	case KeyProgID:
		settings.Automation.ProgID = strings.TrimSpace(value)
		stored = settings.Automation.ProgID
	case KeyLogFile:
		settings.Log.File = strings.TrimSpace(value)
		stored = settings.Log.File
	case KeyDryRun, KeyPreflight, KeyHistoryOn, KeyLogVerbose:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = b
	case KeyHistoryKeep:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		settings.History.Keep = n
		stored = n
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Value returns the effective value of a key, formatted for display.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case KeyProgID:
		return settings.Automation.ProgID, nil
	case KeyDryRun:
		return strconv.FormatBool(settings.Automation.DryRun), nil
	case KeyPreflight:
		return strconv.FormatBool(settings.Pipeline.Preflight), nil
	case KeyHistoryOn:
		return strconv.FormatBool(settings.History.Enabled), nil
	case KeyHistoryKeep:
		return strconv.Itoa(settings.History.Keep), nil
	case KeyLogVerbose:
		return strconv.FormatBool(settings.Log.Verbose), nil
	case KeyLogFile:
		return settings.Log.File, nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	copy(keys, settingKeys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) envBool(name string) (value, ok bool) {
	raw, exists := s.lookupEnv(name)
	if !exists || raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
