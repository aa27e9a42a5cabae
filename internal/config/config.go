/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
// Minimal schema to start; can evolve with config_version migrations.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal and are not written back by Save.

// JobSyncConfig configures the optional single-writer remote job-history
// mirror (internal/jobsync). Auth tokens are never stored here; they live
// in the OS keychain.
type JobSyncConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	Enabled     bool   `yaml:"enabled"`
}

type GeneralConfig struct {
	TelemetryOptIn  bool   `yaml:"telemetry_opt_in"`
	MeasurementUnit string `yaml:"measurement_unit"` // "mm" | "in"
	DefaultAxes     int    `yaml:"default_axes"`     // 2 or 3
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// DeviceConfig holds the non-secret half of the controller connection; the
// connection's auth token (used by some TCP-bridge firmware) lives only in
// the OS keyring via TokenStore.
type DeviceConfig struct {
	DefaultTransport string `yaml:"default_transport"` // "serial" | "tcp" | "null"
	DefaultPort      string `yaml:"default_port"`
	BaudRate         int    `yaml:"baud_rate"`
	PollHz           int    `yaml:"poll_hz"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	JobSync       JobSyncConfig `yaml:"jobsync"`
	Device        DeviceConfig  `yaml:"device"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, MeasurementUnit: "mm", DefaultAxes: 3},
		JobSync:       JobSyncConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false, Enabled: false},
		Device:        DeviceConfig{DefaultTransport: "serial", BaudRate: 115200, PollHz: 5},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvJobSyncURL       = "GCODEKIT5_JOBSYNC_URL"
	EnvJobSyncTimeoutMs = "GCODEKIT5_JOBSYNC_TIMEOUT_MS"
	EnvJobSyncTLSInsec  = "GCODEKIT5_JOBSYNC_TLS_INSECURE"
	EnvJobSyncEnabled   = "GCODEKIT5_JOBSYNC_ENABLED"
	EnvTelemetryOptIn   = "GCODEKIT5_TELEMETRY_OPT_IN"
	EnvMeasurementUnit  = "GCODEKIT5_MEASUREMENT_UNIT"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCODEKIT5_LOG_LEVEL"
	EnvLogFormat = "GCODEKIT5_LOG_FORMAT"
	EnvLogSource = "GCODEKIT5_LOG_SOURCE"
	EnvLogFile   = "GCODEKIT5_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService   = "GCodeKit5"
	keyringJobSync   = "jobsync_token"
	keyringDevicePfx = "device_token:" // suffixed with the device/port identifier
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// DefaultTokenStore returns the process-wide keyring-backed TokenStore.
func DefaultTokenStore() TokenStore { return tokenStore }

// DeviceTokenKey derives the keyring key for a connection's stored auth
// token, scoped by the device/port identifier so multiple machines don't
// collide in a shared keyring.
func DeviceTokenKey(portOrHost string) string { return keyringDevicePfx + portOrHost }

// LoadDeviceToken returns the stored auth token for a TCP-bridge device
// connection identified by portOrHost (e.g. a "host:port" string), or ""
// if none has been saved. Never written to config.yaml in cleartext.
func LoadDeviceToken(portOrHost string) (string, error) {
	tok, err := tokenStore.Get(keyringService, DeviceTokenKey(portOrHost))
	if err != nil {
		return "", nil // not found is not an error condition callers need to handle
	}
	return tok, nil
}

// SaveDeviceToken persists a TCP-bridge device connection's auth token to
// the OS keyring, scoped by portOrHost.
func SaveDeviceToken(portOrHost, token string) error {
	return tokenStore.Set(keyringService, DeviceTokenKey(portOrHost), token)
}

// DeleteDeviceToken removes a stored device auth token.
func DeleteDeviceToken(portOrHost string) error {
	return tokenStore.Delete(keyringService, DeviceTokenKey(portOrHost))
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) {
	kr, err := getKeyring()
	if err != nil {
		return "", err
	}
	return kr.get(service, key)
}
func (k *osKeyring) Set(service, key, value string) error {
	kr, err := getKeyring()
	if err != nil {
		return err
	}
	return kr.set(service, key, value)
}
func (k *osKeyring) Delete(service, key string) error {
	kr, err := getKeyring()
	if err != nil {
		return err
	}
	return kr.delete(service, key)
}

// indirection to avoid hard importing in non-using contexts
type keyringShim interface {
	get(service, key string) (string, error)
	set(service, key, value string) error
	delete(service, key string) error
}

func getKeyring() (keyringShim, error) {
	return &goKeyringShim{}, nil
}

type goKeyringShim struct{}

func (g *goKeyringShim) get(service, key string) (string, error) {
	return keyringGet(service, key)
}
func (g *goKeyringShim) set(service, key, value string) error {
	return keyringSet(service, key, value)
}
func (g *goKeyringShim) delete(service, key string) error {
	return keyringDelete(service, key)
}

// The following vars are defined in keyring_stub.go or keyring_real.go depending on build tags.
var (
	keyringGet    func(service, key string) (string, error)
	keyringSet    func(service, key, value string) error
	keyringDelete func(service, key string) error
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GCodeKit5")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GCodeKit5")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gcodekit5")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the jobsync token from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringJobSync)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringJobSync, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.MeasurementUnit != "" {
		dst.General.MeasurementUnit = src.General.MeasurementUnit
	}
	if src.General.DefaultAxes != 0 {
		dst.General.DefaultAxes = src.General.DefaultAxes
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.JobSync.BaseURL != "" {
		dst.JobSync.BaseURL = src.JobSync.BaseURL
	}
	if src.JobSync.TimeoutMs != 0 {
		dst.JobSync.TimeoutMs = src.JobSync.TimeoutMs
	}
	dst.JobSync.TLSInsecure = src.JobSync.TLSInsecure
	dst.JobSync.Enabled = src.JobSync.Enabled
	if src.Device.DefaultTransport != "" {
		dst.Device.DefaultTransport = src.Device.DefaultTransport
	}
	if src.Device.DefaultPort != "" {
		dst.Device.DefaultPort = src.Device.DefaultPort
	}
	if src.Device.BaudRate != 0 {
		dst.Device.BaudRate = src.Device.BaudRate
	}
	if src.Device.PollHz != 0 {
		dst.Device.PollHz = src.Device.PollHz
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvJobSyncURL)); v != "" {
		cfg.JobSync.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJobSyncTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.JobSync.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvJobSyncTLSInsec)); v != "" {
		cfg.JobSync.TLSInsecure = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvJobSyncEnabled)); v != "" {
		cfg.JobSync.Enabled = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvMeasurementUnit)); v != "" {
		cfg.General.MeasurementUnit = strings.ToLower(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "jobsync.base_url":
		if os.Getenv(EnvJobSyncURL) != "" {
			return EnvJobSyncURL, true
		}
	case "jobsync.timeout_ms":
		if os.Getenv(EnvJobSyncTimeoutMs) != "" {
			return EnvJobSyncTimeoutMs, true
		}
	case "jobsync.tls_insecure":
		if os.Getenv(EnvJobSyncTLSInsec) != "" {
			return EnvJobSyncTLSInsec, true
		}
	case "jobsync.enabled":
		if os.Getenv(EnvJobSyncEnabled) != "" {
			return EnvJobSyncEnabled, true
		}
	case "general.telemetry_opt_in":
		if os.Getenv(EnvTelemetryOptIn) != "" {
			return EnvTelemetryOptIn, true
		}
	case "general.measurement_unit":
		if os.Getenv(EnvMeasurementUnit) != "" {
			return EnvMeasurementUnit, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}

// EffectiveTimeout returns the jobsync timeout as an http.Client-friendly
// duration string.
func (b JobSyncConfig) EffectiveTimeout() string {
	if b.TimeoutMs <= 0 {
		return fmt.Sprintf("%dms", Defaults().JobSync.TimeoutMs)
	}
	return fmt.Sprintf("%dms", b.TimeoutMs)
}
