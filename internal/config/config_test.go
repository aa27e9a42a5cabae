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
	"os"
	"testing"
)

func TestEnvOverridesJobSyncURL(t *testing.T) {
	old := os.Getenv(EnvJobSyncURL)
	_ = os.Setenv(EnvJobSyncURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvJobSyncURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.JobSync.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("JobSync.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeIncludesJobSyncEnabled(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.JobSync.Enabled = true
	mergeInto(&dst, &src)
	if !dst.JobSync.Enabled {
		t.Fatalf("JobSync.Enabled was not merged from file config")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gcodekit5.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gcodekit5.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "/var/log/gcodekit5.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/log/gcodekit5.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestDeviceTokenKeyScopesByPort(t *testing.T) {
	a := DeviceTokenKey("/dev/ttyUSB0")
	b := DeviceTokenKey("192.168.1.50")
	if a == b {
		t.Fatalf("expected distinct keyring keys per device identifier")
	}
}
