package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ytget/video-api/internal/model"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string {
		return m[key]
	}
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(nil, envMap(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.Addr != DefaultAddr {
		t.Errorf("Expected addr %s, got %s", DefaultAddr, settings.Addr)
	}
	if settings.MaxParallel != DefaultMaxParallel {
		t.Errorf("Expected default max parallel %d, got %d", DefaultMaxParallel, settings.MaxParallel)
	}
	if settings.TaskTimeout != DefaultTaskTimeout {
		t.Errorf("Expected task timeout %v, got %v", DefaultTaskTimeout, settings.TaskTimeout)
	}
	if !filepath.IsAbs(settings.DownloadDir) {
		t.Errorf("Expected absolute download dir, got %s", settings.DownloadDir)
	}
	if filepath.Base(settings.DownloadDir) != DefaultDownloadDir {
		t.Errorf("Expected download dir to end with %s, got %s", DefaultDownloadDir, settings.DownloadDir)
	}
}

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	settings, err := Load(nil, envMap(map[string]string{
		EnvAddr:         ":9000",
		EnvDownloadDir:  dir,
		EnvMaxParallel:  "4",
		EnvTaskTimeout:  "90s",
		EnvTaskTTL:      "1h",
		EnvMaxTasks:     "50",
		EnvInstallYTDLP: "true",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.Addr != ":9000" {
		t.Errorf("Expected addr :9000, got %s", settings.Addr)
	}
	if settings.DownloadDir != dir {
		t.Errorf("Expected download dir %s, got %s", dir, settings.DownloadDir)
	}
	if settings.MaxParallel != 4 {
		t.Errorf("Expected max parallel 4, got %d", settings.MaxParallel)
	}
	if settings.TaskTimeout != 90*time.Second {
		t.Errorf("Expected task timeout 90s, got %v", settings.TaskTimeout)
	}
	if settings.TaskTTL != time.Hour {
		t.Errorf("Expected task TTL 1h, got %v", settings.TaskTTL)
	}
	if settings.MaxTasks != 50 {
		t.Errorf("Expected max tasks 50, got %d", settings.MaxTasks)
	}
	if !settings.InstallYTDLP {
		t.Error("Expected InstallYTDLP to be true")
	}
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	settings, err := Load(
		[]string{"-addr", ":7000", "-max-parallel", "3"},
		envMap(map[string]string{EnvAddr: ":9000", EnvMaxParallel: "5"}),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.Addr != ":7000" {
		t.Errorf("Expected addr :7000, got %s", settings.Addr)
	}
	if settings.MaxParallel != 3 {
		t.Errorf("Expected max parallel 3, got %d", settings.MaxParallel)
	}
}

func TestLoadInvalidEnvironment(t *testing.T) {
	tests := map[string]string{
		EnvMaxParallel:  "many",
		EnvTaskTimeout:  "soon",
		EnvTaskTTL:      "forever",
		EnvInstallYTDLP: "maybe",
	}
	for key, value := range tests {
		if _, err := Load(nil, envMap(map[string]string{key: value})); err == nil {
			t.Errorf("Expected error for %s=%s", key, value)
		}
	}
}

func TestLoadUnknownFlag(t *testing.T) {
	if _, err := Load([]string{"-nope"}, envMap(nil)); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestMaxParallelDownloads(t *testing.T) {
	settings := NewSettings()

	settings.SetMaxParallelDownloads(5)
	if settings.MaxParallel != 5 {
		t.Errorf("Expected max parallel 5, got %d", settings.MaxParallel)
	}

	// Test boundary values
	settings.SetMaxParallelDownloads(0) // Should be clamped to 1
	if settings.MaxParallel != 1 {
		t.Error("Max parallel should be clamped to minimum 1")
	}

	settings.SetMaxParallelDownloads(15) // Should be clamped to 10
	if settings.MaxParallel != 10 {
		t.Error("Max parallel should be clamped to maximum 10")
	}
}

func TestTaskTimeoutClamp(t *testing.T) {
	settings := NewSettings()

	settings.SetTaskTimeout(0)
	if settings.TaskTimeout != DefaultTaskTimeout {
		t.Errorf("Expected zero timeout to fall back to %v, got %v", DefaultTaskTimeout, settings.TaskTimeout)
	}

	settings.SetTaskTimeout(5 * time.Second)
	if settings.TaskTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %v", settings.TaskTimeout)
	}
}

func TestGetQualityPresetOptions(t *testing.T) {
	settings := NewSettings()

	options := settings.GetQualityPresetOptions()
	expectedOptions := []model.Quality{model.QualityHigh, model.QualityMedium, model.QualityLow}

	if len(options) != len(expectedOptions) {
		t.Fatalf("Expected %d quality options, got %d", len(expectedOptions), len(options))
	}

	for i, expected := range expectedOptions {
		if options[i] != expected {
			t.Errorf("Quality option %d: expected %s, got %s", i, expected, options[i])
		}
	}
}
