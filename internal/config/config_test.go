package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/workorder-sheet/internal/workorder"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "cli" {
		t.Errorf("Expected default mode to be 'cli', got '%s'", cfg.Mode)
	}
	if cfg.Variant != "fhc" {
		t.Errorf("Expected default variant to be 'fhc', got '%s'", cfg.Variant)
	}
	if cfg.UnknownDates != "last" {
		t.Errorf("Expected unknown dates to sort 'last', got '%s'", cfg.UnknownDates)
	}
	if cfg.ServerName != "workorder-sheet" {
		t.Errorf("Expected default server name to be 'workorder-sheet', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.Output != "" || cfg.VariantsFile != "" || cfg.ValidatePDFs {
		t.Errorf("Expected output, variants file and validation to be unset, got %s", cfg.String())
	}

	currentDir, _ := os.Getwd()
	if cfg.Directory != currentDir {
		t.Errorf("Expected default directory to be '%s', got '%s'", currentDir, cfg.Directory)
	}
}

func TestConfigValidate(t *testing.T) {
	variantsFile := filepath.Join(t.TempDir(), "variants.yaml")
	if err := os.WriteFile(variantsFile, []byte("variants: []"), 0o600); err != nil {
		t.Fatalf("failed to write variants file: %v", err)
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid cli config", modify: func(*Config) {}},
		{name: "valid stdio config", modify: func(c *Config) { c.Mode = ModeStdio }},
		{name: "valid output", modify: func(c *Config) { c.Output = "March.XLSX" }},
		{name: "valid variants file", modify: func(c *Config) { c.VariantsFile = variantsFile }},
		{name: "first unknown dates", modify: func(c *Config) { c.UnknownDates = "first" }},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "server" }, wantErr: "mode must be"},
		{name: "empty directory", modify: func(c *Config) { c.Directory = "" }, wantErr: "directory cannot be empty"},
		{name: "csv output", modify: func(c *Config) { c.Output = "out.csv" }, wantErr: ".xlsx"},
		{name: "empty variant", modify: func(c *Config) { c.Variant = "" }, wantErr: "variant cannot be empty"},
		{name: "missing variants file", modify: func(c *Config) { c.VariantsFile = variantsFile + ".gone" }, wantErr: "variants file"},
		{name: "bad unknown dates", modify: func(c *Config) { c.UnknownDates = "middle" }, wantErr: "unknown-date policy"},
		{name: "zero max file size", modify: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "must be positive"},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q but got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	cfg := validConfig(t)
	cfg.Directory = filepath.Join(cfg.Directory, "nested", "reports")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(cfg.Directory)
	if err != nil {
		t.Fatalf("directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", cfg.Directory)
	}
}

func TestConfigUnknownDatePolicy(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.UnknownDatePolicy(); got != workorder.UnknownLast {
		t.Errorf("UnknownDatePolicy() = %v, want %v", got, workorder.UnknownLast)
	}

	cfg.UnknownDates = "FIRST"
	if got := cfg.UnknownDatePolicy(); got != workorder.UnknownFirst {
		t.Errorf("UnknownDatePolicy() = %v, want %v", got, workorder.UnknownFirst)
	}

	cfg.UnknownDates = "sideways"
	if got := cfg.UnknownDatePolicy(); got != workorder.UnknownLast {
		t.Errorf("UnknownDatePolicy() = %v, want fallback %v", got, workorder.UnknownLast)
	}
}

func TestConfigModes(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsCLIMode() || cfg.IsStdioMode() {
		t.Errorf("default config should be in cli mode")
	}
	cfg.Mode = ModeStdio
	if cfg.IsCLIMode() || !cfg.IsStdioMode() {
		t.Errorf("stdio config should be in stdio mode")
	}
	if cfg.IsDebug() {
		t.Errorf("info level should not be debug")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Errorf("debug level should be debug")
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:         ModeCLI,
		Directory:    "/srv/reports",
		Variant:      "fhc-pipe",
		Output:       "out.xlsx",
		UnknownDates: "last",
		LogLevel:     "info",
		MaxFileSize:  1024,
	}
	want := "Config{Mode: cli, Directory: /srv/reports, Variant: fhc-pipe, Output: out.xlsx, UnknownDates: last, LogLevel: info, MaxFileSize: 1024}"
	if got := cfg.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
