package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:         "data/test.db",
		DataDir:        "data",
		ChunkSize:      10000,
		StartYear:      2020,
		EndYear:        2026,
		CurrentCSVURL:  "https://example.com/current.csv",
		ArchiveBaseURL: "https://example.com/archives/",
		RecentDays:     30,
		Port:           "8080",
		APIAccessKey:   "test-key",
		UserAgent:      "Test Agent",
		Timezone:       "UTC",
		Debug:          true,
		Version:        "test-version",
	}

	if cfg.DBPath != "data/test.db" {
		t.Errorf("Expected db path 'data/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.DataDir != "data" {
		t.Errorf("Expected data dir 'data', got '%s'", cfg.DataDir)
	}
	if cfg.ChunkSize != 10000 {
		t.Errorf("Expected chunk size 10000, got %d", cfg.ChunkSize)
	}
	if cfg.StartYear != 2020 || cfg.EndYear != 2026 {
		t.Errorf("Expected year range 2020-2026, got %d-%d", cfg.StartYear, cfg.EndYear)
	}
	if cfg.CurrentCSVURL != "https://example.com/current.csv" {
		t.Errorf("Expected current CSV URL override, got '%s'", cfg.CurrentCSVURL)
	}
	if cfg.ArchiveBaseURL != "https://example.com/archives/" {
		t.Errorf("Expected archive base URL override, got '%s'", cfg.ArchiveBaseURL)
	}
	if cfg.RecentDays != 30 {
		t.Errorf("Expected recent days 30, got %d", cfg.RecentDays)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}

func TestCurrentFiscalYear(t *testing.T) {
	fy := currentFiscalYear()
	year := time.Now().Year()
	if fy != year && fy != year+1 {
		t.Errorf("Fiscal year %d out of range for calendar year %d", fy, year)
	}
}
