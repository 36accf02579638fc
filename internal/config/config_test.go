package config

import (
	"os"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DBName != "tinyvector.db" {
		t.Errorf("expected db_name=tinyvector.db, got %s", cfg.DBName)
	}
	if cfg.IndexCacheCap != 100 {
		t.Errorf("expected hnsw_index_cache_capacity=100, got %d", cfg.IndexCacheCap)
	}
	if cfg.DefaultM != 16 {
		t.Errorf("expected default_m=16, got %d", cfg.DefaultM)
	}
	if cfg.DefaultEfCons != 100 {
		t.Errorf("expected default_ef_construction=100, got %d", cfg.DefaultEfCons)
	}
	if cfg.TokenExpire != 30 {
		t.Errorf("expected default_token_expire_days=30, got %d", cfg.TokenExpire)
	}
	if cfg.RequireAuth {
		t.Error("expected require_auth=false by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log_level=info, got %s", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{name: "valid config", modify: func(c *Config) {}, expectErr: false},
		{name: "empty data path", modify: func(c *Config) { c.DataPath = "" }, expectErr: true},
		{name: "empty db name", modify: func(c *Config) { c.DBName = "" }, expectErr: true},
		{name: "non-positive index cache capacity", modify: func(c *Config) { c.IndexCacheCap = 0 }, expectErr: true},
		{name: "non-positive default_m", modify: func(c *Config) { c.DefaultM = -1 }, expectErr: true},
		{name: "non-positive ef_construction", modify: func(c *Config) { c.DefaultEfCons = 0 }, expectErr: true},
		{name: "non-positive max datasize", modify: func(c *Config) { c.MaxDataSize = 0 }, expectErr: true},
		{name: "empty jwt key", modify: func(c *Config) { c.JWTKey = "" }, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}

func TestInMemory(t *testing.T) {
	cfg := Default()
	if cfg.InMemory() {
		t.Error("expected default config to not be in-memory")
	}
	cfg.DBName = ":memory:"
	if !cfg.InMemory() {
		t.Error("expected :memory: db_name to report InMemory() true")
	}
}

func TestLoadNoFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	for _, env := range envKeys {
		oldVal, had := os.LookupEnv(env)
		os.Unsetenv(env)
		if had {
			defer os.Setenv(env, oldVal)
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error with missing config, got: %v", err)
	}
	if cfg.DBName != "tinyvector.db" {
		t.Errorf("expected default db_name, got %s", cfg.DBName)
	}
}

func TestLoadInvalidIntFallsBackToDefault(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	os.Setenv("HNSW_INDEX_CACHE_CAPACITY", "not-a-number")
	defer os.Unsetenv("HNSW_INDEX_CACHE_CAPACITY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndexCacheCap != 100 {
		t.Errorf("expected fallback to default 100, got %d", cfg.IndexCacheCap)
	}
}
