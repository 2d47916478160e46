package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Screening.DefaultRegion != "US" {
		t.Errorf("Screening.DefaultRegion = %s, want US", cfg.Screening.DefaultRegion)
	}
	if cfg.Screening.RetentionDays != 30 {
		t.Errorf("Screening.RetentionDays = %d, want 30", cfg.Screening.RetentionDays)
	}
	if cfg.Screening.TrialDays != 7 {
		t.Errorf("Screening.TrialDays = %d, want 7", cfg.Screening.TrialDays)
	}
	if cfg.Screening.PruneInterval != 24*time.Hour {
		t.Errorf("Screening.PruneInterval = %v, want 24h", cfg.Screening.PruneInterval)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SCREEN_DEFAULT_REGION", "GB")
	t.Setenv("SCREEN_RETENTION_DAYS", "14")
	t.Setenv("SCREEN_EVALUATION_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_RPS", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Screening.DefaultRegion != "GB" {
		t.Errorf("Screening.DefaultRegion = %s, want GB", cfg.Screening.DefaultRegion)
	}
	if cfg.Screening.RetentionDays != 14 {
		t.Errorf("Screening.RetentionDays = %d, want 14", cfg.Screening.RetentionDays)
	}
	if cfg.Screening.EvaluationTimeout != 2*time.Second {
		t.Errorf("Screening.EvaluationTimeout = %v, want 2s", cfg.Screening.EvaluationTimeout)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Errorf("RateLimit.RequestsPerSecond = %d, want 5", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCREEN_RETENTION_DAYS", "not-a-number")
	t.Setenv("SCREEN_EVALUATION_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Screening.RetentionDays != 30 {
		t.Errorf("Screening.RetentionDays = %d, want default 30", cfg.Screening.RetentionDays)
	}
	if cfg.Screening.EvaluationTimeout != 4*time.Second {
		t.Errorf("Screening.EvaluationTimeout = %v, want default 4s", cfg.Screening.EvaluationTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero retention", func(c *Config) { c.Screening.RetentionDays = 0 }, true},
		{"negative trial", func(c *Config) { c.Screening.TrialDays = -1 }, true},
		{"zero timeout", func(c *Config) { c.Screening.EvaluationTimeout = 0 }, true},
		{"zero rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
		{"zero pool", func(c *Config) { c.Database.Postgres.MaxConnections = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
