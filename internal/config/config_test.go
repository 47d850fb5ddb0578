package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/medassist_test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.NoShowThreshold != 3 {
		t.Errorf("expected default no-show threshold 3, got %d", cfg.NoShowThreshold)
	}
	if cfg.ReminderHoursBefore != 24 {
		t.Errorf("expected default reminder lead 24h, got %d", cfg.ReminderHoursBefore)
	}
	if cfg.ConfirmationHoursBefore != 2 {
		t.Errorf("expected default confirmation lead 2h, got %d", cfg.ConfirmationHoursBefore)
	}
	if cfg.AvgAppointmentValue != 150.0 {
		t.Errorf("expected default appointment value 150, got %v", cfg.AvgAppointmentValue)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "dev mode without signing key",
			cfg:     Config{Env: "development", NoShowThreshold: 3},
			wantErr: false,
		},
		{
			name:    "production without signing key",
			cfg:     Config{Env: "production", NoShowThreshold: 3},
			wantErr: true,
		},
		{
			name:    "production with signing key",
			cfg:     Config{Env: "production", AuthSigningKey: "secret", NoShowThreshold: 3},
			wantErr: false,
		},
		{
			name:    "zero no-show threshold",
			cfg:     Config{Env: "development", NoShowThreshold: 0},
			wantErr: true,
		},
		{
			name:    "negative reminder lead",
			cfg:     Config{Env: "development", NoShowThreshold: 3, ReminderHoursBefore: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
