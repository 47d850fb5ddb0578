package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	AuthSigningKey string `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string `mapstructure:"AUTH_AUDIENCE"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Clinic defaults, used when no ClinicSettings row has been saved yet.
	ReminderHoursBefore     int     `mapstructure:"REMINDER_HOURS_BEFORE"`
	ConfirmationHoursBefore int     `mapstructure:"CONFIRMATION_HOURS_BEFORE"`
	NoShowThreshold         int     `mapstructure:"NO_SHOW_THRESHOLD"`
	CancellationPolicyHours int     `mapstructure:"CANCELLATION_POLICY_HOURS"`
	AvgAppointmentValue     float64 `mapstructure:"AVG_APPOINTMENT_VALUE"`
	HighRiskScoreThreshold  float64 `mapstructure:"HIGH_RISK_SCORE_THRESHOLD"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REMINDER_HOURS_BEFORE", 24)
	v.SetDefault("CONFIRMATION_HOURS_BEFORE", 2)
	v.SetDefault("NO_SHOW_THRESHOLD", 3)
	v.SetDefault("CANCELLATION_POLICY_HOURS", 24)
	v.SetDefault("AVG_APPOINTMENT_VALUE", 150.0)
	v.SetDefault("HIGH_RISK_SCORE_THRESHOLD", 0.6)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("REMINDER_HOURS_BEFORE")
	v.BindEnv("CONFIRMATION_HOURS_BEFORE")
	v.BindEnv("NO_SHOW_THRESHOLD")
	v.BindEnv("CANCELLATION_POLICY_HOURS")
	v.BindEnv("AVG_APPOINTMENT_VALUE")
	v.BindEnv("HIGH_RISK_SCORE_THRESHOLD")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// mode a signing key is required so real JWT authentication is enforced.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf(
			"AUTH_SIGNING_KEY must be set when ENV is not development (current ENV=%q); "+
				"refusing to start without authentication configuration", c.Env)
	}
	if c.NoShowThreshold < 1 {
		return fmt.Errorf("NO_SHOW_THRESHOLD must be at least 1, got %d", c.NoShowThreshold)
	}
	if c.ReminderHoursBefore < 0 || c.ConfirmationHoursBefore < 0 {
		return fmt.Errorf("reminder and confirmation lead times must not be negative")
	}
	return nil
}
