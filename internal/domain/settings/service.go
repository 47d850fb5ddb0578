package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/medassist/medassist/internal/config"
)

// Defaults builds the settings used before any row has been saved. Lead
// times and thresholds come from the environment config.
func Defaults(cfg *config.Config) *ClinicSettings {
	return &ClinicSettings{
		ClinicName:                    "MedAssist Clinic",
		Timezone:                      "America/New_York",
		ReminderHoursBefore:           cfg.ReminderHoursBefore,
		ConfirmationHoursBefore:       cfg.ConfirmationHoursBefore,
		NoShowThreshold:               cfg.NoShowThreshold,
		CancellationPolicyHours:       cfg.CancellationPolicyHours,
		AutoRescheduleEnabled:         false,
		InsuranceVerificationRequired: true,
	}
}

type Service struct {
	repo Repository
	cfg  *config.Config
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Get returns the saved settings, or the configured defaults when nothing
// has been saved yet.
func (s *Service) Get(ctx context.Context) (*ClinicSettings, error) {
	saved, err := s.repo.Get(ctx)
	if err == ErrNotSaved {
		return Defaults(s.cfg), nil
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Update validates and persists the settings wholesale.
func (s *Service) Update(ctx context.Context, settings *ClinicSettings) error {
	if settings.NoShowThreshold < 1 {
		return fmt.Errorf("no_show_threshold must be at least 1")
	}
	if settings.ReminderHoursBefore < 0 || settings.ConfirmationHoursBefore < 0 {
		return fmt.Errorf("lead times must not be negative")
	}
	if settings.CancellationPolicyHours < 0 {
		return fmt.Errorf("cancellation_policy_hours must not be negative")
	}
	if settings.Timezone == "" {
		settings.Timezone = "America/New_York"
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", settings.Timezone)
	}
	return s.repo.Save(ctx, settings)
}
