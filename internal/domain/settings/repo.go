package settings

import (
	"context"
	"errors"
)

// ErrNotSaved means no settings row has been written yet; callers fall back
// to configured defaults.
var ErrNotSaved = errors.New("settings: not saved")

type Repository interface {
	Get(ctx context.Context) (*ClinicSettings, error)
	Save(ctx context.Context, s *ClinicSettings) error
}
