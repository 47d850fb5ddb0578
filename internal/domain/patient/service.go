package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	StatusActive: true, StatusInactive: true, StatusHighRisk: true,
}

var validInsuranceStatuses = map[string]bool{
	InsuranceVerified: true, InsurancePending: true,
	InsuranceExpired: true, InsuranceInvalid: true,
}

var validCommunicationChannels = map[string]bool{
	"phone": true, "email": true, "sms": true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid patient status: %s", p.Status)
	}
	if p.InsuranceStatus == "" {
		p.InsuranceStatus = InsurancePending
	}
	if !validInsuranceStatuses[p.InsuranceStatus] {
		return fmt.Errorf("invalid insurance status: %s", p.InsuranceStatus)
	}
	if p.PreferredCommunication == "" {
		p.PreferredCommunication = "phone"
	}
	if !validCommunicationChannels[p.PreferredCommunication] {
		return fmt.Errorf("invalid preferred_communication: %s", p.PreferredCommunication)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.Status != "" && !validStatuses[p.Status] {
		return fmt.Errorf("invalid patient status: %s", p.Status)
	}
	if p.InsuranceStatus != "" && !validInsuranceStatuses[p.InsuranceStatus] {
		return fmt.Errorf("invalid insurance status: %s", p.InsuranceStatus)
	}
	if p.PreferredCommunication != "" && !validCommunicationChannels[p.PreferredCommunication] {
		return fmt.Errorf("invalid preferred_communication: %s", p.PreferredCommunication)
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Find locates patients by phone, email, or name fragment.
func (s *Service) Find(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	if query == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, query, limit, offset)
}

func (s *Service) ListHighRisk(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByStatus(ctx, StatusHighRisk, limit, offset)
}
