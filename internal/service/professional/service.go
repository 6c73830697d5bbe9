package professional

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/repository"
	"github.com/turnolab/scheduler-api/pkg/errors"
)

type Service struct {
	repo repository.ProfessionalRepository
}

func NewService(repo repository.ProfessionalRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProfessional(ctx context.Context, req *model.CreateProfessionalRequest) (*model.Professional, error) {
	professional := &model.Professional{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
		Status:    "active",
	}

	if err := s.repo.Create(ctx, professional); err != nil {
		return nil, fmt.Errorf("failed to create professional: %w", err)
	}
	return professional, nil
}

func (s *Service) GetProfessional(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	professional, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("professional", err)
	}
	return professional, nil
}

func (s *Service) ListProfessionals(ctx context.Context) ([]*model.Professional, error) {
	professionals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, nil
}
