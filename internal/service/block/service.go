package block

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/repository"
	"github.com/turnolab/scheduler-api/pkg/validator"
)

type Service struct {
	repo      repository.CalendarBlockRepository
	validator *validator.Validator
}

func NewService(repo repository.CalendarBlockRepository, v *validator.Validator) *Service {
	return &Service{repo: repo, validator: v}
}

// Import stores one externally-sourced busy interval. Re-importing the same
// source/external id pair updates the stored block.
func (s *Service) Import(ctx context.Context, req *model.ImportCalendarBlockRequest) (*model.CalendarBlock, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("invalid calendar block: %w", err)
	}

	blk := &model.CalendarBlock{
		ProfessionalID: req.ProfessionalID,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Source:         req.Source,
		Summary:        req.Summary,
		ExternalID:     req.ExternalID,
	}
	if blk.ExternalID == "" {
		blk.ExternalID = uuid.NewString()
	}

	if err := s.repo.Upsert(ctx, blk); err != nil {
		return nil, fmt.Errorf("failed to import calendar block: %w", err)
	}
	return blk, nil
}

func (s *Service) List(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*model.CalendarBlock, error) {
	blocks, err := s.repo.List(ctx, professionalID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar blocks: %w", err)
	}
	return blocks, nil
}
