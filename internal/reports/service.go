package reports

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateReportInput files a moderation flag against a post, comment or user.
type CreateReportInput struct {
	TargetType enums.ReportTargetType
	TargetID   uuid.UUID
	Reason     string
	ReporterID uuid.UUID
}

type Service interface {
	Create(ctx context.Context, input CreateReportInput) (*models.Report, error)
	ListByStatus(ctx context.Context, status enums.ReportStatus, limit int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReportStatus) (*models.Report, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateReportInput) (*models.Report, error) {
	if !input.TargetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown report target type")
	}
	if input.TargetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target id required")
	}
	if input.ReporterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reporter id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	report := &models.Report{
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Reason:     reason,
		ReporterID: input.ReporterID,
		Status:     enums.ReportStatusOpen,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create report")
	}
	return report, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.ReportStatus, limit int) ([]models.Report, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown report status")
	}
	records, err := s.repo.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reports")
	}
	return records, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReportStatus) (*models.Report, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown report status")
	}
	report, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update report status")
	}
	report.Status = status
	return report, nil
}
