package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/reports"
	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
	"github.com/creatorden/backend/pkg/pagination"
)

type reportCreateRequest struct {
	TargetType string    `json:"target_type" validate:"required"`
	TargetID   uuid.UUID `json:"target_id" validate:"required"`
	Reason     string    `json:"reason" validate:"required,min=1,max=1000"`
}

// ReportCreate files a moderation flag against a post, comment or user.
func ReportCreate(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload reportCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetType, err := enums.ParseReportTargetType(payload.TargetType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target_type"))
			return
		}

		report, err := svc.Create(r.Context(), reports.CreateReportInput{
			TargetType: targetType,
			TargetID:   payload.TargetID,
			Reason:     payload.Reason,
			ReporterID: userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reportResponseFromModel(report))
	}
}

// ReportList returns reports filtered by status, defaulting to open.
func ReportList(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		status := enums.ReportStatusOpen
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseReportStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = parsed
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByStatus(r.Context(), status, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]reportResponse, len(list))
		for i := range list {
			out[i] = reportResponseFromModel(&list[i])
		}
		responses.WriteSuccess(w, out)
	}
}

type reportStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ReportUpdateStatus moves a report through its review lifecycle.
func ReportUpdateStatus(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		reportID, err := validators.ParseURLParamUUID(r, "reportId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reportStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseReportStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		report, err := svc.UpdateStatus(r.Context(), reportID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reportResponseFromModel(report))
	}
}

type reportResponse struct {
	ID         uuid.UUID              `json:"id"`
	TargetType enums.ReportTargetType `json:"target_type"`
	TargetID   uuid.UUID              `json:"target_id"`
	Reason     string                 `json:"reason"`
	ReporterID uuid.UUID              `json:"reporter_id"`
	Status     enums.ReportStatus     `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func reportResponseFromModel(m *models.Report) reportResponse {
	return reportResponse{
		ID:         m.ID,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		Reason:     m.Reason,
		ReporterID: m.ReporterID,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
