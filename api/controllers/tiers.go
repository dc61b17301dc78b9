package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/tiers"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
)

type tierCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=120"`
	Description  *string `json:"description,omitempty"`
	PriceMonthly string  `json:"price_monthly" validate:"required"`
	Level        int     `json:"level" validate:"required,gte=1,lte=10"`
}

func (r tierCreateRequest) toInput(creatorID uuid.UUID) (tiers.CreateTierInput, error) {
	price, err := decimal.NewFromString(r.PriceMonthly)
	if err != nil {
		return tiers.CreateTierInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_monthly")
	}
	return tiers.CreateTierInput{
		CreatorID:    creatorID,
		Name:         r.Name,
		Description:  r.Description,
		PriceMonthly: price,
		Level:        r.Level,
	}, nil
}

// TierCreate adds a subscription tier for the authenticated creator.
func TierCreate(svc tiers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tier service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		if !middleware.IsCreatorFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "creator account required"))
			return
		}

		var payload tierCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tierResponseFromModel(tier))
	}
}

// TierList returns a creator's tiers, public so prospective subscribers can
// browse pricing.
func TierList(svc tiers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tier service unavailable"))
			return
		}

		creatorID, err := validators.ParseURLParamUUID(r, "creatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByCreator(r.Context(), creatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]tierResponse, len(list))
		for i := range list {
			out[i] = tierResponseFromModel(&list[i])
		}
		responses.WriteSuccess(w, out)
	}
}

// TierDeactivate retires a tier. Existing subscriptions keep their access.
func TierDeactivate(svc tiers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tier service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		tierID, err := validators.ParseURLParamUUID(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), userID, tierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type tierResponse struct {
	ID           uuid.UUID       `json:"id"`
	CreatorID    uuid.UUID       `json:"creator_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	PriceMonthly decimal.Decimal `json:"price_monthly"`
	Level        int             `json:"level"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func tierResponseFromModel(m *models.Tier) tierResponse {
	return tierResponse{
		ID:           m.ID,
		CreatorID:    m.CreatorID,
		Name:         m.Name,
		Description:  m.Description,
		PriceMonthly: m.PriceMonthly,
		Level:        m.Level,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
