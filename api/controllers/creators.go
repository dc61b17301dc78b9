package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/creators"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
)

type creatorProfileCreateRequest struct {
	Handle     string   `json:"handle" validate:"required,min=3,max=30"`
	Headline   *string  `json:"headline,omitempty" validate:"omitempty,max=200"`
	About      *string  `json:"about,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// CreatorProfileCreate claims a handle for the authenticated user and marks
// them as a creator.
func CreatorProfileCreate(svc creators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creator service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload creatorProfileCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Create(r.Context(), creators.CreateProfileInput{
			UserID:     userID,
			Handle:     payload.Handle,
			Headline:   payload.Headline,
			About:      payload.About,
			Categories: payload.Categories,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, creatorProfileResponseFromModel(profile))
	}
}

// CreatorProfileByHandle is the public creator page lookup.
func CreatorProfileByHandle(svc creators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creator service unavailable"))
			return
		}

		handle := chi.URLParam(r, "handle")
		if handle == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "handle required"))
			return
		}

		profile, err := svc.FindByHandle(r.Context(), handle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, creatorProfileResponseFromModel(profile))
	}
}

// CreatorProfileMine returns the authenticated creator's own profile.
func CreatorProfileMine(svc creators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creator service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		profile, err := svc.FindByUserID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, creatorProfileResponseFromModel(profile))
	}
}

type creatorProfileResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Handle     string    `json:"handle"`
	Headline   *string   `json:"headline,omitempty"`
	About      *string   `json:"about,omitempty"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func creatorProfileResponseFromModel(m *models.CreatorProfile) creatorProfileResponse {
	return creatorProfileResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		Handle:     m.Handle,
		Headline:   m.Headline,
		About:      m.About,
		Categories: creators.CategoryList(m),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
