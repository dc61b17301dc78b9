package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/media"
	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
)

type mediaCreateRequest struct {
	URL       string  `json:"url" validate:"required,url"`
	MediaType string  `json:"media_type" validate:"required"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=200"`
	SizeBytes *int64  `json:"size_bytes,omitempty"`
}

func (r mediaCreateRequest) toInput(creatorID uuid.UUID) (media.CreateAssetInput, error) {
	mediaType, err := enums.ParseMediaType(r.MediaType)
	if err != nil {
		return media.CreateAssetInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media_type")
	}
	return media.CreateAssetInput{
		CreatorID: creatorID,
		URL:       r.URL,
		MediaType: mediaType,
		Title:     r.Title,
		SizeBytes: r.SizeBytes,
	}, nil
}

// MediaCreate registers an externally hosted asset for the creator.
func MediaCreate(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
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

		var payload mediaCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, mediaResponseFromModel(asset))
	}
}

// MediaList returns the authenticated creator's assets.
func MediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		list, err := svc.ListByCreator(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]mediaResponse, len(list))
		for i := range list {
			out[i] = mediaResponseFromModel(&list[i])
		}
		responses.WriteSuccess(w, out)
	}
}

type mediaResponse struct {
	ID        uuid.UUID       `json:"id"`
	CreatorID uuid.UUID       `json:"creator_id"`
	URL       string          `json:"url"`
	MediaType enums.MediaType `json:"media_type"`
	Title     *string         `json:"title,omitempty"`
	SizeBytes *int64          `json:"size_bytes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func mediaResponseFromModel(m *models.MediaAsset) mediaResponse {
	return mediaResponse{
		ID:        m.ID,
		CreatorID: m.CreatorID,
		URL:       m.URL,
		MediaType: m.MediaType,
		Title:     m.Title,
		SizeBytes: m.SizeBytes,
		CreatedAt: m.CreatedAt,
	}
}
