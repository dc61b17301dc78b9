package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/posts"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
	"github.com/creatorden/backend/pkg/pagination"
)

type postCreateRequest struct {
	Title               string      `json:"title" validate:"required,min=1,max=300"`
	BodyText            *string     `json:"body_text,omitempty"`
	MediaIDs            []uuid.UUID `json:"media_ids,omitempty"`
	AccessLevelRequired int         `json:"access_level_required" validate:"required,gte=1,lte=10"`
	IsDraft             bool        `json:"is_draft"`
	ScheduledAt         *time.Time  `json:"scheduled_at,omitempty"`
}

func (r postCreateRequest) toInput(creatorID uuid.UUID) posts.CreatePostInput {
	return posts.CreatePostInput{
		CreatorID:           creatorID,
		Title:               r.Title,
		BodyText:            r.BodyText,
		MediaIDs:            r.MediaIDs,
		AccessLevelRequired: r.AccessLevelRequired,
		IsDraft:             r.IsDraft,
		ScheduledAt:         r.ScheduledAt,
	}
}

// PostCreate publishes (or drafts) a gated post for the authenticated creator.
func PostCreate(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "post service unavailable"))
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

		var payload postCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Create(r.Context(), payload.toInput(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, postResponseFromModel(post))
	}
}

// PostList returns the slice of a creator's feed the viewer's tier unlocks.
// Anonymous viewers see nothing behind the gate.
func PostList(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "post service unavailable"))
			return
		}

		creatorID, err := validators.ParseURLParamUUID(r, "creatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewerID := middleware.UserIDFromContext(r.Context())
		params := pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}

		page, err := svc.ListVisible(r.Context(), creatorID, viewerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := postPageResponse{
			Posts:      make([]postResponse, len(page.Posts)),
			NextCursor: page.NextCursor,
		}
		for i := range page.Posts {
			out.Posts[i] = postResponseFromModel(&page.Posts[i])
		}
		responses.WriteSuccess(w, out)
	}
}

// PostPublish flips a draft live.
func PostPublish(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "post service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		postID, err := validators.ParseURLParamUUID(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Publish(r.Context(), userID, postID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "published"})
	}
}

type postPageResponse struct {
	Posts      []postResponse `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type postResponse struct {
	ID                  uuid.UUID   `json:"id"`
	CreatorID           uuid.UUID   `json:"creator_id"`
	Title               string      `json:"title"`
	BodyText            *string     `json:"body_text,omitempty"`
	MediaIDs            []uuid.UUID `json:"media_ids"`
	AccessLevelRequired int         `json:"access_level_required"`
	IsDraft             bool        `json:"is_draft"`
	ScheduledAt         *time.Time  `json:"scheduled_at,omitempty"`
	PublishedAt         *time.Time  `json:"published_at,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func postResponseFromModel(m *models.Post) postResponse {
	return postResponse{
		ID:                  m.ID,
		CreatorID:           m.CreatorID,
		Title:               m.Title,
		BodyText:            m.BodyText,
		MediaIDs:            posts.MediaIDList(m),
		AccessLevelRequired: m.AccessLevelRequired,
		IsDraft:             m.IsDraft,
		ScheduledAt:         m.ScheduledAt,
		PublishedAt:         m.PublishedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
