package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/comments"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
	"github.com/creatorden/backend/pkg/pagination"
)

type commentAddRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// CommentAdd posts a reply. The subscription gate runs inside the service;
// drafts read as missing and non-subscribers get a subscription error.
func CommentAdd(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
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

		var payload commentAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comment, err := svc.Add(r.Context(), userID, postID, payload.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, commentResponseFromModel(comment))
	}
}

// CommentList returns a post's comments, newest first.
func CommentList(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		postID, err := validators.ParseURLParamUUID(r, "postId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByPost(r.Context(), postID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]commentResponse, len(list))
		for i := range list {
			out[i] = commentResponseFromModel(&list[i])
		}
		responses.WriteSuccess(w, out)
	}
}

type commentResponse struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func commentResponseFromModel(m *models.Comment) commentResponse {
	return commentResponse{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
