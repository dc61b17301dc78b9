package controllers

import (
	"net/http"

	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/moderation"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
)

type moderationClassifyRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

type moderationClassifyResponse struct {
	Flagged bool     `json:"flagged"`
	Labels  []string `json:"labels,omitempty"`
}

// ModerationClassify runs the content classifier without persisting anything.
// Creators use it to pre-check a draft before publishing.
func ModerationClassify(classifier moderation.ContentClassifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if classifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "classifier unavailable"))
			return
		}

		var payload moderationClassifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := classifier.Classify(r.Context(), payload.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "classifier failed"))
			return
		}

		responses.WriteSuccess(w, moderationClassifyResponse{
			Flagged: result.Flagged,
			Labels:  result.Labels,
		})
	}
}
