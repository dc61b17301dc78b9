package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/api/validators"
	"github.com/creatorden/backend/internal/wallet"
	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
	"github.com/creatorden/backend/pkg/pagination"
)

type tokenPurchaseRequest struct {
	Amount int64 `json:"amount" validate:"required,gte=1"`
}

// TokenPurchase mints tokens into the caller's wallet.
func TokenPurchase(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload tokenPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Purchase(r.Context(), userID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, balanceResponse{
			UserID:  account.UserID,
			Balance: account.Balance,
		})
	}
}

type tokenTipRequest struct {
	ToUserID uuid.UUID  `json:"to_user_id" validate:"required"`
	Amount   int64      `json:"amount" validate:"required,gte=1"`
	PostID   *uuid.UUID `json:"post_id,omitempty"`
	Note     *string    `json:"note,omitempty" validate:"omitempty,max=280"`
}

// TokenTip moves tokens from the caller to another user, all or nothing.
func TokenTip(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload tokenTipRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Tip(r.Context(), wallet.TipInput{
			FromUserID: userID,
			ToUserID:   payload.ToUserID,
			Amount:     payload.Amount,
			PostID:     payload.PostID,
			Note:       payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transactionResponseFromModel(entry))
	}
}

// TokenBalance returns the caller's current balance.
func TokenBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		balance, err := svc.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, balanceResponse{UserID: userID, Balance: balance})
	}
}

// TokenHistory lists the caller's transactions, newest first.
func TokenHistory(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]transactionResponse, len(history))
		for i := range history {
			out[i] = transactionResponseFromModel(&history[i])
		}
		responses.WriteSuccess(w, out)
	}
}

type balanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

type transactionResponse struct {
	ID            uuid.UUID             `json:"id"`
	FromAccountID *uuid.UUID            `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID            `json:"to_account_id,omitempty"`
	Amount        int64                 `json:"amount"`
	Kind          enums.TransactionKind `json:"kind"`
	Note          *string               `json:"note,omitempty"`
	PostID        *uuid.UUID            `json:"post_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

func transactionResponseFromModel(m *models.TokenTransaction) transactionResponse {
	return transactionResponse{
		ID:            m.ID,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        m.Amount,
		Kind:          m.Kind,
		Note:          m.Note,
		PostID:        m.PostID,
		CreatedAt:     m.CreatedAt,
	}
}
