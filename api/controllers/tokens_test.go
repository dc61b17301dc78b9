package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creatorden/backend/api/middleware"
	"github.com/creatorden/backend/internal/wallet"
	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
)

type stubWalletService struct {
	account *models.Account
	entry   *models.TokenTransaction
	history []models.TokenTransaction
	balance int64
	err     error

	lastTip wallet.TipInput
}

func (s *stubWalletService) Purchase(ctx context.Context, userID uuid.UUID, amount int64) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func (s *stubWalletService) Tip(ctx context.Context, input wallet.TipInput) (*models.TokenTransaction, error) {
	s.lastTip = input
	if s.err != nil {
		return nil, s.err
	}
	return s.entry, nil
}

func (s *stubWalletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.balance, nil
}

func (s *stubWalletService) Provision(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error) {
	return s.account, s.err
}

func (s *stubWalletService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.TokenTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUser(req.Context(), userID, false))
}

func TestTokenPurchaseSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &stubWalletService{account: &models.Account{UserID: userID, Balance: 150}}
	handler := TokenPurchase(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/tokens/purchase", []byte(`{"amount": 150}`), userID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data balanceResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Balance != 150 {
		t.Fatalf("expected balance 150 got %d", envelope.Data.Balance)
	}
	if envelope.Data.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, envelope.Data.UserID)
	}
}

func TestTokenPurchaseMissingContext(t *testing.T) {
	handler := TokenPurchase(&stubWalletService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/purchase", bytes.NewReader([]byte(`{"amount": 10}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestTokenPurchaseRejectsZeroAmount(t *testing.T) {
	handler := TokenPurchase(&stubWalletService{}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/tokens/purchase", []byte(`{"amount": 0}`), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTokenTipSuccess(t *testing.T) {
	userID := uuid.New()
	toUserID := uuid.New()
	fromAccount := uuid.New()
	toAccount := uuid.New()
	svc := &stubWalletService{entry: &models.TokenTransaction{
		ID:            uuid.New(),
		FromAccountID: &fromAccount,
		ToAccountID:   &toAccount,
		Amount:        25,
		Kind:          enums.TransactionKindTip,
		CreatedAt:     time.Now(),
	}}
	handler := TokenTip(svc, nil)

	body := []byte(`{"to_user_id": "` + toUserID.String() + `", "amount": 25}`)
	req := authedRequest(http.MethodPost, "/api/v1/tokens/tip", body, userID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastTip.FromUserID != userID {
		t.Fatalf("expected sender from context, got %s", svc.lastTip.FromUserID)
	}
	if svc.lastTip.ToUserID != toUserID {
		t.Fatalf("expected recipient %s got %s", toUserID, svc.lastTip.ToUserID)
	}

	var envelope struct {
		Data transactionResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Amount != 25 {
		t.Fatalf("expected amount 25 got %d", envelope.Data.Amount)
	}
	if envelope.Data.Kind != enums.TransactionKindTip {
		t.Fatalf("expected tip kind got %s", envelope.Data.Kind)
	}
}

func TestTokenTipInsufficientBalance(t *testing.T) {
	svc := &stubWalletService{
		err: pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient token balance").
			WithDetails(map[string]any{"required": int64(500), "available": int64(20)}),
	}
	handler := TokenTip(svc, nil)

	body := []byte(`{"to_user_id": "` + uuid.NewString() + `", "amount": 500}`)
	req := authedRequest(http.MethodPost, "/api/v1/tokens/tip", body, uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientBalance) {
		t.Fatalf("expected INSUFFICIENT_BALANCE got %s", envelope.Error.Code)
	}
	if envelope.Error.Details["available"] != float64(20) {
		t.Fatalf("expected available 20 got %v", envelope.Error.Details["available"])
	}
}

func TestTokenBalanceSuccess(t *testing.T) {
	userID := uuid.New()
	handler := TokenBalance(&stubWalletService{balance: 75}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/tokens/balance", nil, userID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data balanceResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Balance != 75 {
		t.Fatalf("expected balance 75 got %d", envelope.Data.Balance)
	}
}

func TestTokenHistorySuccess(t *testing.T) {
	userID := uuid.New()
	svc := &stubWalletService{history: []models.TokenTransaction{
		{ID: uuid.New(), Amount: 100, Kind: enums.TransactionKindPurchase},
		{ID: uuid.New(), Amount: 25, Kind: enums.TransactionKindTip},
	}}
	handler := TokenHistory(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/tokens/history?limit=10", nil, userID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data []transactionResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 entries got %d", len(envelope.Data))
	}
}

func TestTokenHistoryRejectsBadLimit(t *testing.T) {
	handler := TokenHistory(&stubWalletService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/tokens/history?limit=9999", nil, uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
