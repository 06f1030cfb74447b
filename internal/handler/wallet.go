package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/campuswallet/registration/internal/auth"
	"github.com/campuswallet/registration/internal/domain"
)

type walletReader interface {
	GetByStudent(ctx context.Context, studentID uuid.UUID) (*domain.WalletAccount, error)
}

type WalletHandler struct {
	wallets walletReader
}

func NewWalletHandler(wallets walletReader) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

type walletResponse struct {
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
	Currency       string `json:"currency"`
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.StudentIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	wallet, err := h.wallets.GetByStudent(r.Context(), studentID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, walletResponse{
		Balance:        wallet.Balance,
		BalanceDisplay: domain.FormatAmount(wallet.Balance),
		Currency:       string(wallet.Currency),
	})
}
