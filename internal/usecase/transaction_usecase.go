package usecase

import (
	"context"
	"strings"

	"i4e-backend/internal/domain/transaction"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/repository"
)

type TransactionUsecase interface {
	ListForUser(ctx context.Context, userID int64, status string) ([]transaction.Transaction, error)
}

type Transactions struct {
	repo repository.TransactionRepository
	log  *logger.Logger
}

func NewTransactionUsecase(repo repository.TransactionRepository, log *logger.Logger) *Transactions {
	return &Transactions{repo: repo, log: log.With("usecase", "transaction")}
}

// ListForUser returns the user's transactions, newest first. An empty
// status lists every status.
func (u *Transactions) ListForUser(ctx context.Context, userID int64, status string) ([]transaction.Transaction, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if userID <= 0 || (status != "" && !transaction.ValidStatus(status)) {
		return nil, ErrInvalidInput
	}
	items, err := u.repo.List(ctx, repository.TransactionFilter{UserID: userID, Status: status})
	if err != nil {
		u.log.Error("transaction list failed", "user_id", userID, "err", err)
		return nil, ErrInternal
	}
	if items == nil {
		items = []transaction.Transaction{}
	}
	return items, nil
}
