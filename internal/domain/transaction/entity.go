package transaction

import "time"

const (
	StatusSuccess = "success"
	StatusPending = "pending"
	StatusFailed  = "failed"
)

type Transaction struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"userId"`
	Status          string    `json:"status"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	TransactionDate time.Time `json:"transactionDate"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusSuccess, StatusPending, StatusFailed:
		return true
	}
	return false
}
