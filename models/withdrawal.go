package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
)

type Withdrawal struct {
	ID            string           `json:"id"`
	Amount        decimal.Decimal  `json:"amount"`
	BankName      string           `json:"bankName"`
	AccountNumber string           `json:"accountNumber"`
	Status        WithdrawalStatus `json:"status"`
	RequestDate   Timestamp        `json:"requestDate"`
}

type WithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	BankName      string          `json:"bankName"`
	AccountNumber string          `json:"accountNumber"`
}

func (r WithdrawalRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	if strings.TrimSpace(r.BankName) == "" {
		return invalid("bankName", "is required")
	}
	acc := strings.TrimSpace(r.AccountNumber)
	if acc == "" {
		return invalid("accountNumber", "is required")
	}
	for _, c := range acc {
		if c < '0' || c > '9' {
			return invalid("accountNumber", "must contain digits only")
		}
	}
	return nil
}
