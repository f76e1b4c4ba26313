package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecimalEncodesAsNumber(t *testing.T) {
	req := WithdrawalRequest{Amount: decimal.RequireFromString("1250.50"), BankName: "BCA", AccountNumber: "123"}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"amount":1250.5`) {
		t.Errorf("expected amount as a JSON number, got %s", body)
	}
}
