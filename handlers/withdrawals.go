package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/utils"
)

// MyWithdrawals lists the caller's requests newest first. page is one-based.
func (b *Backend) MyWithdrawals(w http.ResponseWriter, r *http.Request) {
	pageNo := utils.QueryInt(r, "page", 1)
	if pageNo < 1 {
		pageNo = 1
	}
	limit := min(utils.QueryInt(r, "limit", defaultPageSize), maxPageSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	var mine []models.Withdrawal
	for _, wd := range b.withdrawals {
		if wd.sellerID == acc.sellerID {
			mine = append(mine, wd.Withdrawal)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].RequestDate.After(mine[j].RequestDate.Time) })

	utils.RespondData(w, http.StatusOK, page(mine, pageNo-1, limit))
}

func (b *Backend) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var in models.WithdrawalRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := in.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	if in.Amount.GreaterThan(b.balance(acc.sellerID)) {
		utils.RespondError(w, http.StatusBadRequest, "Insufficient balance")
		return
	}

	wd := &withdrawal{
		Withdrawal: models.Withdrawal{
			ID:            newID(),
			Amount:        in.Amount,
			BankName:      in.BankName,
			AccountNumber: in.AccountNumber,
			Status:        models.WithdrawalPending,
			RequestDate:   models.Timestamp{Time: time.Now().UTC()},
		},
		sellerID: acc.sellerID,
	}
	b.withdrawals = append(b.withdrawals, wd)
	utils.RespondData(w, http.StatusCreated, wd.Withdrawal)
}

// balance is completed order revenue minus withdrawals not rejected.
func (b *Backend) balance(sellerID string) decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.orders {
		if o.sellerID == sellerID && o.Status == models.OrderCompleted {
			total = total.Add(o.TotalAmount)
		}
	}
	for _, wd := range b.withdrawals {
		if wd.sellerID == sellerID && wd.Status != models.WithdrawalRejected {
			total = total.Sub(wd.Amount)
		}
	}
	return total
}
