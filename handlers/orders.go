package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// MyOrders lists the caller's orders newest first. page is zero-based.
func (b *Backend) MyOrders(w http.ResponseWriter, r *http.Request) {
	pageNo := utils.QueryInt(r, "page", 0)
	size := min(utils.QueryInt(r, "size", defaultPageSize), maxPageSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	all := b.sellerOrders(acc.sellerID)
	out := make([]models.Order, 0, size)
	for _, o := range page(all, pageNo, size) {
		out = append(out, o.Order)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"data":          out,
		"page":          pageNo,
		"size":          size,
		"totalElements": len(all),
	})
}

// transitions lists, per action, the statuses an order may move from.
var transitions = map[string]struct {
	to   models.OrderStatus
	from []models.OrderStatus
}{
	"accept":   {models.OrderAccepted, []models.OrderStatus{models.OrderPending, models.OrderPaid}},
	"ready":    {models.OrderReadyForPickup, []models.OrderStatus{models.OrderAccepted, models.OrderPreparing}},
	"cancel":   {models.OrderCancelled, []models.OrderStatus{models.OrderPending, models.OrderPaid, models.OrderAccepted, models.OrderPreparing}},
	"complete": {models.OrderCompleted, []models.OrderStatus{models.OrderReadyForPickup}},
}

func (b *Backend) OrderAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	action := vars["action"]
	t, known := transitions[action]
	if !known {
		utils.RespondError(w, http.StatusNotFound, "unknown order action")
		return
	}

	var body struct {
		VerificationCode string `json:"verificationCode"`
	}
	if action == "complete" {
		if err := utils.DecodeJSON(r, &body); err != nil || strings.TrimSpace(body.VerificationCode) == "" {
			utils.RespondError(w, http.StatusBadRequest, "Verification code is required")
			return
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	o, found := b.orders[vars["id"]]
	if !found || o.sellerID != acc.sellerID {
		utils.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if !allowed(o.Status, t.from) {
		utils.RespondError(w, http.StatusConflict, "Cannot "+action+" an order that is "+string(o.Status))
		return
	}
	if action == "complete" && strings.TrimSpace(body.VerificationCode) != o.verificationCode {
		utils.RespondError(w, http.StatusBadRequest, "Invalid verification code")
		return
	}

	b.log.WithField("order_id", o.OrderID).WithField("from", o.Status).WithField("to", t.to).Info("order status changed")
	o.Status = t.to
	if t.to == models.OrderCancelled && o.Payment.Status == "PAID" {
		o.Payment.Status = "REFUNDED"
	}
	utils.RespondData(w, http.StatusOK, o.Order)
}

func allowed(s models.OrderStatus, from []models.OrderStatus) bool {
	for _, f := range from {
		if s == f {
			return true
		}
	}
	return false
}
