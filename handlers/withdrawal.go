package handlers

import (
	"fmt"
	"net/http"

	"adpay-go/models"
)

func (h *Handlers) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req models.WithdrawalRequest
	if !decode(w, r, &req) {
		return
	}

	txn, err := h.svc.Withdrawals.Request(r.Context(), currentUserID(r), req.Amount)
	if err != nil {
		h.handleError(w, r, err, "Withdrawal request failed")
		return
	}

	h.logAudit(r, models.AuditLog{
		Action:     "request_withdrawal",
		Resource:   "transaction",
		ResourceID: txn.Reference,
		Details:    fmt.Sprintf("Requested withdrawal of %d", txn.Amount),
	})

	respond(w, http.StatusCreated, "Withdrawal request submitted successfully", map[string]interface{}{
		"withdrawal": txn,
		"reference":  txn.Reference,
	})
}

func (h *Handlers) WithdrawalHistory(w http.ResponseWriter, r *http.Request) {
	txns, err := h.svc.Withdrawals.History(r.Context(), currentUserID(r))
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch withdrawal history")
		return
	}
	respond(w, http.StatusOK, "", map[string]interface{}{"withdrawals": txns})
}
