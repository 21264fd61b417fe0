package handlers

import (
	"net/http"

	"adpay-go/models"
)

func (h *Handlers) UpdateBankDetails(w http.ResponseWriter, r *http.Request) {
	var req models.BankDetailsRequest
	if !decode(w, r, &req) {
		return
	}

	bank, err := h.svc.Accounts.UpdateBankDetails(r.Context(), currentUserID(r), req)
	if err != nil {
		h.handleError(w, r, err, "Failed to update bank details")
		return
	}

	h.logAudit(r, models.AuditLog{
		Action:   "update_bank_details",
		Resource: "user",
		Details:  "Bank account " + bank.Masked() + " at " + bank.BankName,
	})

	respond(w, http.StatusOK, "Bank details updated successfully", map[string]interface{}{
		"bankDetails": bank,
	})
}

func (h *Handlers) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.svc.Accounts.Transactions(r.Context(), currentUserID(r))
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch transactions")
		return
	}
	respond(w, http.StatusOK, "", map[string]interface{}{"transactions": txns})
}

func (h *Handlers) GetReferrals(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Accounts.Referrals(r.Context(), currentUserID(r))
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch referrals")
		return
	}
	respond(w, http.StatusOK, "", stats)
}
