package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"adpay-go/database"
	"adpay-go/models"

	"github.com/gorilla/mux"
)

func idFromPath(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		sendError(w, http.StatusBadRequest, "Invalid ID", nil)
		return 0, false
	}
	return uint(id), true
}

func (h *Handlers) GenerateTokens(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTokensRequest
	if !decode(w, r, &req) {
		return
	}

	tokens, err := h.svc.Tokens.Generate(r.Context(), req.UserType, req.Quantity)
	if err != nil {
		h.handleError(w, r, err, "Failed to generate tokens")
		return
	}

	h.logAudit(r, models.AuditLog{
		Action:   "generate_tokens",
		Resource: "token",
		Details:  fmt.Sprintf("Generated %d %s tokens", len(tokens), req.UserType),
	})

	respond(w, http.StatusCreated, fmt.Sprintf("%d %s tokens generated successfully", len(tokens), req.UserType),
		map[string]interface{}{"tokens": tokens})
}

// GetTokens lists tokens. ?used=true|false filters by consumption.
func (h *Handlers) GetTokens(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	tokens, total, err := h.svc.Tokens.List(r.Context(), boolQuery(r, "used"), page)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch tokens")
		return
	}
	respond(w, http.StatusOK, "", paginated(tokens, total, page))
}

// GetUsers lists accounts. ?active= and ?userType= narrow the result.
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.svc.Reporting.Users(r.Context(), database.UserFilter{
		Active:   boolQuery(r, "active"),
		UserType: r.URL.Query().Get("userType"),
		Page:     page,
	})
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch users")
		return
	}
	respond(w, http.StatusOK, "", paginated(users, total, page))
}

func (h *Handlers) GetPendingUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.svc.Reporting.PendingUsers(r.Context(), page)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch pending users")
		return
	}
	respond(w, http.StatusOK, "", paginated(users, total, page))
}

func (h *Handlers) ActivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Registration.Activate(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "Failed to activate user")
		return
	}

	details := "Activated " + res.User.Email
	if res.ReferrerID != nil {
		details += fmt.Sprintf(", paid referral bonus %d to user %d", res.ReferralBonus, *res.ReferrerID)
	}
	h.logAudit(r, models.AuditLog{
		Action:     "activate_user",
		Resource:   "user",
		ResourceID: strconv.FormatUint(uint64(id), 10),
		Details:    details,
	})

	respond(w, http.StatusOK, "User activated successfully", res)
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reporting.Dashboard(r.Context())
	if err != nil {
		h.handleError(w, r, err, "Failed to load dashboard")
		return
	}
	respond(w, http.StatusOK, "", stats)
}

// GetWithdrawals lists withdrawals for review. ?status= narrows the result.
func (h *Handlers) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	txns, total, err := h.svc.Withdrawals.List(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch withdrawals")
		return
	}
	respond(w, http.StatusOK, "", paginated(txns, total, page))
}

func (h *Handlers) CompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	txn, err := h.svc.Withdrawals.Complete(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "Failed to complete withdrawal")
		return
	}

	h.logAudit(r, models.AuditLog{
		Action:     "complete_withdrawal",
		Resource:   "transaction",
		ResourceID: txn.Reference,
		Details:    fmt.Sprintf("Paid out %d to user %d", txn.Amount, txn.UserID),
	})
	respond(w, http.StatusOK, "Withdrawal marked as completed", txn)
}

func (h *Handlers) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}
	var req models.RejectWithdrawalRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	txn, err := h.svc.Withdrawals.Reject(r.Context(), id, req.Reason)
	if err != nil {
		h.handleError(w, r, err, "Failed to reject withdrawal")
		return
	}

	h.logAudit(r, models.AuditLog{
		Action:     "reject_withdrawal",
		Resource:   "transaction",
		ResourceID: txn.Reference,
		Details:    fmt.Sprintf("Refunded %d to user %d: %s", txn.Amount, txn.UserID, req.Reason),
	})
	respond(w, http.StatusOK, "Withdrawal rejected and refunded", txn)
}

func (h *Handlers) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	logs, total, err := h.svc.Reporting.AuditLogs(r.Context(), page)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch audit logs")
		return
	}
	respond(w, http.StatusOK, "", paginated(logs, total, page))
}
