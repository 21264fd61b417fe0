package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode"
	"unicode/utf8"

	"adpay-go/config"
	"adpay-go/database"
	"adpay-go/middleware"
	"adpay-go/models"
	"adpay-go/services"
	"adpay-go/utils"

	log "github.com/sirupsen/logrus"
)

// Response is the envelope every endpoint answers with. On failure Message
// carries the human readable reason and Error any structured detail.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	svc    *services.Services
	db     Pinger
	config *config.Config
}

func NewHandlers(svc *services.Services, db Pinger, cfg *config.Config) *Handlers {
	return &Handlers{
		svc:    svc,
		db:     db,
		config: cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func respond(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func sendError(w http.ResponseWriter, status int, message string, detail interface{}) {
	writeJSON(w, status, Response{Success: false, Message: message, Error: detail})
}

// errorStatus maps service errors to HTTP statuses. Order matters only for
// errors that wrap more than one sentinel, which none currently do.
var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrAccountInactive, http.StatusForbidden},
	{services.ErrDuplicateIdentity, http.StatusConflict},
	{services.ErrAlreadyActive, http.StatusConflict},
	{services.ErrConcurrentUpdate, http.StatusConflict},
	{services.ErrNotPendingWithdrawal, http.StatusConflict},
	{services.ErrInvalidTier, http.StatusBadRequest},
	{services.ErrInvalidQuantity, http.StatusBadRequest},
	{services.ErrInvalidToken, http.StatusBadRequest},
	{services.ErrTokenTypeMismatch, http.StatusBadRequest},
	{services.ErrInvalidReferralCode, http.StatusBadRequest},
	{services.ErrNoRegistrationToken, http.StatusBadRequest},
	{services.ErrDailyLimitReached, http.StatusBadRequest},
	{services.ErrUnknownAd, http.StatusBadRequest},
	{services.ErrMissingBankDetails, http.StatusBadRequest},
	{services.ErrBelowMinimum, http.StatusBadRequest},
	{services.ErrInsufficientBalance, http.StatusBadRequest},
	{services.ErrOutsidePayoutWindow, http.StatusBadRequest},
}

func statusFor(err error) (int, bool) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}
	return http.StatusInternalServerError, false
}

// handleError turns a service error into an envelope. Unknown errors are
// logged and, outside development, reported without their text.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, known := statusFor(err)
	if known {
		sendError(w, status, capitalize(err.Error()), nil)
		return
	}

	log.WithFields(log.Fields{
		"request_id": middleware.GetRequestID(r),
		"path":       r.URL.Path,
	}).WithError(err).Error(fallback)

	var detail interface{}
	if h.config.IsDevelopment() {
		detail = err.Error()
	}
	sendError(w, status, fallback, detail)
}

// decode reads a JSON body into dst and validates it, writing the 400
// response itself when either step fails.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationError(err))
		return false
	}
	return true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func pageFromQuery(r *http.Request) database.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return database.Page{Page: page, Limit: limit}.Normalize()
}

// boolQuery parses an optional boolean filter; absent or malformed yields nil.
func boolQuery(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

func paginated(items interface{}, total int64, page database.Page) map[string]interface{} {
	pages := (total + int64(page.Limit) - 1) / int64(page.Limit)
	return map[string]interface{}{
		"items": items,
		"pagination": map[string]interface{}{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
			"pages": pages,
		},
	}
}

// logAudit stamps entry with the caller's identity and address and records
// it. Entries that already name an actor keep it.
func (h *Handlers) logAudit(r *http.Request, entry models.AuditLog) {
	entry.IPAddress = middleware.ClientIP(r)
	entry.UserAgent = r.UserAgent()
	if claims := middleware.GetUserFromContext(r); claims != nil && entry.Actor == "" {
		entry.Actor = claims.Email
		if !claims.IsAdmin() {
			id := claims.UserID
			entry.UserID = &id
		}
	}
	if entry.Actor == "" {
		entry.Actor = "anonymous"
	}
	h.svc.Reporting.Audit(r.Context(), &entry)
}

// currentUserID returns the authenticated member's ID. Routes using it sit
// behind middleware.UserOnly, so claims are always present.
func currentUserID(r *http.Request) uint {
	if claims := middleware.GetUserFromContext(r); claims != nil {
		return claims.UserID
	}
	return 0
}
