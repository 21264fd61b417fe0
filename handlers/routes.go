package handlers

import (
	"net/http"

	"adpay-go/metrics"
	"adpay-go/middleware"

	"github.com/gorilla/mux"
)

// Handler builds the complete HTTP stack: the API and /metrics on a mux
// router behind request logging, metrics and rate limiting. CORS and client
// address resolution wrap the router from outside, since mux skips router
// middleware for requests no route accepts, such as OPTIONS preflights.
// limiter may be nil.
func (h *Handlers) Handler(auth *middleware.Auth, limiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging, middleware.Metrics)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	h.Routes(r, auth)

	return middleware.RealIP(h.config.TrustProxy)(middleware.CORS(h.config.CORSOrigin)(r))
}

// Routes mounts the API under /api on r.
func (h *Handlers) Routes(r *mux.Router, auth *middleware.Auth) {
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/admin/login", h.AdminLogin).Methods(http.MethodPost)

	// Member routes
	member := api.NewRoute().Subrouter()
	member.Use(auth.JWTAuth, middleware.UserOnly)
	member.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	member.HandleFunc("/users/bank-details", h.UpdateBankDetails).Methods(http.MethodPut)
	member.HandleFunc("/users/transactions", h.GetTransactions).Methods(http.MethodGet)
	member.HandleFunc("/users/referrals", h.GetReferrals).Methods(http.MethodGet)
	member.HandleFunc("/ads/load", h.LoadAd).Methods(http.MethodGet, http.MethodPost)
	member.HandleFunc("/ads/complete", h.CompleteAd).Methods(http.MethodPost)
	member.HandleFunc("/withdrawals/request", h.RequestWithdrawal).Methods(http.MethodPost)
	member.HandleFunc("/withdrawals/history", h.WithdrawalHistory).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.JWTAuth, middleware.AdminAuth)
	admin.HandleFunc("/tokens/generate", h.GenerateTokens).Methods(http.MethodPost)
	admin.HandleFunc("/tokens", h.GetTokens).Methods(http.MethodGet)
	admin.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/pending", h.GetPendingUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}/activate", h.ActivateUser).Methods(http.MethodPut)
	admin.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/withdrawals", h.GetWithdrawals).Methods(http.MethodGet)
	admin.HandleFunc("/withdrawals/{id:[0-9]+}/complete", h.CompleteWithdrawal).Methods(http.MethodPut)
	admin.HandleFunc("/withdrawals/{id:[0-9]+}/reject", h.RejectWithdrawal).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", h.GetAuditLogs).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendError(w, http.StatusNotFound, "Route not found", nil)
	})
}
