package handlers

import (
	"net/http"
	"strconv"

	"adpay-go/middleware"
	"adpay-go/models"

	log "github.com/sirupsen/logrus"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Registration.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err, "Registration failed. Please try again.")
		return
	}

	userID := res.User.ID
	h.logAudit(r, models.AuditLog{
		UserID:     &userID,
		Actor:      res.User.Email,
		Action:     "register",
		Resource:   "user",
		ResourceID: strconv.FormatUint(uint64(userID), 10),
		Details:    "Registered as " + res.User.UserType + " with token " + req.TokenCode,
	})

	respond(w, http.StatusCreated, "Registration successful. Please make payment to activate your account.", res)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, r, err, "Login failed. Please try again.")
		return
	}

	userID := session.User.ID
	h.logAudit(r, models.AuditLog{
		UserID:     &userID,
		Actor:      session.User.Email,
		Action:     "login",
		Resource:   "auth",
		ResourceID: strconv.FormatUint(uint64(userID), 10),
	})

	respond(w, http.StatusOK, "Login successful", session)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Auth.Me(r.Context(), currentUserID(r))
	if err != nil {
		h.handleError(w, r, err, "Failed to load profile")
		return
	}
	respond(w, http.StatusOK, "", profile)
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.svc.Auth.AdminLogin(req.Email, req.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email":      req.Email,
			"request_id": middleware.GetRequestID(r),
		}).Warn("Failed admin login attempt")
		h.handleError(w, r, err, "Admin login failed")
		return
	}

	h.logAudit(r, models.AuditLog{
		Actor:    req.Email,
		Action:   "admin_login",
		Resource: "auth",
	})

	respond(w, http.StatusOK, "Admin login successful", session)
}
