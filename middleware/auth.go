package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"adpay-go/utils"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserContextKey contextKey = "user"

// writeError emits the same {success, message} envelope the handlers use on failure.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

type Auth struct {
	tokens *utils.TokenManager
}

func NewAuth(tokens *utils.TokenManager) *Auth {
	return &Auth{tokens: tokens}
}

// JWTAuth resolves the bearer token into claims on the request context.
func (a *Auth) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			log.WithField("path", r.URL.Path).Debug("Malformed Authorization header")
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := a.tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			log.WithFields(log.Fields{"path": r.URL.Path, "error": err}).Debug("Token validation failed")
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserOnly rejects admin tokens on member routes, since they carry no user ID.
func UserOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if claims.Role != utils.RoleUser {
			writeError(w, http.StatusForbidden, "User account required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !claims.IsAdmin() {
			log.WithFields(log.Fields{
				"user_id": claims.UserID,
				"path":    r.URL.Path,
			}).Warn("Non-admin attempted to access admin endpoint")
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func GetUserFromContext(r *http.Request) *utils.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*utils.Claims); ok {
		return claims
	}
	return nil
}
