package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"unitd/internal/units"
)

type contextKeyScope struct{}

var ContextKeyScope = contextKeyScope{}

// GetScope retrieves the caller's owner scope from the context. Anonymous
// requests carry the global scope.
func GetScope(ctx context.Context) units.Scope {
	scope, ok := ctx.Value(ContextKeyScope).(units.Scope)
	if !ok {
		return units.GlobalScope()
	}
	return scope
}

type scopeClaims struct {
	jwt.RegisteredClaims
	Key        string `json:"key,omitempty"`
	Privileged bool   `json:"privileged,omitempty"`
}

// ScopeAuth derives the owner scope for custom definitions from an optional
// bearer token. Anonymous callers proceed with the global scope; a present
// but invalid token is rejected. The optional "key" query parameter narrows
// a user scope to a categorization key.
func ScopeAuth(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims := &scopeClaims{}
			_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(signingKey), nil
			})
			if err != nil || claims.Subject == "" {
				logger.WarnContext(r.Context(), "rejected invalid bearer token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			key := claims.Key
			if q := r.URL.Query().Get("key"); q != "" {
				key = q
			}
			scope := units.UserScope(claims.Subject)
			if key != "" {
				scope = units.UserKeyedScope(claims.Subject, key)
			}
			scope.Privileged = claims.Privileged

			ctx := context.WithValue(r.Context(), ContextKeyScope, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
