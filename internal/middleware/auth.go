package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const userContextKey contextKey = "user"

// User is the authenticated caller extracted from a bearer token.
type User struct {
	ID    uuid.UUID
	Role  string
	Token string // raw token, forwarded on cross-service calls
}

// IsAdmin reports whether the caller has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}

// UserFromContext returns the authenticated user stored by JWTAuth.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}

// ContextWithUser stores a user in the context. Exposed for tests.
func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

type userClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token and returns the caller it identifies.
// Shared by the HTTP middleware and the WebSocket upgrade path, which carries
// the token in a query parameter instead of a header.
func ParseToken(secret, raw string) (User, error) {
	claims := &userClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return User{}, err
	}
	if !token.Valid {
		return User{}, jwt.ErrTokenUnverifiable
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return User{}, fmt.Errorf("token subject is not a user ID: %w", err)
	}

	return User{ID: userID, Role: claims.Role, Token: raw}, nil
}

// JWTAuth validates the Authorization bearer token (HS256) and stores the
// caller in the request context. Token issuance belongs to the user service;
// this middleware only verifies.
func JWTAuth(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				unauthorised(w, "Not authorized, no token provided.")
				return
			}

			user, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				unauthorised(w, "Not authorized, token invalid or expired.")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects non-admin callers. Must run after JWTAuth.
func RequireAdmin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsAdmin() {
				logger.Warn().Str("path", r.URL.Path).Msg("admin access denied")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "FORBIDDEN", "message": "Admin access required."}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// InternalAuth validates the X-Internal-API-Key header on service-to-service
// endpoints.
func InternalAuth(apiKey string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Internal-API-Key")
			if provided == "" || provided != apiKey {
				logger.Warn().Str("path", r.URL.Path).Msg("invalid internal API key")
				unauthorised(w, "Not authorized for internal endpoint.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorised(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "UNAUTHORIZED", "message": "` + message + `"}`))
}
