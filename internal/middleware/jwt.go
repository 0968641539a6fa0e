package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crucial707/makerspace-access/internal/models"
)

type key string

const (
	UserIDKey   key = "user_id"
	UserRoleKey key = "user_role"
	TokenIDKey  key = "jti"
)

// TokenChecker reports whether a token id has been revoked. Satisfied by
// repo.TokenBlocklistRepo.
type TokenChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTMiddleware validates the bearer token, rejects revoked tokens, and puts
// the caller's user id, role and token id on the request context.
func JWTMiddleware(secret []byte, blocklist TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			userID, _ := claims["user_id"].(string)
			role, _ := claims["role"].(string)
			jti, _ := claims["jti"].(string)
			if userID == "" || jti == "" {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			if blocklist != nil {
				revoked, err := blocklist.IsRevoked(r.Context(), jti)
				if err != nil {
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				if revoked {
					http.Error(w, "token has been revoked", http.StatusUnauthorized)
					return
				}
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, models.UserRole(role))
			ctx = context.WithValue(ctx, TokenIDKey, jti)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated caller's
// role is on the allow list. Run after JWTMiddleware.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(UserRoleKey).(models.UserRole)
			if _, ok := allowed[role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the authenticated caller's user id from the context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// TokenID returns the jti claim of the presented token.
func TokenID(ctx context.Context) string {
	jti, _ := ctx.Value(TokenIDKey).(string)
	return jti
}
