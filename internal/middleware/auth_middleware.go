package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"dealership-service/internal/models"
	"dealership-service/pkg/utils"
)

type contextKey string

const (
	staffIDKey contextKey = "staff_id"
	roleKey    contextKey = "role"
)

// AuthMiddleware checks if the request has a valid JWT token and stores the
// staff id and role from its claims in the request context
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "no authorization header provided")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}

				return []byte(jwtSecret), nil
			})

			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			// JSON numbers decode as float64
			staffID, ok := claims["staff_id"].(float64)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: missing staff_id claim")
				return
			}

			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), staffIDKey, int(staffID))
			ctx = context.WithValue(ctx, roleKey, models.Role(role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose token role is not one of roles
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := RoleFromContext(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.RespondWithError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

// StaffIDFromContext returns the authenticated staff id
func StaffIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(staffIDKey).(int)
	return id, ok
}

// RoleFromContext returns the authenticated staff role
func RoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(roleKey).(models.Role)
	return role, ok
}

// WithStaff returns a context carrying staff identity, as AuthMiddleware would set it
func WithStaff(ctx context.Context, staffID int, role models.Role) context.Context {
	ctx = context.WithValue(ctx, staffIDKey, staffID)
	return context.WithValue(ctx, roleKey, role)
}
