package middleware

import (
	"errors"
	"net/http"
	"strings"

	"wikihub/internal/logger"
	"wikihub/internal/reqctx"
	"wikihub/internal/services"
	"wikihub/internal/utils"
	"wikihub/internal/utils/helpers"

	"go.uber.org/zap"
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func userFromClaims(c *utils.Claims) reqctx.User {
	return reqctx.User{ID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}

// JWTAuth требует валидный access-токен.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			tokenString := bearerToken(r)
			if tokenString == "" {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.FromError(w, services.ErrTokenRequired)
				return
			}

			claims, err := utils.ParseToken(secret, tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
				if errors.Is(err, utils.ErrTokenExpired) {
					helpers.FromError(w, services.ErrTokenExpired)
				} else {
					helpers.FromError(w, services.ErrTokenInvalid)
				}
				return
			}

			ctx := reqctx.WithUser(r.Context(), userFromClaims(claims))
			logger.WithCtx(ctx).Debug("JWTAuth: токен валиден", zap.String("role", claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth добавляет пользователя в контекст, если токен валиден, и не мешает анонимам.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := bearerToken(r); tokenString != "" {
				if claims, err := utils.ParseToken(secret, tokenString); err == nil {
					r = r.WithContext(reqctx.WithUser(r.Context(), userFromClaims(claims)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
