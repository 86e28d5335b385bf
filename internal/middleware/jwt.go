package middleware

import (
	"context"
	"net/http"
	"strings"

	"clubhub/internal/logger"
	"clubhub/internal/reqctx"
	helpers "clubhub/internal/utils/helpers"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWTAuth проверяет bearer-токен и кладёт user_id и роль в контекст.
// 401 уходит в конверте {data,error}, чтобы клиент отличал его от транспортных ошибок.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")

			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, http.StatusUnauthorized, "Отсутствует access token")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})

			if err != nil || !token.Valid {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен",
					zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "Неверный или просроченный токен")
				return
			}

			userID, ok1 := claims["user_id"].(float64)
			role, ok2 := claims["role"].(string)
			if !ok1 || !ok2 {
				logger.WithCtx(r.Context()).Warn("JWTAuth: недопустимый payload",
					zap.Any("claims", claims))
				helpers.Error(w, http.StatusUnauthorized, "Недопустимый payload")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, int(userID))
			ctx = context.WithValue(ctx, ContextRole, role)
			ctx = reqctx.WithUserID(ctx, int(userID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext достаёт user_id, положенный JWTAuth.
func UserIDFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(ContextUserID).(int)
	return v, ok
}
