// Package middlewarectx содержит HTTP middleware шлюза: проверку JWT токена,
// проверку уровня доступа к контенту и ограничение частоты запросов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization и кладёт в контекст uid аккаунта, email и роль.
// Запрос без валидного токена не доходит до проверки уровня доступа.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	jwtlib "github.com/magabrotheeeer/video-access-gateway/internal/lib/jwt"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// AccountUID — ключ для uid аккаунта в контексте
	AccountUID Key = "account_uid"
	// AccountEmail — ключ для email аккаунта в контексте
	AccountEmail Key = "account_email"
	// AccountRole — ключ для роли аккаунта в контексте
	AccountRole Key = "account_role"
)

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Отсутствующий, просроченный, подделанный и структурно некорректный токены
// неразличимы снаружи: все они дают 401 Unauthorized.
func JWTMiddleware(jwtMaker jwtlib.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid token"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := jwtMaker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid token"))
				return
			}
			ctx := context.WithValue(r.Context(), AccountUID, claims.Subject)
			ctx = context.WithValue(ctx, AccountEmail, claims.Email)
			ctx = context.WithValue(ctx, AccountRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
