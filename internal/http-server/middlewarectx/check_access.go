package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/access"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// AccountProvider отдаёт актуальное состояние аккаунта по uid.
// Подписка могла измениться после выпуска токена, поэтому решение
// о доступе принимается по данным из базы, а не по claims.
type AccountProvider interface {
	Me(ctx context.Context, accountUID string) (*models.Account, error)
}

// RequireTier возвращает middleware, пускающий дальше только аккаунты,
// которым открыт контент уровня tier. Запускается строго после
// JWTMiddleware: без резолвнутой идентичности запрос сюда не попадает.
func RequireTier(tier access.Tier, accounts AccountProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireTier"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			accountUID, ok := r.Context().Value(AccountUID).(string)
			if !ok || accountUID == "" {
				log.Error("account identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid token"))
				return
			}

			acc, err := accounts.Me(r.Context(), accountUID)
			if err != nil {
				log.Error("failed to load account", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid token"))
				return
			}

			if !access.CanAccess(acc, tier, time.Now()) {
				log.Info("tier access denied",
					slog.String("account_uid", accountUID),
					slog.String("tier", string(tier)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("you do not have access to this content"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
