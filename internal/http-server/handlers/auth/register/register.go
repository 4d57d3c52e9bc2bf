// Package register реализует HTTP-обработчик регистрации аккаунтов.
//
// Выполняется декодирование JSON, валидация полей (включая парольную
// политику) и делегирование операции сервису аутентификации. Хеш пароля
// во внешний ответ никогда не попадает.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-access-gateway/internal/http-server/response"
	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
	authservice "github.com/magabrotheeeer/video-access-gateway/internal/services/auth"
)

// Request — входные данные для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, name, email, rawPassword string) (*models.Account, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler и регистрирует валидатор
// парольной политики.
func New(log *slog.Logger, auth Service) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("password_policy", validPassword)
	return &Handler{
		log:      log,
		auth:     auth,
		validate: v,
	}
}

// validPassword проверяет парольную политику: не меньше 8 символов,
// хотя бы одна заглавная и строчная буквы, цифра и символ.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// ServeHTTP godoc
// @Summary Регистрация аккаунта
// @Description Создаёт аккаунт с ролью user и подпиской free.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового аккаунта"
// @Success 201 {object} response.Response "Аккаунт создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	acc, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrEmailTaken) {
			log.Info("email already registered", slog.String("email", req.Email))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("email already registered"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register account"))
		return
	}

	log.Info("account registered", slog.String("account_uid", acc.UID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": acc.View(),
	}))
}
