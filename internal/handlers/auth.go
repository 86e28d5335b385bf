package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"clubhub/internal/logger"
	"clubhub/internal/models"
	"clubhub/internal/services"
	helpers "clubhub/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type sendLoginLinkRequest struct {
	Email string `json:"email"`
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

type validateTokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// SendLoginLink godoc
// @Summary Отправить ссылку для входа на почту
// @Description Ответ всегда одинаковый, даже если e-mail не зарегистрирован.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body sendLoginLinkRequest true "Email участника"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/auth/send-login-link [post]
func (h *AuthHandler) SendLoginLink(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req sendLoginLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		log.Warn("Невалидный payload в SendLoginLink")
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON или пустой email")
		return
	}

	// Не раскрываем, существует ли email — всегда отвечаем 200
	if err := h.authService.SendLoginLink(r.Context(), req.Email); err != nil {
		log.Error("Сбой при запросе ссылки для входа", zap.String("email_masked", maskEmail(req.Email)), zap.Error(err))
	} else {
		log.Info("Запрошена ссылка для входа", zap.String("email_masked", maskEmail(req.Email)))
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ValidateToken godoc
// @Summary Обменять одноразовый токен на access-токен
// @Description Токен из письма гасится при первом успешном обмене.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body validateTokenRequest true "Токен из письма"
// @Success 200 {object} validateTokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/validate-token [post]
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req validateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		log.Warn("Невалидный payload в ValidateToken")
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON или пустой токен")
		return
	}

	accessToken, user, err := h.authService.ValidateToken(r.Context(), req.Token)
	if err != nil {
		log.Warn("Не удалось обменять токен входа", zap.Error(err))
		switch {
		case errors.Is(err, services.ErrTokenNotFound),
			errors.Is(err, services.ErrTokenExpired),
			errors.Is(err, services.ErrTokenAlreadyUsed),
			errors.Is(err, services.ErrUserNotFound):
			helpers.Error(w, http.StatusUnauthorized, err.Error())
		default:
			helpers.Error(w, http.StatusInternalServerError, "Внутренняя ошибка сервиса")
		}
		return
	}

	log.Info("Токен входа обменян", zap.Int("user_id", user.ID))
	helpers.JSON(w, http.StatusOK, validateTokenResponse{
		AccessToken: accessToken,
		User:        user,
	})
}

// maskEmail прячет локальную часть адреса в логах.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
