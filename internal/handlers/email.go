package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"clubhub/internal/logger"
	"clubhub/internal/services"
	helpers "clubhub/internal/utils/helpers"

	"go.uber.org/zap"
)

type EmailHandler struct {
	emailService *services.EmailService
}

func NewEmailHandler(emailService *services.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

type testEmailRequest struct {
	To string `json:"to"`
}

// SendTest godoc
// @Summary Отправить тестовое письмо (только для админа)
// @Description Проверка SMTP-настроек: письмо уходит синхронно, ошибка транспорта возвращается в ответе.
// @Tags email
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body testEmailRequest true "Адрес получателя"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/email/test [post]
func (h *EmailHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.To) == "" {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON или пустой адрес")
		return
	}
	if _, err := mail.ParseAddress(req.To); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный адрес получателя")
		return
	}

	err := h.emailService.Send([]string{req.To}, "Тест почтовых настроек",
		"Если вы читаете это письмо, SMTP настроен верно.")
	if err != nil {
		log.Error("Тестовое письмо не отправлено", zap.String("to", req.To), zap.Error(err))
		helpers.Error(w, http.StatusBadGateway, "Не удалось отправить письмо: "+err.Error())
		return
	}

	log.Info("Тестовое письмо отправлено", zap.String("to", req.To))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Письмо отправлено"})
}
