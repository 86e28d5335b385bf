package handlers

import (
	"encoding/json"
	"net/http"

	"clubhub/internal/logger"
	"clubhub/internal/services"
	helpers "clubhub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SettingHandler struct {
	settingService *services.SettingService
}

func NewSettingHandler(settingService *services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

type updateSettingRequest struct {
	Value string `json:"value"`
}

// GetSettings godoc
// @Summary Все настройки клуба
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/settings [get]
func (h *SettingHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	settings, err := h.settingService.GetAll(r.Context())
	if err != nil {
		log.Error("Ошибка получения настроек", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения настроек")
		return
	}

	helpers.JSON(w, http.StatusOK, settings)
}

// GetSetting godoc
// @Summary Настройка по ключу
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Param key path string true "Ключ настройки"
// @Success 200 {object} models.Setting
// @Failure 404 {object} map[string]string
// @Router /api/settings/{key} [get]
func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	key := mux.Vars(r)["key"]

	setting, err := h.settingService.Get(r.Context(), key)
	if err != nil {
		log.Warn("Настройка не найдена", zap.String("key", key))
		helpers.Error(w, http.StatusNotFound, "Настройка не найдена")
		return
	}

	helpers.JSON(w, http.StatusOK, setting)
}

// UpdateSettings godoc
// @Summary Массовое обновление настроек (только для админа)
// @Description Принимает плоскую карту key → value, каждая пара upsert-ится.
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body map[string]string true "Настройки"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/settings [put]
func (h *SettingHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		log.Warn("Невалидный JSON в UpdateSettings", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if len(values) == 0 {
		helpers.Error(w, http.StatusBadRequest, "Пустой набор настроек")
		return
	}

	if err := h.settingService.SetMany(r.Context(), values); err != nil {
		log.Error("Ошибка сохранения настроек", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка сохранения настроек")
		return
	}

	log.Info("Настройки обновлены", zap.Int("count", len(values)))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Настройки сохранены"})
}

// UpdateSetting godoc
// @Summary Обновить одну настройку (только для админа)
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param key path string true "Ключ настройки"
// @Param input body updateSettingRequest true "Новое значение"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/settings/{key} [put]
func (h *SettingHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	key := mux.Vars(r)["key"]

	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON в UpdateSetting", zap.String("key", key), zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if err := h.settingService.Set(r.Context(), key, req.Value); err != nil {
		log.Error("Ошибка сохранения настройки", zap.String("key", key), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка сохранения настройки")
		return
	}

	log.Info("Настройка обновлена", zap.String("key", key))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Настройка сохранена"})
}
