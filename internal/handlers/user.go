package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clubhub/internal/logger"
	"clubhub/internal/models"
	"clubhub/internal/services"
	helpers "clubhub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// GetUsers godoc
// @Summary Список всех участников клуба
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} map[string]string
// @Router /api/users [get]
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		log.Error("Ошибка получения участников", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения участников")
		return
	}

	log.Info("Участники получены", zap.Int("count", len(users)))
	helpers.JSON(w, http.StatusOK, users)
}

// GetAssignableUsers godoc
// @Summary Участники, доступные для назначения дежурств
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} map[string]string
// @Router /api/users/assignable [get]
func (h *UserHandler) GetAssignableUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	users, err := h.userService.GetAssignableUsers(r.Context())
	if err != nil {
		log.Error("Ошибка получения назначаемых участников", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения участников")
		return
	}

	helpers.JSON(w, http.StatusOK, users)
}

// GetUser godoc
// @Summary Получить участника по ID
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID участника"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), id)
	if err != nil {
		log.Warn("Участник не найден", zap.Int("user_id", id))
		helpers.Error(w, http.StatusNotFound, "Участник не найден")
		return
	}

	helpers.JSON(w, http.StatusOK, user)
}

// CreateUser godoc
// @Summary Создать участника (только для админа)
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body createUserRequest true "Данные участника"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string
// @Router /api/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON в CreateUser", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	}

	if err := h.userService.CreateUser(r.Context(), user); err != nil {
		log.Warn("Ошибка создания участника", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info("Участник создан", zap.Int("user_id", user.ID))
	helpers.JSON(w, http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Обновить участника (только для админа)
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID участника"
// @Param input body models.UpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON в UpdateUser", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if err := h.userService.UpdateUser(r.Context(), id, &req); err != nil {
		log.Error("Ошибка обновления участника", zap.Int("user_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка обновления участника")
		return
	}

	log.Info("Участник обновлён", zap.Int("user_id", id))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Участник обновлён"})
}

// DeleteUser godoc
// @Summary Удалить участника (только для админа)
// @Tags users
// @Security ApiKeyAuth
// @Param id path int true "ID участника"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	if _, err := h.userService.GetUserByID(r.Context(), id); err != nil {
		helpers.Error(w, http.StatusNotFound, "Участник не найден")
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		log.Error("Ошибка удаления участника", zap.Int("user_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка удаления участника")
		return
	}

	log.Info("Участник удалён", zap.Int("user_id", id))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Участник удалён"})
}
