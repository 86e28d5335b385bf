package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"clubhub/internal/logger"
	"clubhub/internal/models"
	"clubhub/internal/services"
	helpers "clubhub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
}

func NewScheduleHandler(scheduleService *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type createScheduleRequest struct {
	Title       string                    `json:"title"`
	Assignments []createAssignmentRequest `json:"assignments"`
}

type createAssignmentRequest struct {
	DanceDate string `json:"dance_date"` // YYYY-MM-DD
	Duty      string `json:"duty"`
	UserID    *int   `json:"user_id,omitempty"`
}

// GetCurrent godoc
// @Summary Текущее расписание дежурств
// @Tags schedules
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.Schedule
// @Failure 404 {object} map[string]string
// @Router /api/schedules/current [get]
func (h *ScheduleHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	sched, err := h.scheduleService.Current(r.Context())
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Текущее расписание не найдено")
		return
	}
	helpers.JSON(w, http.StatusOK, sched)
}

// GetNext godoc
// @Summary Следующее расписание дежурств
// @Tags schedules
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.Schedule
// @Failure 404 {object} map[string]string
// @Router /api/schedules/next [get]
func (h *ScheduleHandler) GetNext(w http.ResponseWriter, r *http.Request) {
	sched, err := h.scheduleService.Next(r.Context())
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Следующее расписание не найдено")
		return
	}
	helpers.JSON(w, http.StatusOK, sched)
}

// CreateNext godoc
// @Summary Создать следующее расписание (только для админа)
// @Description Одновременно может существовать только одно расписание со статусом next.
// @Tags schedules
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body createScheduleRequest true "Название и слоты дежурств"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/schedules/next [post]
func (h *ScheduleHandler) CreateNext(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON в CreateNext", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	sched := &models.Schedule{
		Status: models.ScheduleNext,
		Title:  req.Title,
	}
	for _, a := range req.Assignments {
		date, err := time.Parse("2006-01-02", a.DanceDate)
		if err != nil {
			helpers.Error(w, http.StatusBadRequest, "Невалидная дата: "+a.DanceDate)
			return
		}
		sched.Assignments = append(sched.Assignments, models.Assignment{
			DanceDate: date,
			Duty:      a.Duty,
			UserID:    a.UserID,
		})
	}

	if err := h.scheduleService.CreateNext(r.Context(), sched); err != nil {
		if errors.Is(err, services.ErrNextExists) {
			helpers.Error(w, http.StatusConflict, err.Error())
			return
		}
		log.Warn("Ошибка создания расписания", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info("Создано следующее расписание", zap.Int("schedule_id", sched.ID), zap.String("title", sched.Title))
	helpers.JSON(w, http.StatusCreated, map[string]string{"message": "Расписание создано"})
}

// UpdateAssignment godoc
// @Summary Обновить слот дежурства (только для админа)
// @Description user_id = 0 снимает назначенного участника.
// @Tags schedules
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID слота"
// @Param input body models.UpdateAssignmentRequest true "Изменяемые поля"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/schedules/assignments/{id} [put]
func (h *ScheduleHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный ID")
		return
	}

	var req models.UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный JSON в UpdateAssignment", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}

	if err := h.scheduleService.UpdateAssignment(r.Context(), id, &req); err != nil {
		log.Warn("Слот не обновлён", zap.Int("assignment_id", id), zap.Error(err))
		helpers.Error(w, http.StatusNotFound, "Слот не найден")
		return
	}

	log.Info("Слот обновлён", zap.Int("assignment_id", id))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Слот обновлён"})
}

// Promote godoc
// @Summary Продвинуть следующее расписание в текущее (только для админа)
// @Description Прежнее текущее расписание архивируется.
// @Tags schedules
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/schedules/promote [post]
func (h *ScheduleHandler) Promote(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	if err := h.scheduleService.Promote(r.Context()); err != nil {
		helpers.Error(w, http.StatusNotFound, err.Error())
		return
	}

	log.Info("Расписание продвинуто")
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "Расписание продвинуто"})
}
