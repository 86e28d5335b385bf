package handlers

import (
	"context"
	"net/http"
	"time"

	"clubhub/internal/logger"
	helpers "clubhub/internal/utils/helpers"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Version проставляется при сборке через -ldflags.
var Version = "dev"

type SystemHandler struct {
	db *pgxpool.Pool
}

func NewSystemHandler(db *pgxpool.Pool) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health godoc
// @Summary Проверка живости сервиса
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status godoc
// @Summary Состояние сервиса и подключения к базе
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/status [get]
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Error("Status: база недоступна", zap.Error(err))
		dbStatus = "unavailable"
	}

	helpers.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   Version,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": []string{
			"/api/auth/send-login-link",
			"/api/auth/validate-token",
			"/api/users",
			"/api/users/assignable",
			"/api/users/import",
			"/api/users/export/csv",
			"/api/settings",
			"/api/schedules/current",
			"/api/schedules/next",
			"/api/schedules/promote",
			"/api/maintenance/import-logs",
		},
	})
}
