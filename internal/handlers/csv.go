package handlers

import (
	"net/http"
	"strconv"

	"clubhub/internal/logger"
	"clubhub/internal/services"
	helpers "clubhub/internal/utils/helpers"

	"go.uber.org/zap"
)

const exportFilename = "members-export.csv"

// maxImportSize ограничивает размер загружаемого CSV (5 МБ).
const maxImportSize = 5 << 20

type CSVHandler struct {
	csvService *services.MembersCSVService
}

func NewCSVHandler(csvService *services.MembersCSVService) *CSVHandler {
	return &CSVHandler{csvService: csvService}
}

// ImportUsers godoc
// @Summary Импортировать участников из CSV (только для админа)
// @Description Upsert по email: существующие участники обновляются, новые создаются. Битые строки пропускаются и попадают в журнал.
// @Tags csv
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV-файл с колонками name,email,phone,address,role"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} map[string]string
// @Router /api/users/import [post]
func (h *CSVHandler) ImportUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		log.Warn("Импорт: не удалось разобрать multipart", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Ожидается multipart-форма с файлом")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("Импорт: файл не передан", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Файл не передан")
		return
	}
	defer file.Close()

	log.Info("Импорт участников", zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	result, err := h.csvService.Import(r.Context(), file)
	if err != nil {
		log.Warn("Импорт не выполнен", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	helpers.JSON(w, http.StatusOK, result)
}

// ExportUsersCSV godoc
// @Summary Экспортировать участников в CSV (только для админа)
// @Tags csv
// @Security ApiKeyAuth
// @Produce text/csv
// @Success 200 {string} string "CSV-файл"
// @Failure 500 {object} map[string]string
// @Router /api/users/export/csv [get]
func (h *CSVHandler) ExportUsersCSV(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	data, err := h.csvService.Export(r.Context())
	if err != nil {
		log.Error("Ошибка экспорта CSV", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка экспорта")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn("Экспорт: запись ответа прервана", zap.Error(err))
	}
}

// GetImportLogs godoc
// @Summary Журнал импортов (только для админа)
// @Tags maintenance
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.ImportLogRecord
// @Failure 500 {object} map[string]string
// @Router /api/maintenance/import-logs [get]
func (h *CSVHandler) GetImportLogs(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	records, err := h.csvService.ImportLogs(r.Context())
	if err != nil {
		log.Error("Ошибка чтения журнала импорта", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка чтения журнала")
		return
	}

	helpers.JSON(w, http.StatusOK, records)
}

// ClearImportLogs godoc
// @Summary Очистить журнал импортов (только для админа)
// @Tags maintenance
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 500 {object} map[string]string
// @Router /api/maintenance/clear-import-logs [post]
func (h *CSVHandler) ClearImportLogs(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	deleted, err := h.csvService.ClearImportLogs(r.Context())
	if err != nil {
		log.Error("Ошибка очистки журнала импорта", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка очистки журнала")
		return
	}

	log.Info("Журнал импорта очищен", zap.Int64("deleted", deleted))
	helpers.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
