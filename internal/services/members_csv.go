package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCSVMissingHeader — в файле нет обязательной колонки заголовка.
// Фатально для всего импорта (в отличие от ошибок в отдельных строках).
var ErrCSVMissingHeader = errors.New("в CSV отсутствует обязательная колонка")

// Колонки экспорта. Порядок фиксированный, импорт принимает те же имена.
var csvColumns = []string{"name", "email", "phone", "address", "role"}

type CSVUserRepo interface {
	UpsertByEmail(ctx context.Context, user *models.User) (bool, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

type ImportLogRepo interface {
	SaveRun(ctx context.Context, runID string, entries []models.ImportRowEntry) error
	GetAll(ctx context.Context) ([]*models.ImportLogRecord, error)
	Clear(ctx context.Context) (int64, error)
}

type MembersCSVService struct {
	users     CSVUserRepo
	importLog ImportLogRepo
}

func NewMembersCSVService(users CSVUserRepo, importLog ImportLogRepo) *MembersCSVService {
	return &MembersCSVService{users: users, importLog: importLog}
}

// Import читает CSV и делает upsert участников по email.
// Строки независимы: битая строка попадает в журнал и не прерывает остальные.
// Дубликат email внутри файла — побеждает последняя строка.
func (s *MembersCSVService) Import(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	result := &models.ImportResult{RunID: uuid.New().String()}
	logger.Log.Info("Импорт участников из CSV", zap.String("run_id", result.RunID))

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		// пустой файл — успех с нулевыми счётчиками
		logger.Log.Info("Импорт: пустой файл", zap.String("run_id", result.RunID))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать заголовок CSV: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, required := range []string{"name", "email"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrCSVMissingHeader, required)
		}
	}

	known := make(map[string]bool, len(csvColumns)+1)
	for _, c := range csvColumns {
		known[c] = true
	}
	known["id"] = true // id в экспорте нет, но принимаем и игнорируем
	for _, h := range header {
		if !known[strings.ToLower(strings.TrimSpace(h))] {
			result.Unknown = append(result.Unknown, strings.TrimSpace(h))
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		result.Total++

		if err != nil {
			result.Skipped++
			result.Log = append(result.Log, models.ImportRowEntry{
				Row: rowNum, Action: models.ImportError, Detail: "битая строка CSV: " + err.Error(),
			})
			continue
		}

		name := getCol(row, "name")
		rawEmail := getCol(row, "email")

		if rawEmail == "" {
			result.Skipped++
			result.Log = append(result.Log, models.ImportRowEntry{
				Row: rowNum, Action: models.ImportError, Detail: "отсутствует email",
			})
			continue
		}

		addr, parseErr := mail.ParseAddress(rawEmail)
		if parseErr != nil {
			result.Skipped++
			result.Log = append(result.Log, models.ImportRowEntry{
				Row: rowNum, Action: models.ImportError, Email: rawEmail, Detail: "невалидный email",
			})
			continue
		}
		email := strings.ToLower(addr.Address)

		if name == "" {
			result.Skipped++
			result.Log = append(result.Log, models.ImportRowEntry{
				Row: rowNum, Action: models.ImportError, Email: email, Detail: "отсутствует имя",
			})
			continue
		}

		role := strings.ToLower(getCol(row, "role"))
		if role != "admin" && role != "member" {
			role = "member"
		}

		u := &models.User{
			FullName: name,
			Email:    email,
			Phone:    getCol(row, "phone"),
			Address:  getCol(row, "address"),
			Role:     role,
		}

		created, err := s.users.UpsertByEmail(ctx, u)
		if err != nil {
			logger.Log.Error("Импорт: ошибка upsert", zap.Int("row", rowNum), zap.String("email", email), zap.Error(err))
			result.Skipped++
			result.Log = append(result.Log, models.ImportRowEntry{
				Row: rowNum, Action: models.ImportError, Email: email, Detail: "не удалось сохранить участника",
			})
			continue
		}

		if created {
			result.Created++
			result.Log = append(result.Log, models.ImportRowEntry{Row: rowNum, Action: models.ImportCreated, Email: email})
		} else {
			result.Updated++
			result.Log = append(result.Log, models.ImportRowEntry{Row: rowNum, Action: models.ImportUpdated, Email: email})
		}
	}

	if err := s.importLog.SaveRun(ctx, result.RunID, result.Log); err != nil {
		// журнал вторичен: сам импорт уже применён
		logger.Log.Error("Импорт: не удалось сохранить журнал", zap.String("run_id", result.RunID), zap.Error(err))
	}

	logger.Log.Info("Импорт завершён",
		zap.String("run_id", result.RunID),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Export сериализует таблицу участников в CSV с фиксированным порядком колонок.
func (s *MembersCSVService) Export(ctx context.Context) ([]byte, error) {
	logger.Log.Info("Экспорт участников в CSV")
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvColumns); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := cw.Write([]string{u.FullName, u.Email, u.Phone, u.Address, u.Role}); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	logger.Log.Info("Экспорт готов", zap.Int("rows", len(users)))
	return buf.Bytes(), nil
}

func (s *MembersCSVService) ImportLogs(ctx context.Context) ([]*models.ImportLogRecord, error) {
	return s.importLog.GetAll(ctx)
}

func (s *MembersCSVService) ClearImportLogs(ctx context.Context) (int64, error) {
	return s.importLog.Clear(ctx)
}
