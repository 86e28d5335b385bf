package repository

import (
	"context"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ImportLogRepository struct {
	db *pgxpool.Pool
}

func NewImportLogRepository(db *pgxpool.Pool) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// SaveRun пишет журнал одного прогона импорта батчем.
func (r *ImportLogRepository) SaveRun(ctx context.Context, runID string, entries []models.ImportRowEntry) error {
	logger.Log.Debug("Сохранение журнала импорта (repo)", zap.String("run_id", runID), zap.Int("entries", len(entries)))
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO import_log (run_id, row_num, action, email, detail) VALUES ($1, $2, $3, $4, $5)`,
			runID, e.Row, e.Action, e.Email, e.Detail,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			logger.Log.Error("Ошибка записи журнала импорта (repo)", zap.Error(err), zap.String("run_id", runID))
			return err
		}
	}
	return nil
}

func (r *ImportLogRepository) GetAll(ctx context.Context) ([]*models.ImportLogRecord, error) {
	logger.Log.Debug("Получение журнала импорта (repo)")
	rows, err := r.db.Query(ctx, `
		SELECT id, run_id, row_num, action, email, detail, created_at
		FROM import_log
		ORDER BY created_at DESC, row_num
	`)
	if err != nil {
		logger.Log.Error("Ошибка получения журнала импорта (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []*models.ImportLogRecord
	for rows.Next() {
		var rec models.ImportLogRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.RowNum, &rec.Action, &rec.Email, &rec.Detail, &rec.CreatedAt); err != nil {
			logger.Log.Error("Ошибка сканирования журнала импорта (repo)", zap.Error(err))
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *ImportLogRepository) Clear(ctx context.Context) (int64, error) {
	logger.Log.Info("Очистка журнала импорта (repo)")
	tag, err := r.db.Exec(ctx, `DELETE FROM import_log`)
	if err != nil {
		logger.Log.Error("Ошибка очистки журнала импорта (repo)", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
