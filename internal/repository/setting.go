package repository

import (
	"context"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SettingRepository struct {
	db *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	logger.Log.Debug("Получение всех настроек (repo)")
	rows, err := r.db.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		logger.Log.Error("Ошибка получения настроек (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			logger.Log.Error("Ошибка сканирования настройки (repo)", zap.Error(err))
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	logger.Log.Debug("Получение настройки (repo)", zap.String("key", key))
	var s models.Setting
	err := r.db.QueryRow(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	logger.Log.Info("Запись настройки (repo)", zap.String("key", key))
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		logger.Log.Error("Ошибка записи настройки (repo)", zap.Error(err), zap.String("key", key))
	}
	return err
}

// UpsertMany пишет набор настроек одной транзакцией: либо все, либо ни одной.
func (r *SettingRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	logger.Log.Info("Массовая запись настроек (repo)", zap.Int("count", len(values)))
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		if _, err := tx.Exec(ctx, `
			INSERT INTO settings (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, key, value); err != nil {
			logger.Log.Error("Ошибка записи настройки в транзакции (repo)", zap.Error(err), zap.String("key", key))
			return err
		}
	}

	return tx.Commit(ctx)
}
