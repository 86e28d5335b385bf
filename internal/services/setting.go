package services

import (
	"context"

	"clubhub/internal/models"
)

type SettingRepo interface {
	GetAll(ctx context.Context) ([]*models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
	UpsertMany(ctx context.Context, values map[string]string) error
}

type SettingService struct {
	repo SettingRepo
}

func NewSettingService(repo SettingRepo) *SettingService {
	return &SettingService{repo: repo}
}

// GetAll возвращает настройки как плоскую карту key → value.
func (s *SettingService) GetAll(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, item := range settings {
		out[item.Key] = item.Value
	}
	return out, nil
}

func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	return s.repo.Get(ctx, key)
}

func (s *SettingService) Set(ctx context.Context, key, value string) error {
	return s.repo.Upsert(ctx, key, value)
}

func (s *SettingService) SetMany(ctx context.Context, values map[string]string) error {
	return s.repo.UpsertMany(ctx, values)
}
