package services

import (
	"context"
	"errors"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"go.uber.org/zap"
)

var (
	ErrScheduleNotFound = errors.New("расписание не найдено")
	ErrNextExists       = errors.New("следующее расписание уже создано")
	ErrNoNextSchedule   = errors.New("нет следующего расписания для продвижения")
)

type ScheduleRepo interface {
	GetByStatus(ctx context.Context, status string) (*models.Schedule, error)
	HasByStatus(ctx context.Context, status string) (bool, error)
	CreateNext(ctx context.Context, s *models.Schedule) error
	UpdateAssignment(ctx context.Context, id int, input *models.UpdateAssignmentRequest) error
	Promote(ctx context.Context) error
}

type ScheduleService struct {
	repo ScheduleRepo
}

func NewScheduleService(repo ScheduleRepo) *ScheduleService {
	return &ScheduleService{repo: repo}
}

func (s *ScheduleService) Current(ctx context.Context) (*models.Schedule, error) {
	sched, err := s.repo.GetByStatus(ctx, models.ScheduleCurrent)
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	return sched, nil
}

func (s *ScheduleService) Next(ctx context.Context) (*models.Schedule, error) {
	sched, err := s.repo.GetByStatus(ctx, models.ScheduleNext)
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	return sched, nil
}

// CreateNext заводит следующее расписание. Одновременно может существовать
// только одно расписание со статусом next.
func (s *ScheduleService) CreateNext(ctx context.Context, sched *models.Schedule) error {
	logger.Log.Info("Создание следующего расписания (service)", zap.String("title", sched.Title))

	if sched.Title == "" {
		return errors.New("у расписания должно быть название")
	}

	exists, err := s.repo.HasByStatus(ctx, models.ScheduleNext)
	if err != nil {
		return err
	}
	if exists {
		return ErrNextExists
	}

	return s.repo.CreateNext(ctx, sched)
}

func (s *ScheduleService) UpdateAssignment(ctx context.Context, id int, input *models.UpdateAssignmentRequest) error {
	logger.Log.Info("Обновление назначения (service)", zap.Int("assignment_id", id))
	return s.repo.UpdateAssignment(ctx, id, input)
}

// Promote делает next текущим, прежнее текущее архивируется.
func (s *ScheduleService) Promote(ctx context.Context) error {
	logger.Log.Info("Продвижение расписания (service)")
	if err := s.repo.Promote(ctx); err != nil {
		logger.Log.Warn("Продвигать нечего", zap.Error(err))
		return ErrNoNextSchedule
	}
	return nil
}
