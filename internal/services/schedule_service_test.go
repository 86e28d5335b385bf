package services

import (
	"context"
	"errors"
	"testing"

	"clubhub/internal/models"
)

// Мок-репозиторий расписаний (заглушка)
type mockScheduleRepo struct {
	byStatus map[string]*models.Schedule
	nextID   int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{byStatus: make(map[string]*models.Schedule)}
}

func (m *mockScheduleRepo) GetByStatus(_ context.Context, status string) (*models.Schedule, error) {
	s, ok := m.byStatus[status]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (m *mockScheduleRepo) HasByStatus(_ context.Context, status string) (bool, error) {
	_, ok := m.byStatus[status]
	return ok, nil
}

func (m *mockScheduleRepo) CreateNext(_ context.Context, s *models.Schedule) error {
	m.nextID++
	s.ID = m.nextID
	m.byStatus[models.ScheduleNext] = s
	return nil
}

func (m *mockScheduleRepo) UpdateAssignment(_ context.Context, id int, _ *models.UpdateAssignmentRequest) error {
	return nil
}

func (m *mockScheduleRepo) Promote(_ context.Context) error {
	next, ok := m.byStatus[models.ScheduleNext]
	if !ok {
		return errors.New("no next schedule")
	}
	if cur, ok := m.byStatus[models.ScheduleCurrent]; ok {
		cur.Status = models.ScheduleArchived
	}
	next.Status = models.ScheduleCurrent
	m.byStatus[models.ScheduleCurrent] = next
	delete(m.byStatus, models.ScheduleNext)
	return nil
}

func TestCreateNext_OnlyOne(t *testing.T) {
	repo := newMockScheduleRepo()
	service := NewScheduleService(repo)

	if err := service.CreateNext(context.Background(), &models.Schedule{Title: "Октябрь"}); err != nil {
		t.Fatalf("первое создание должно пройти: %v", err)
	}
	err := service.CreateNext(context.Background(), &models.Schedule{Title: "Ноябрь"})
	if !errors.Is(err, ErrNextExists) {
		t.Fatalf("ожидался ErrNextExists, получено: %v", err)
	}
}

func TestCreateNext_RequiresTitle(t *testing.T) {
	service := NewScheduleService(newMockScheduleRepo())

	if err := service.CreateNext(context.Background(), &models.Schedule{}); err == nil {
		t.Fatal("ожидалась ошибка для расписания без названия")
	}
}

func TestPromote(t *testing.T) {
	repo := newMockScheduleRepo()
	service := NewScheduleService(repo)

	repo.byStatus[models.ScheduleCurrent] = &models.Schedule{ID: 1, Status: models.ScheduleCurrent, Title: "Сентябрь"}
	repo.byStatus[models.ScheduleNext] = &models.Schedule{ID: 2, Status: models.ScheduleNext, Title: "Октябрь"}

	if err := service.Promote(context.Background()); err != nil {
		t.Fatalf("ошибка продвижения: %v", err)
	}

	current, err := service.Current(context.Background())
	if err != nil {
		t.Fatalf("текущее расписание пропало: %v", err)
	}
	if current.Title != "Октябрь" {
		t.Fatalf("текущим должен стать Октябрь, получено: %s", current.Title)
	}
	if _, err := service.Next(context.Background()); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatal("следующего расписания после продвижения быть не должно")
	}
}

func TestPromote_NoNext(t *testing.T) {
	service := NewScheduleService(newMockScheduleRepo())

	if err := service.Promote(context.Background()); !errors.Is(err, ErrNoNextSchedule) {
		t.Fatalf("ожидался ErrNoNextSchedule, получено: %v", err)
	}
}
