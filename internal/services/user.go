package services

import (
	"context"
	"errors"
	"strings"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"go.uber.org/zap"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetAssignableUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateUserFields(ctx context.Context, id int, input *models.UpdateUserRequest) error
	DeleteUserByID(ctx context.Context, id int) error
}

type UserService struct {
	repo UserRepo
}

func NewUserService(repo UserRepo) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание участника (service)", zap.String("email", user.Email))

	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Email == "" || strings.TrimSpace(user.FullName) == "" {
		return errors.New("имя и email обязательны")
	}
	if user.Role == "" {
		user.Role = "member"
	}

	if exists, err := s.repo.IsEmailTaken(ctx, user.Email); exists || err != nil {
		if err != nil {
			logger.Log.Error("Ошибка проверки email", zap.Error(err))
			return err
		}
		return errors.New("адрес электронной почты уже зарегистрирован")
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		logger.Log.Error("Ошибка создания участника", zap.Error(err))
		return err
	}
	logger.Log.Info("Участник создан (service)", zap.Int("user_id", user.ID))
	return nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) GetAssignableUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAssignableUsers(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id int, input *models.UpdateUserRequest) error {
	logger.Log.Info("Обновление участника (service)", zap.Int("user_id", id))
	if input.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*input.Email))
		input.Email = &normalized
	}
	return s.repo.UpdateUserFields(ctx, id, input)
}

func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	logger.Log.Info("Удаление участника (service)", zap.Int("user_id", id))
	return s.repo.DeleteUserByID(ctx, id)
}
