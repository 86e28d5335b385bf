package repository

import (
	"context"
	"fmt"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание участника (repo)", zap.String("email", user.Email))
	query := `
	INSERT INTO users (full_name, email, phone, address, role)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.Phone,
		user.Address,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	logger.Log.Debug("Проверка email на уникальность (repo)", zap.String("email", email))
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки email (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	logger.Log.Debug("Получение всех участников (repo)")
	query := `SELECT id, full_name, email, phone, address, role, created_at, updated_at FROM users ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		logger.Log.Error("Ошибка получения участников (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.ID,
			&u.FullName,
			&u.Email,
			&u.Phone,
			&u.Address,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			logger.Log.Error("Ошибка сканирования участника (repo)", zap.Error(err))
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// GetAssignableUsers — участники, которым можно назначать дежурства в расписании.
func (r *UserRepository) GetAssignableUsers(ctx context.Context) ([]*models.User, error) {
	logger.Log.Debug("Получение назначаемых участников (repo)")
	query := `
		SELECT id, full_name, email, phone, address, role, created_at, updated_at
		FROM users
		WHERE role IN ('member', 'admin')
		ORDER BY full_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		logger.Log.Error("Ошибка получения назначаемых участников (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Address, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			logger.Log.Error("Ошибка сканирования участника (repo)", zap.Error(err))
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	logger.Log.Debug("Получение участника по ID (repo)", zap.Int("user_id", id))
	query := `
		SELECT id, full_name, email, phone, address, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Phone,
		&u.Address,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		logger.Log.Warn("Участник по ID не найден (repo)", zap.Int("user_id", id), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.Log.Debug("Получение участника по email (repo)", zap.String("email", email))
	query := `
		SELECT id, full_name, email, phone, address, role, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`

	var u models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Phone,
		&u.Address,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateUserFields(ctx context.Context, id int, input *models.UpdateUserRequest) error {
	logger.Log.Info("Обновление участника (repo)", zap.Int("user_id", id))
	query := `UPDATE users SET`
	var args []interface{}
	argNum := 1

	if input.FullName != nil {
		query += fmt.Sprintf(" full_name = $%d,", argNum)
		args = append(args, *input.FullName)
		argNum++
	}
	if input.Email != nil {
		query += fmt.Sprintf(" email = $%d,", argNum)
		args = append(args, *input.Email)
		argNum++
	}
	if input.Phone != nil {
		query += fmt.Sprintf(" phone = $%d,", argNum)
		args = append(args, *input.Phone)
		argNum++
	}
	if input.Address != nil {
		query += fmt.Sprintf(" address = $%d,", argNum)
		args = append(args, *input.Address)
		argNum++
	}
	if input.Role != nil {
		query += fmt.Sprintf(" role = $%d,", argNum)
		args = append(args, *input.Role)
		argNum++
	}

	if len(args) == 0 {
		logger.Log.Warn("Нет полей для обновления участника (repo)", zap.Int("user_id", id))
		return nil // ничего не обновляем
	}

	query += " updated_at = now()"
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка обновления участника (repo)", zap.Error(err), zap.Int("user_id", id))
	}
	return err
}

func (r *UserRepository) DeleteUserByID(ctx context.Context, id int) error {
	logger.Log.Info("Удаление участника (repo)", zap.Int("user_id", id))
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления участника (repo)", zap.Error(err), zap.Int("user_id", id))
	}
	return err
}

// UpsertByEmail вставляет или обновляет участника по email.
// Возвращает true, если строка была создана (а не обновлена).
func (r *UserRepository) UpsertByEmail(ctx context.Context, user *models.User) (bool, error) {
	logger.Log.Debug("Upsert участника по email (repo)", zap.String("email", user.Email))
	query := `
	INSERT INTO users (full_name, email, phone, address, role)
	VALUES ($1, lower($2), $3, $4, $5)
	ON CONFLICT (email) DO UPDATE SET
		full_name = EXCLUDED.full_name,
		phone = EXCLUDED.phone,
		address = EXCLUDED.address,
		role = EXCLUDED.role,
		updated_at = now()
	RETURNING id, (xmax = 0)`

	var created bool
	err := r.db.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.Phone,
		user.Address,
		user.Role,
	).Scan(&user.ID, &created)
	if err != nil {
		logger.Log.Error("Ошибка upsert участника (repo)", zap.Error(err), zap.String("email", user.Email))
		return false, err
	}
	return created, nil
}
