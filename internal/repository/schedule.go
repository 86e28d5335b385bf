package repository

import (
	"context"
	"fmt"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetByStatus возвращает расписание со всеми назначениями (и именами участников).
func (r *ScheduleRepository) GetByStatus(ctx context.Context, status string) (*models.Schedule, error) {
	logger.Log.Debug("Получение расписания (repo)", zap.String("status", status))
	var s models.Schedule
	err := r.db.QueryRow(ctx,
		`SELECT id, status, title, created_at FROM schedules WHERE status = $1`, status,
	).Scan(&s.ID, &s.Status, &s.Title, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.schedule_id, a.dance_date, a.duty, a.user_id, COALESCE(u.full_name, '')
		FROM schedule_assignments a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.schedule_id = $1
		ORDER BY a.dance_date, a.id
	`, s.ID)
	if err != nil {
		logger.Log.Error("Ошибка получения назначений (repo)", zap.Error(err), zap.Int("schedule_id", s.ID))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.DanceDate, &a.Duty, &a.UserID, &a.UserName); err != nil {
			logger.Log.Error("Ошибка сканирования назначения (repo)", zap.Error(err))
			return nil, err
		}
		s.Assignments = append(s.Assignments, a)
	}
	return &s, rows.Err()
}

func (r *ScheduleRepository) HasByStatus(ctx context.Context, status string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schedules WHERE status = $1)`, status,
	).Scan(&exists)
	return exists, err
}

// CreateNext создаёт следующее расписание вместе с назначениями одной транзакцией.
func (r *ScheduleRepository) CreateNext(ctx context.Context, s *models.Schedule) error {
	logger.Log.Info("Создание следующего расписания (repo)", zap.String("title", s.Title))
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO schedules (status, title) VALUES ($1, $2) RETURNING id, created_at`,
		models.ScheduleNext, s.Title,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания расписания (repo)", zap.Error(err))
		return err
	}
	s.Status = models.ScheduleNext

	for i := range s.Assignments {
		a := &s.Assignments[i]
		a.ScheduleID = s.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO schedule_assignments (schedule_id, dance_date, duty, user_id)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			s.ID, a.DanceDate, a.Duty, a.UserID,
		).Scan(&a.ID)
		if err != nil {
			logger.Log.Error("Ошибка создания назначения (repo)", zap.Error(err))
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ScheduleRepository) UpdateAssignment(ctx context.Context, id int, input *models.UpdateAssignmentRequest) error {
	logger.Log.Info("Обновление назначения (repo)", zap.Int("assignment_id", id))
	query := `UPDATE schedule_assignments SET`
	var args []interface{}
	argNum := 1

	if input.Duty != nil {
		query += fmt.Sprintf(" duty = $%d,", argNum)
		args = append(args, *input.Duty)
		argNum++
	}
	if input.UserID != nil {
		query += fmt.Sprintf(" user_id = $%d,", argNum)
		// нулевой user_id снимает участника с дежурства
		if *input.UserID == 0 {
			args = append(args, nil)
		} else {
			args = append(args, *input.UserID)
		}
		argNum++
	}

	if len(args) == 0 {
		logger.Log.Warn("Нет полей для обновления назначения (repo)", zap.Int("assignment_id", id))
		return nil
	}

	query = query[:len(query)-1] + fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка обновления назначения (repo)", zap.Error(err), zap.Int("assignment_id", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Promote переводит следующее расписание в текущее: старое текущее архивируется,
// next становится current. Всё одной транзакцией.
func (r *ScheduleRepository) Promote(ctx context.Context) error {
	logger.Log.Info("Продвижение расписания (repo)")
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE schedules SET status = $1 WHERE status = $2`,
		models.ScheduleArchived, models.ScheduleCurrent,
	); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE schedules SET status = $1 WHERE status = $2`,
		models.ScheduleCurrent, models.ScheduleNext,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// нечего продвигать — транзакция откатится
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}
