package repository

import (
	"context"
	"time"

	"clubhub/internal/logger"
	"clubhub/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type LoginTokenRepository struct {
	db *pgxpool.Pool
}

func NewLoginTokenRepository(db *pgxpool.Pool) *LoginTokenRepository {
	return &LoginTokenRepository{db: db}
}

func (r *LoginTokenRepository) Save(ctx context.Context, t *models.LoginToken) error {
	logger.Log.Debug("Сохранение токена входа (repo)", zap.Int("user_id", t.UserID))
	query := `
		INSERT INTO login_tokens (user_id, email, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, t.UserID, t.Email, t.TokenHash, t.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка сохранения токена входа (repo)", zap.Error(err), zap.Int("user_id", t.UserID))
	}
	return err
}

// Consume помечает токен использованным и возвращает его — одним условным
// UPDATE, чтобы две параллельные проверки не прошли обе.
func (r *LoginTokenRepository) Consume(ctx context.Context, tokenHash string) (*models.LoginToken, error) {
	query := `
		UPDATE login_tokens
		SET consumed_at = now()
		WHERE token_hash = $1
		  AND consumed_at IS NULL
		  AND expires_at > now()
		RETURNING id, user_id, email, token_hash, created_at, expires_at, consumed_at`

	var t models.LoginToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.UserID, &t.Email, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.ConsumedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByHash — чтение без изменения, для классификации отказа Consume.
func (r *LoginTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.LoginToken, error) {
	query := `
		SELECT id, user_id, email, token_hash, created_at, expires_at, consumed_at
		FROM login_tokens
		WHERE token_hash = $1`

	var t models.LoginToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.UserID, &t.Email, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.ConsumedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PurgeExpired удаляет токены, чей срок истёк дольше retention назад.
// Свежие (в том числе использованные) остаются для аудита.
func (r *LoginTokenRepository) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM login_tokens WHERE expires_at < now() - make_interval(secs => $1)`,
		retention.Seconds(),
	)
	if err != nil {
		logger.Log.Error("Ошибка чистки токенов входа (repo)", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
