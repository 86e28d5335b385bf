package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"clubhub/internal/logger"
	"clubhub/internal/models"
	"clubhub/internal/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrTokenNotFound    = errors.New("токен не найден")
	ErrTokenExpired     = errors.New("срок действия токена истёк")
	ErrTokenAlreadyUsed = errors.New("токен уже использован")
	ErrUserNotFound     = errors.New("участник не найден")
)

type LoginTokenRepo interface {
	Save(ctx context.Context, t *models.LoginToken) error
	Consume(ctx context.Context, tokenHash string) (*models.LoginToken, error)
	GetByHash(ctx context.Context, tokenHash string) (*models.LoginToken, error)
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type AuthUserRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

// LoginLinkSender — интерфейс отправки письма со ссылкой входа.
type LoginLinkSender interface {
	SendLoginLink(ctx context.Context, to, link string) error
}

type AuthService struct {
	tokens      LoginTokenRepo
	users       AuthUserRepo
	emailSender LoginLinkSender
	frontendURL string
	tokenTTL    time.Duration
	jwtSecret   string
	accessTTL   time.Duration
}

func NewAuthService(
	tokens LoginTokenRepo,
	users AuthUserRepo,
	emailSender LoginLinkSender,
	frontendURL string,
	tokenTTL time.Duration,
	jwtSecret string,
	accessTTL time.Duration,
) *AuthService {
	return &AuthService{
		tokens:      tokens,
		users:       users,
		emailSender: emailSender,
		frontendURL: frontendURL,
		tokenTTL:    tokenTTL,
		jwtSecret:   jwtSecret,
		accessTTL:   accessTTL,
	}
}

// SendLoginLink генерирует одноразовый токен и отправляет письмо со ссылкой.
// Возвращает nil всегда (не раскрываем, существует ли такой e-mail).
func (s *AuthService) SendLoginLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	logger.Log.Info("Запрос ссылки для входа", zap.String("email", email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Не раскрываем наличие почты пользователю, но логируем для нас:
		logger.Log.Warn("Не удалось найти участника по email при запросе входа",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil
	}

	// Сгенерировать криптостойкий токен
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		logger.Log.Error("Ошибка генерации токена входа", zap.Error(err), zap.Int("user_id", user.ID))
		return nil
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	t := &models.LoginToken{
		UserID:    user.ID,
		Email:     email,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}
	if err := s.tokens.Save(ctx, t); err != nil {
		logger.Log.Error("Ошибка сохранения токена входа",
			zap.Int("user_id", user.ID),
			zap.Error(err),
		)
		return nil
	}

	loginLink := fmt.Sprintf("%s/login?token=%s", s.frontendURL, token)
	if err := s.emailSender.SendLoginLink(ctx, email, loginLink); err != nil {
		logger.Log.Error("Ошибка отправки письма со ссылкой входа",
			zap.Int("user_id", user.ID),
			zap.String("email", email),
			zap.Error(err),
		)
		// Не фейлим намеренно — чтобы нельзя было брутить наличие e-mail
	}

	logger.Log.Info("Письмо со ссылкой для входа поставлено на отправку",
		zap.Int("user_id", user.ID),
		zap.Time("expires_at", t.ExpiresAt),
	)
	return nil
}

// ValidateToken гасит одноразовый токен и выдаёт JWT.
// Гарантия: каждый токен проходит проверку успешно не более одного раза —
// пометка consumed_at и выдача токена считаются одним логическим шагом.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, *models.User, error) {
	logger.Log.Info("Попытка входа по токену")

	tokenHash := hashToken(strings.TrimSpace(token))

	rec, err := s.tokens.Consume(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, s.classifyConsumeFailure(ctx, tokenHash)
		}
		logger.Log.Error("Ошибка гашения токена входа", zap.Error(err))
		return "", nil, err
	}

	user, err := s.users.GetUserByID(ctx, rec.UserID)
	if err != nil {
		logger.Log.Error("Участник токена не найден", zap.Int("user_id", rec.UserID), zap.Error(err))
		return "", nil, ErrUserNotFound
	}

	accessToken, err := utils.GenerateToken(s.jwtSecret, user.ID, user.Role, s.accessTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации access-токена", zap.Error(err))
		return "", nil, err
	}

	logger.Log.Info("Вход по токену выполнен", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return accessToken, user, nil
}

// classifyConsumeFailure уточняет, почему условный UPDATE не нашёл строку.
func (s *AuthService) classifyConsumeFailure(ctx context.Context, tokenHash string) error {
	rec, err := s.tokens.GetByHash(ctx, tokenHash)
	if err != nil {
		logger.Log.Warn("Неизвестный токен входа")
		return ErrTokenNotFound
	}
	if rec.ConsumedAt != nil {
		logger.Log.Warn("Повторное использование токена входа", zap.Int("user_id", rec.UserID))
		return ErrTokenAlreadyUsed
	}
	if time.Now().After(rec.ExpiresAt) {
		logger.Log.Warn("Просроченный токен входа", zap.Int("user_id", rec.UserID))
		return ErrTokenExpired
	}
	// гонка: токен погасили между UPDATE и SELECT
	return ErrTokenAlreadyUsed
}

// PurgeExpiredTokens чистит давно истёкшие токены (фоновая задача).
func (s *AuthService) PurgeExpiredTokens(ctx context.Context, retention time.Duration) (int64, error) {
	return s.tokens.PurgeExpired(ctx, retention)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
