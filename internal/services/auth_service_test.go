package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clubhub/internal/models"

	"github.com/jackc/pgx/v5"
)

// Мок-репозиторий токенов входа (заглушка)
type mockTokenRepo struct {
	tokens map[string]*models.LoginToken
	nextID int64
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*models.LoginToken)}
}

func (m *mockTokenRepo) Save(_ context.Context, t *models.LoginToken) error {
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	m.tokens[t.TokenHash] = t
	return nil
}

func (m *mockTokenRepo) Consume(_ context.Context, tokenHash string) (*models.LoginToken, error) {
	rec, ok := m.tokens[tokenHash]
	if !ok || rec.ConsumedAt != nil || time.Now().After(rec.ExpiresAt) {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	rec.ConsumedAt = &now
	return rec, nil
}

func (m *mockTokenRepo) GetByHash(_ context.Context, tokenHash string) (*models.LoginToken, error) {
	rec, ok := m.tokens[tokenHash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return rec, nil
}

func (m *mockTokenRepo) PurgeExpired(_ context.Context, retention time.Duration) (int64, error) {
	var deleted int64
	cutoff := time.Now().Add(-retention)
	for hash, rec := range m.tokens {
		if rec.ExpiresAt.Before(cutoff) {
			delete(m.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

type mockAuthUserRepo struct {
	users map[string]*models.User // по email
}

func (m *mockAuthUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *mockAuthUserRepo) GetUserByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

// Мок-отправитель: запоминает последнюю ссылку вместо отправки письма
type mockLinkSender struct {
	lastTo   string
	lastLink string
	sent     int
}

func (m *mockLinkSender) SendLoginLink(_ context.Context, to, link string) error {
	m.lastTo = to
	m.lastLink = link
	m.sent++
	return nil
}

func newTestAuthService(tokens *mockTokenRepo, users *mockAuthUserRepo, sender *mockLinkSender) *AuthService {
	return NewAuthService(tokens, users, sender, "https://club.example", 15*time.Minute, "testsecret", time.Hour)
}

// tokenFromLink достаёт одноразовый токен из ссылки в письме
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	idx := strings.Index(link, "token=")
	if idx < 0 {
		t.Fatalf("в ссылке нет токена: %s", link)
	}
	return link[idx+len("token="):]
}

func TestSendLoginLink_UnknownEmail(t *testing.T) {
	tokens := newMockTokenRepo()
	users := &mockAuthUserRepo{users: make(map[string]*models.User)}
	sender := &mockLinkSender{}
	service := newTestAuthService(tokens, users, sender)

	// Неизвестный email: ошибки нет, письмо не уходит, токен не создаётся
	if err := service.SendLoginLink(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("ожидался nil для неизвестного email, получено: %v", err)
	}
	if sender.sent != 0 {
		t.Fatal("письмо не должно отправляться для неизвестного email")
	}
	if len(tokens.tokens) != 0 {
		t.Fatal("токен не должен создаваться для неизвестного email")
	}
}

func TestValidateToken_Success(t *testing.T) {
	tokens := newMockTokenRepo()
	users := &mockAuthUserRepo{users: map[string]*models.User{
		"dancer@example.com": {ID: 7, FullName: "Мария Иванова", Email: "dancer@example.com", Role: "member"},
	}}
	sender := &mockLinkSender{}
	service := newTestAuthService(tokens, users, sender)

	if err := service.SendLoginLink(context.Background(), "Dancer@Example.com"); err != nil {
		t.Fatalf("ошибка запроса ссылки: %v", err)
	}
	if sender.sent != 1 {
		t.Fatal("письмо со ссылкой не отправлено")
	}

	access, user, err := service.ValidateToken(context.Background(), tokenFromLink(t, sender.lastLink))
	if err != nil {
		t.Fatalf("ошибка обмена токена: %v", err)
	}
	if access == "" {
		t.Fatal("access-токен не сгенерирован")
	}
	if user.ID != 7 || user.Role != "member" {
		t.Fatalf("вернулся не тот участник: %+v", user)
	}
}

func TestValidateToken_SecondUse(t *testing.T) {
	tokens := newMockTokenRepo()
	users := &mockAuthUserRepo{users: map[string]*models.User{
		"dancer@example.com": {ID: 7, Email: "dancer@example.com", Role: "member"},
	}}
	sender := &mockLinkSender{}
	service := newTestAuthService(tokens, users, sender)

	_ = service.SendLoginLink(context.Background(), "dancer@example.com")
	token := tokenFromLink(t, sender.lastLink)

	if _, _, err := service.ValidateToken(context.Background(), token); err != nil {
		t.Fatalf("первый обмен должен пройти: %v", err)
	}
	if _, _, err := service.ValidateToken(context.Background(), token); !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("ожидался ErrTokenAlreadyUsed, получено: %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tokens := newMockTokenRepo()
	users := &mockAuthUserRepo{users: map[string]*models.User{
		"dancer@example.com": {ID: 7, Email: "dancer@example.com", Role: "member"},
	}}
	sender := &mockLinkSender{}
	service := newTestAuthService(tokens, users, sender)

	_ = service.SendLoginLink(context.Background(), "dancer@example.com")
	token := tokenFromLink(t, sender.lastLink)

	// Состарим токен вручную
	for _, rec := range tokens.tokens {
		rec.ExpiresAt = time.Now().Add(-time.Minute)
	}

	if _, _, err := service.ValidateToken(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("ожидался ErrTokenExpired, получено: %v", err)
	}
}

func TestValidateToken_Unknown(t *testing.T) {
	tokens := newMockTokenRepo()
	users := &mockAuthUserRepo{users: make(map[string]*models.User)}
	sender := &mockLinkSender{}
	service := newTestAuthService(tokens, users, sender)

	if _, _, err := service.ValidateToken(context.Background(), "мусор-а-не-токен"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("ожидался ErrTokenNotFound, получено: %v", err)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	tokens := newMockTokenRepo()
	users := &mockAuthUserRepo{users: map[string]*models.User{
		"dancer@example.com": {ID: 7, Email: "dancer@example.com", Role: "member"},
	}}
	sender := &mockLinkSender{}
	service := newTestAuthService(tokens, users, sender)

	_ = service.SendLoginLink(context.Background(), "dancer@example.com")
	for _, rec := range tokens.tokens {
		rec.ExpiresAt = time.Now().Add(-40 * 24 * time.Hour)
	}

	deleted, err := service.PurgeExpiredTokens(context.Background(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("ошибка чистки: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("ожидался 1 удалённый токен, получено: %d", deleted)
	}
}
