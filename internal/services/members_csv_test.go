package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"clubhub/internal/models"
)

// Мок-репозиторий участников для CSV (заглушка)
type mockCSVUserRepo struct {
	byEmail map[string]*models.User
	nextID  int
}

func newMockCSVUserRepo() *mockCSVUserRepo {
	return &mockCSVUserRepo{byEmail: make(map[string]*models.User)}
}

func (m *mockCSVUserRepo) UpsertByEmail(_ context.Context, user *models.User) (bool, error) {
	if existing, ok := m.byEmail[user.Email]; ok {
		user.ID = existing.ID
		m.byEmail[user.Email] = user
		return false, nil
	}
	m.nextID++
	user.ID = m.nextID
	m.byEmail[user.Email] = user
	return true, nil
}

func (m *mockCSVUserRepo) GetAllUsers(_ context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		users = append(users, u)
	}
	return users, nil
}

type mockImportLogRepo struct {
	runs map[string][]models.ImportRowEntry
}

func newMockImportLogRepo() *mockImportLogRepo {
	return &mockImportLogRepo{runs: make(map[string][]models.ImportRowEntry)}
}

func (m *mockImportLogRepo) SaveRun(_ context.Context, runID string, entries []models.ImportRowEntry) error {
	m.runs[runID] = entries
	return nil
}

func (m *mockImportLogRepo) GetAll(_ context.Context) ([]*models.ImportLogRecord, error) {
	return nil, nil
}

func (m *mockImportLogRepo) Clear(_ context.Context) (int64, error) {
	n := int64(len(m.runs))
	m.runs = make(map[string][]models.ImportRowEntry)
	return n, nil
}

func TestImport_MixedRows(t *testing.T) {
	users := newMockCSVUserRepo()
	logs := newMockImportLogRepo()
	service := NewMembersCSVService(users, logs)

	csv := strings.Join([]string{
		"name,email,phone,address,role",
		"Анна Петрова,anna@example.com,+7 900 000-00-01,Москва,member",
		"Без почты,,,," + "member",
		"Иван Сидоров,ivan@example.com,,,admin",
		"Кривой Email,not-an-email,,,member",
	}, "\n")

	result, err := service.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ошибка импорта: %v", err)
	}

	if result.Total != 4 {
		t.Fatalf("ожидалось 4 строки, получено: %d", result.Total)
	}
	if result.Created != 2 || result.Updated != 0 || result.Skipped != 2 {
		t.Fatalf("неверные счётчики: created=%d updated=%d skipped=%d",
			result.Created, result.Updated, result.Skipped)
	}
	if len(logs.runs[result.RunID]) != 4 {
		t.Fatalf("в журнале должно быть 4 записи, получено: %d", len(logs.runs[result.RunID]))
	}
	if users.byEmail["ivan@example.com"].Role != "admin" {
		t.Fatal("роль admin не сохранилась")
	}
}

func TestImport_UpdateExisting(t *testing.T) {
	users := newMockCSVUserRepo()
	logs := newMockImportLogRepo()
	service := NewMembersCSVService(users, logs)

	users.byEmail["anna@example.com"] = &models.User{ID: 1, FullName: "Старое Имя", Email: "anna@example.com"}
	users.nextID = 1

	csv := "name,email\nАнна Петрова,anna@example.com\n"
	result, err := service.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ошибка импорта: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("ожидалось обновление существующего: %+v", result)
	}
	if users.byEmail["anna@example.com"].FullName != "Анна Петрова" {
		t.Fatal("имя не обновилось")
	}
}

func TestImport_DuplicateEmailLastWins(t *testing.T) {
	users := newMockCSVUserRepo()
	logs := newMockImportLogRepo()
	service := NewMembersCSVService(users, logs)

	csv := strings.Join([]string{
		"name,email",
		"Первая Версия,anna@example.com",
		"Вторая Версия,anna@example.com",
	}, "\n")

	result, err := service.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ошибка импорта: %v", err)
	}
	if result.Created != 1 || result.Updated != 1 {
		t.Fatalf("дубликат должен пройти как created+updated: %+v", result)
	}
	if users.byEmail["anna@example.com"].FullName != "Вторая Версия" {
		t.Fatal("должна победить последняя строка")
	}
}

func TestImport_EmptyFile(t *testing.T) {
	service := NewMembersCSVService(newMockCSVUserRepo(), newMockImportLogRepo())

	result, err := service.Import(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("пустой файл — это успех с нулями, получено: %v", err)
	}
	if result.Total != 0 || result.Created != 0 || result.Skipped != 0 {
		t.Fatalf("ожидались нулевые счётчики: %+v", result)
	}
}

func TestImport_MissingHeader(t *testing.T) {
	service := NewMembersCSVService(newMockCSVUserRepo(), newMockImportLogRepo())

	_, err := service.Import(context.Background(), strings.NewReader("name,phone\nАнна,+7900\n"))
	if !errors.Is(err, ErrCSVMissingHeader) {
		t.Fatalf("ожидался ErrCSVMissingHeader, получено: %v", err)
	}
}

func TestImport_UnknownColumns(t *testing.T) {
	service := NewMembersCSVService(newMockCSVUserRepo(), newMockImportLogRepo())

	result, err := service.Import(context.Background(), strings.NewReader("name,email,favorite_color\nАнна,anna@example.com,синий\n"))
	if err != nil {
		t.Fatalf("ошибка импорта: %v", err)
	}
	if len(result.Unknown) != 1 || result.Unknown[0] != "favorite_color" {
		t.Fatalf("неизвестная колонка не зафиксирована: %v", result.Unknown)
	}
}

func TestExport_Format(t *testing.T) {
	users := newMockCSVUserRepo()
	service := NewMembersCSVService(users, newMockImportLogRepo())

	users.byEmail["anna@example.com"] = &models.User{
		ID: 1, FullName: "Анна Петрова", Email: "anna@example.com",
		Phone: "+7 900 000-00-01", Address: "Москва", Role: "member",
	}

	data, err := service.Export(context.Background())
	if err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "name,email,phone,address,role" {
		t.Fatalf("неверный заголовок: %s", lines[0])
	}
	if len(lines) != 2 || !strings.Contains(lines[1], "anna@example.com") {
		t.Fatalf("неверное тело экспорта: %q", lines)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	source := newMockCSVUserRepo()
	service := NewMembersCSVService(source, newMockImportLogRepo())

	source.byEmail["anna@example.com"] = &models.User{
		ID: 1, FullName: "Анна Петрова", Email: "anna@example.com", Role: "member",
	}
	source.byEmail["ivan@example.com"] = &models.User{
		ID: 2, FullName: "Иван Сидоров", Email: "ivan@example.com", Role: "admin",
	}

	data, err := service.Export(context.Background())
	if err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}

	target := newMockCSVUserRepo()
	importer := NewMembersCSVService(target, newMockImportLogRepo())

	result, err := importer.Import(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ошибка обратного импорта: %v", err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Fatalf("круг экспорт-импорт потерял данные: %+v", result)
	}
	if target.byEmail["ivan@example.com"].Role != "admin" {
		t.Fatal("роль потерялась на круге экспорт-импорт")
	}
}
