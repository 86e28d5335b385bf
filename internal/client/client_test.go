package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clubhub/internal/models"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data, "error": errMsg})
}

func TestClient_EnvelopeUnwrap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Fatalf("неожиданный путь: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token123" {
			t.Fatalf("нет bearer-токена: %q", got)
		}
		writeEnvelope(w, http.StatusOK, []models.User{{ID: 1, FullName: "Анна Петрова"}}, "")
	}))
	defer srv.Close()

	session := &Session{}
	session.SetToken("token123")
	c := New(srv.URL, session)

	users, err := c.Users(context.Background())
	if err != nil {
		t.Fatalf("ошибка запроса: %v", err)
	}
	if len(users) != 1 || users[0].FullName != "Анна Петрова" {
		t.Fatalf("конверт развёрнут неверно: %+v", users)
	}
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Неверный или просроченный токен")
	}))
	defer srv.Close()

	session := &Session{}
	session.SetToken("stale")
	c := New(srv.URL, session)

	_, err := c.Users(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ожидался ErrUnauthorized, получено: %v", err)
	}
	if session.Token() != "" {
		t.Fatal("сессия должна быть сброшена после 401")
	}
}

func TestClient_HTMLResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	_, err := c.Settings(context.Background())
	if !errors.Is(err, ErrNotJSON) {
		t.Fatalf("ожидался ErrNotJSON для HTML-ответа, получено: %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, nil, "следующее расписание уже создано")
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	err := c.CreateNextSchedule(context.Background(), &CreateScheduleInput{Title: "Октябрь"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ожидался APIError, получено: %v", err)
	}
	if apiErr.Status != http.StatusConflict || !strings.Contains(apiErr.Message, "уже создано") {
		t.Fatalf("неверная ошибка API: %+v", apiErr)
	}
}

func TestClient_ValidateTokenStoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["token"] != "one-time" {
			t.Fatalf("токен не передан: %v", req)
		}
		writeEnvelope(w, http.StatusOK, AuthResult{
			AccessToken: "jwt-token",
			User:        models.User{ID: 7, Role: "member"},
		}, "")
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	result, err := c.ValidateToken(context.Background(), "one-time")
	if err != nil {
		t.Fatalf("ошибка обмена токена: %v", err)
	}
	if result.User.ID != 7 {
		t.Fatalf("вернулся не тот участник: %+v", result.User)
	}
	if c.Session().Token() != "jwt-token" {
		t.Fatal("access-токен не сохранён в сессии")
	}
}

func TestClient_ExportCSVBlob(t *testing.T) {
	const body = "name,email,phone,address,role\nАнна Петрова,anna@example.com,,,member\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="members-export.csv"`)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	filename, data, err := c.ExportMembersCSV(context.Background())
	if err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}
	if filename != "members-export.csv" {
		t.Fatalf("неверное имя файла: %s", filename)
	}
	if string(data) != body {
		t.Fatal("CSV должен пройти без изменений")
	}
}

func TestClient_ImportCSVMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("ожидался multipart, получено: %s", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("файл не передан: %v", err)
		}
		defer file.Close()
		if header.Filename != "members.csv" {
			t.Fatalf("неверное имя файла: %s", header.Filename)
		}
		writeEnvelope(w, http.StatusOK, models.ImportResult{Total: 1, Created: 1}, "")
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	result, err := c.ImportMembersCSV(context.Background(), "members.csv",
		strings.NewReader("name,email\nАнна,anna@example.com\n"))
	if err != nil {
		t.Fatalf("ошибка импорта: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("неверный результат импорта: %+v", result)
	}
}
