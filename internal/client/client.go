// Package client — типизированная обёртка над HTTP API для фронтенда и интеграций.
// Все ответы сервера приходят в конверте {data, error}; обёртка его разворачивает.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"clubhub/internal/models"
)

var (
	// ErrUnauthorized — сервер ответил 401. Сессия при этом сбрасывается,
	// вызывающий сам решает, куда отправить пользователя.
	ErrUnauthorized = errors.New("требуется вход")
	// ErrNotJSON — сервер вернул не-JSON (обычно HTML от прокси или страница ошибки).
	ErrNotJSON = errors.New("ответ сервера не является JSON")
)

// APIError — ошибка, которую вернул сам API (поле error конверта).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Session хранит access-токен. Безопасна для конкурентного использования.
type Session struct {
	mu    sync.Mutex
	token string
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

func New(baseURL string, session *Session) *Client {
	if session == nil {
		session = &Session{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		session:    session,
	}
}

func (c *Client) Session() *Session { return c.session }

// envelope — конверт ответа сервера.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// do выполняет JSON-запрос и разворачивает конверт в out (out может быть nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("сетевая ошибка: %w", err)
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

func (c *Client) authorize(req *http.Request) {
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		return ErrUnauthorized
	}

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ct != "application/json" {
		return fmt.Errorf("%w: %s", ErrNotJSON, ct)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// --- Auth ---

type AuthResult struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// SendLoginLink запрашивает письмо со ссылкой для входа.
// Сервер отвечает одинаково вне зависимости от того, существует ли email.
func (c *Client) SendLoginLink(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/send-login-link", map[string]string{"email": email}, nil)
}

// ValidateToken обменивает одноразовый токен из письма на access-токен
// и сохраняет его в сессии.
func (c *Client) ValidateToken(ctx context.Context, token string) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/validate-token", map[string]string{"token": token}, &result); err != nil {
		return nil, err
	}
	c.session.SetToken(result.AccessToken)
	return &result, nil
}

// --- Участники ---

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &users)
	return users, err
}

func (c *Client) AssignableUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/api/users/assignable", nil, &users)
	return users, err
}

func (c *Client) User(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+strconv.Itoa(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var created models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, input *models.UpdateUserRequest) error {
	return c.do(ctx, http.MethodPut, "/api/users/"+strconv.Itoa(id), input, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+strconv.Itoa(id), nil, nil)
}

// --- Настройки ---

func (c *Client) Settings(ctx context.Context) (map[string]string, error) {
	var settings map[string]string
	err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings)
	return settings, err
}

func (c *Client) Setting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := c.do(ctx, http.MethodGet, "/api/settings/"+key, nil, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

func (c *Client) UpdateSettings(ctx context.Context, values map[string]string) error {
	return c.do(ctx, http.MethodPut, "/api/settings", values, nil)
}

func (c *Client) UpdateSetting(ctx context.Context, key, value string) error {
	return c.do(ctx, http.MethodPut, "/api/settings/"+key, map[string]string{"value": value}, nil)
}

// --- Расписания ---

func (c *Client) CurrentSchedule(ctx context.Context) (*models.Schedule, error) {
	var sched models.Schedule
	if err := c.do(ctx, http.MethodGet, "/api/schedules/current", nil, &sched); err != nil {
		return nil, err
	}
	return &sched, nil
}

func (c *Client) NextSchedule(ctx context.Context) (*models.Schedule, error) {
	var sched models.Schedule
	if err := c.do(ctx, http.MethodGet, "/api/schedules/next", nil, &sched); err != nil {
		return nil, err
	}
	return &sched, nil
}

// CreateScheduleInput — данные нового расписания. Даты в формате YYYY-MM-DD.
type CreateScheduleInput struct {
	Title       string                `json:"title"`
	Assignments []AssignmentSlotInput `json:"assignments"`
}

type AssignmentSlotInput struct {
	DanceDate string `json:"dance_date"`
	Duty      string `json:"duty"`
	UserID    *int   `json:"user_id,omitempty"`
}

func (c *Client) CreateNextSchedule(ctx context.Context, input *CreateScheduleInput) error {
	return c.do(ctx, http.MethodPost, "/api/schedules/next", input, nil)
}

func (c *Client) UpdateAssignment(ctx context.Context, id int, input *models.UpdateAssignmentRequest) error {
	return c.do(ctx, http.MethodPut, "/api/schedules/assignments/"+strconv.Itoa(id), input, nil)
}

func (c *Client) PromoteSchedule(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/schedules/promote", nil, nil)
}

// --- CSV ---

// ImportMembersCSV загружает CSV с участниками multipart-формой.
func (c *Client) ImportMembersCSV(ctx context.Context, filename string, file io.Reader) (*models.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users/import", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("сетевая ошибка: %w", err)
	}
	defer resp.Body.Close()

	var result models.ImportResult
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportMembersCSV скачивает CSV участников как есть, без JSON-конверта.
// Имя файла берётся из Content-Disposition.
func (c *Client) ExportMembersCSV(ctx context.Context) (filename string, data []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/export/csv", nil)
	if err != nil {
		return "", nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("сетевая ошибка: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		return "", nil, ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		// ошибки и тут приходят в JSON-конверте
		var env envelope
		if derr := json.NewDecoder(resp.Body).Decode(&env); derr == nil && env.Error != "" {
			return "", nil, &APIError{Status: resp.StatusCode, Message: env.Error}
		}
		return "", nil, &APIError{Status: resp.StatusCode, Message: resp.Status}
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	filename = "members-export.csv"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, perr := mime.ParseMediaType(cd); perr == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}
	return filename, data, nil
}

// --- Журнал импорта ---

func (c *Client) ImportLogs(ctx context.Context) ([]models.ImportLogRecord, error) {
	var records []models.ImportLogRecord
	err := c.do(ctx, http.MethodGet, "/api/maintenance/import-logs", nil, &records)
	return records, err
}

func (c *Client) ClearImportLogs(ctx context.Context) (int64, error) {
	var result struct {
		Deleted int64 `json:"deleted"`
	}
	err := c.do(ctx, http.MethodPost, "/api/maintenance/clear-import-logs", nil, &result)
	return result.Deleted, err
}

// SendTestEmail просит сервер отправить тестовое письмо (проверка SMTP).
func (c *Client) SendTestEmail(ctx context.Context, to string) error {
	return c.do(ctx, http.MethodPost, "/api/email/test", map[string]string{"to": to}, nil)
}

// --- Система ---

func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var status map[string]string
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &status)
	return status, err
}
