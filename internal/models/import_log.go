package models

import "time"

// Действия по строке CSV-импорта.
const (
	ImportCreated = "created"
	ImportUpdated = "updated"
	ImportSkipped = "skipped"
	ImportError   = "error"
)

// ImportRowEntry — результат обработки одной строки импорта.
type ImportRowEntry struct {
	Row    int    `json:"row"`
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ImportResult — итог одного прогона импорта.
type ImportResult struct {
	RunID   string           `json:"run_id"`
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Unknown []string         `json:"unknown_columns,omitempty"`
	Log     []ImportRowEntry `json:"log"`
}

// ImportLogRecord — строка журнала импорта в базе.
type ImportLogRecord struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	RowNum    int       `json:"row_num"`
	Action    string    `json:"action"`
	Email     string    `json:"email,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
