package models

import "time"

// LoginToken — одноразовый токен входа по ссылке из письма.
// В базе хранится только sha256-хеш, сырой токен уходит в письмо.
type LoginToken struct {
	ID         int64      `json:"id"`
	UserID     int        `json:"user_id"`
	Email      string     `json:"email"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
