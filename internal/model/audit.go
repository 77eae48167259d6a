package model

import "time"

// AuditEvent 稽核事件。發佈端 fire-and-forget：任何發佈失敗都只記 log，
// 絕不回滾訂位狀態。
type AuditEvent struct {
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`      // Create, Update, Delete, Confirm...
	EntityType string    `json:"entity_type"` // Movie, Showtime, Ticket, Hold...
	EntityID   *int      `json:"entity_id,omitempty"`
	Details    *string   `json:"details,omitempty"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActionLog 稽核事件落地後的資料列
type ActionLog struct {
	ID         int       `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   *int      `json:"entity_id,omitempty" db:"entity_id"`
	Details    *string   `json:"details,omitempty" db:"details"`
	IPAddress  *string   `json:"ip_address,omitempty" db:"ip_address"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
