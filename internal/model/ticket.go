package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusUsed      TicketStatus = "used"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusConfirmed, TicketStatusCancelled, TicketStatusUsed:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusConfirmed: {TicketStatusCancelled, TicketStatusUsed},
		TicketStatusCancelled: {}, // 不能轉換到任何狀態
		TicketStatusUsed:      {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Ticket 票券模型。只有 Reservation Coordinator 成功確認後才會產生，
// 發出後除了狀態轉換一律不可變。
type Ticket struct {
	ID           int          `json:"id" db:"id"`
	TicketID     uuid.UUID    `json:"ticket_id" db:"ticket_id"`
	TicketNumber string       `json:"ticket_number" db:"ticket_number"`
	OwnerToken   string       `json:"-" db:"owner_token"`
	ShowtimeID   int          `json:"showtime_id" db:"showtime_id"`
	SeatID       int          `json:"seat_id" db:"seat_id"`
	Price        float64      `json:"price" db:"price"`
	Status       TicketStatus `json:"status" db:"status"`
	Barcode      string       `json:"barcode" db:"barcode"`
	IssuedAt     time.Time    `json:"issued_at" db:"issued_at"`
	ValidatedAt  *time.Time   `json:"validated_at,omitempty" db:"validated_at"`
}

// TicketResponse 票券回應
type TicketResponse struct {
	TicketNumber string  `json:"ticket_number"`
	ShowtimeID   int     `json:"showtime_id"`
	SeatID       int     `json:"seat_id"`
	SeatLabel    string  `json:"seat_label,omitempty"`
	Price        float64 `json:"price"`
	Status       string  `json:"status"`
	Barcode      string  `json:"barcode"`
	IssuedAt     string  `json:"issued_at"`
}

// ConfirmRequest 確認訂位（付款）的請求
type ConfirmRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	ExpiryMonth int   `json:"expiry_month" binding:"required,min=1,max=12"`
	ExpiryYear  int   `json:"expiry_year" binding:"required"`
	CVC         string `json:"cvc" binding:"required"`
	NameOnCard  string `json:"name_on_card" binding:"required"`
}
