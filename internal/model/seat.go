package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SeatStatus 座位狀態類型
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusHeld      SeatStatus = "held"
	SeatStatusBooked    SeatStatus = "booked"
)

// IsValid 驗證狀態是否有效
func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusHeld, SeatStatusBooked:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態。
// held 只能經由確認(→booked)或逾時/取消(→available)離開；
// booked 只能在退票時回到 available。
func (s SeatStatus) CanTransitionTo(target SeatStatus) bool {
	transitions := map[SeatStatus][]SeatStatus{
		SeatStatusAvailable: {SeatStatusHeld},
		SeatStatusHeld:      {SeatStatusAvailable, SeatStatusBooked},
		SeatStatusBooked:    {SeatStatusAvailable},
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

// Seat 座位模型。座位列是庫存的唯一真相：hold 與 ticket 的關聯
// 都記在座位列上，任何狀態轉換都是對單一列的 compare-and-set。
type Seat struct {
	ID                   int        `json:"id" db:"id"`
	ShowtimeID           int        `json:"showtime_id" db:"showtime_id"`
	HallID               int        `json:"hall_id" db:"hall_id"`
	Row                  string     `json:"row" db:"row_label"`
	Number               int        `json:"number" db:"number"`
	Status               SeatStatus `json:"status" db:"status"`
	IsWheelchairAccessible bool     `json:"is_wheelchair_accessible" db:"is_wheelchair_accessible"`
	IsVIP                bool       `json:"is_vip" db:"is_vip"`
	HoldID               *uuid.UUID `json:"hold_id,omitempty" db:"hold_id"`
	HoldOwner            *string    `json:"-" db:"hold_owner"`
	HoldExpiresAt        *time.Time `json:"hold_expires_at,omitempty" db:"hold_expires_at"`
	HoldPlacedAt         *time.Time `json:"-" db:"hold_placed_at"`
	TicketID             *uuid.UUID `json:"-" db:"ticket_id"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// Label 回傳人類可讀的座位標籤，例如 "A7"
func (s *Seat) Label() string {
	return s.Row + strconv.Itoa(s.Number)
}

// HoldExpired 檢查座位上的 hold 是否已逾時
func (s *Seat) HoldExpired(now time.Time) bool {
	return s.Status == SeatStatusHeld && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now)
}

// SeatState 是 compare-and-set 的比較鍵：狀態加上持有的 hold。
// HoldID 為 nil 代表「無 hold」也是比較條件的一部分，
// 因此 sweeper 與 confirm 對同一座位的競爭恰好只有一方能贏。
type SeatState struct {
	Status SeatStatus
	HoldID *uuid.UUID
}

// AvailableState 空位的比較鍵
func AvailableState() SeatState {
	return SeatState{Status: SeatStatusAvailable}
}

// HeldState 被特定 hold 佔用的比較鍵
func HeldState(holdID uuid.UUID) SeatState {
	return SeatState{Status: SeatStatusHeld, HoldID: &holdID}
}

// BookedState 已售出座位的比較鍵（退票路徑使用）
func BookedState(holdID *uuid.UUID) SeatState {
	return SeatState{Status: SeatStatusBooked, HoldID: holdID}
}

// SeatUpdate 是 compare-and-set 的目標狀態，未列出的欄位一律清空。
type SeatUpdate struct {
	Status        SeatStatus
	HoldID        *uuid.UUID
	HoldOwner     *string
	HoldExpiresAt *time.Time
	HoldPlacedAt  *time.Time
	TicketID      *uuid.UUID
}

// HoldUpdate 產生「放置 hold」的目標狀態
func HoldUpdate(holdID uuid.UUID, owner string, placedAt, expiresAt time.Time) SeatUpdate {
	return SeatUpdate{
		Status:        SeatStatusHeld,
		HoldID:        &holdID,
		HoldOwner:     &owner,
		HoldExpiresAt: &expiresAt,
		HoldPlacedAt:  &placedAt,
	}
}

// ReleaseUpdate 產生「釋放座位」的目標狀態
func ReleaseUpdate() SeatUpdate {
	return SeatUpdate{Status: SeatStatusAvailable}
}

// BookUpdate 產生「售出座位」的目標狀態
func BookUpdate(ticketID uuid.UUID) SeatUpdate {
	return SeatUpdate{Status: SeatStatusBooked, TicketID: &ticketID}
}

// SeatView 座位圖的回應格式
type SeatView struct {
	ID                   int    `json:"id"`
	Row                  string `json:"row"`
	Number               int    `json:"number"`
	Label                string `json:"label"`
	Status               string `json:"status"`
	IsWheelchairAccessible bool `json:"is_wheelchair_accessible"`
	IsVIP                bool   `json:"is_vip"`
}
