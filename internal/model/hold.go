package model

import (
	"time"

	"github.com/google/uuid"
)

// Hold 是單一 session 對一組座位的限時佔用。
// Hold 沒有自己的資料表：它完全由座位列上的 hold 欄位推導，
// 所以 hold 與座位狀態永遠不會不一致。
type Hold struct {
	ID         uuid.UUID `json:"hold_id"`
	OwnerToken string    `json:"-"`
	ShowtimeID int       `json:"showtime_id"`
	SeatIDs    []int     `json:"seat_ids"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired 檢查 hold 是否已過期
func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// HoldFromSeats 由座位列重建 hold。座位必須全部屬於同一個 hold。
func HoldFromSeats(seats []*Seat) *Hold {
	if len(seats) == 0 {
		return nil
	}
	first := seats[0]
	if first.HoldID == nil || first.HoldOwner == nil || first.HoldExpiresAt == nil {
		return nil
	}
	h := &Hold{
		ID:         *first.HoldID,
		OwnerToken: *first.HoldOwner,
		ShowtimeID: first.ShowtimeID,
		ExpiresAt:  *first.HoldExpiresAt,
	}
	if first.HoldPlacedAt != nil {
		h.CreatedAt = *first.HoldPlacedAt
	}
	for _, s := range seats {
		h.SeatIDs = append(h.SeatIDs, s.ID)
	}
	return h
}

// PlaceHoldRequest 下座位保留的請求
type PlaceHoldRequest struct {
	SeatIDs []int `json:"seat_ids" binding:"required,min=1"`
}

// HoldResponse 保留成功的回應
type HoldResponse struct {
	HoldID     uuid.UUID `json:"hold_id"`
	ShowtimeID int       `json:"showtime_id"`
	SeatIDs    []int     `json:"seat_ids"`
	ExpiresAt  string    `json:"expires_at"`
	TotalPrice float64   `json:"total_price"`
}
