package model

import "time"

// Showtime 場次模型：電影 + 影廳 + 時間 + 票價。
// 座位在場次建立時依影廳幾何一次生成，之後不再增減。
type Showtime struct {
	ID           int       `json:"id" db:"id"`
	MovieID      int       `json:"movie_id" db:"movie_id"`
	HallID       int       `json:"hall_id" db:"hall_id"`
	ShowDateTime time.Time `json:"show_datetime" db:"show_datetime"`
	ViewType     string    `json:"view_type" db:"view_type"` // 2D, 3D, IMAX
	Price        float64   `json:"price" db:"price"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type CreateShowtimeRequest struct {
	MovieID      int     `json:"movie_id" binding:"required"`
	HallID       int     `json:"hall_id" binding:"required"`
	ShowDateTime string  `json:"show_datetime" binding:"required"`
	ViewType     string  `json:"view_type"`
	Price        float64 `json:"price" binding:"required,gt=0"`
}

// SeatMapResponse 場次座位圖回應
type SeatMapResponse struct {
	ShowtimeID int         `json:"showtime_id"`
	Price      float64     `json:"price"`
	Seats      []*SeatView `json:"seats"`
}
