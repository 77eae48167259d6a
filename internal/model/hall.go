package model

import "time"

// Hall 影廳模型。TotalRows 與 SeatsPerRow 決定場次建立時的座位幾何，
// 一旦有場次售票就不應再修改。
type Hall struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	TotalRows   int        `json:"total_rows" db:"total_rows"`
	SeatsPerRow int        `json:"seats_per_row" db:"seats_per_row"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Capacity 影廳總座位數
func (h *Hall) Capacity() int {
	return h.TotalRows * h.SeatsPerRow
}

type CreateHallRequest struct {
	Name        string `json:"name" binding:"required"`
	TotalRows   int    `json:"total_rows" binding:"required,min=1,max=16"`
	SeatsPerRow int    `json:"seats_per_row" binding:"required,min=1,max=50"`
}

type UpdateHallParams struct {
	Name *string `json:"name"`
}
