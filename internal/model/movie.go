package model

import "time"

// Movie 電影目錄模型
type Movie struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Genre       string     `json:"genre" db:"genre"`
	Duration    int        `json:"duration" db:"duration"` // 片長（分鐘）
	ReleaseDate time.Time  `json:"release_date" db:"release_date"`
	PosterURL   *string    `json:"poster_url,omitempty" db:"poster_url"`
	Director    string     `json:"director" db:"director"`
	Actors      string     `json:"actors" db:"actors"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted 檢查電影是否已下架刪除
func (m *Movie) IsDeleted() bool {
	return m.DeletedAt != nil
}

type CreateMovieRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Genre       string  `json:"genre"`
	Duration    int     `json:"duration" binding:"required,min=1"`
	ReleaseDate string  `json:"release_date" binding:"required"`
	PosterURL   *string `json:"poster_url"`
	Director    string  `json:"director"`
	Actors      string  `json:"actors"`
}

type UpdateMovieParams struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	Duration    *int    `json:"duration"`
	PosterURL   *string `json:"poster_url"`
	Director    *string `json:"director"`
	Actors      *string `json:"actors"`
	IsActive    *bool   `json:"is_active"`
}

// MovieListQuery 分頁與搜尋參數
type MovieListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=10" binding:"min=1,max=100"`
}
