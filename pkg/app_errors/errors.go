package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrHallNotFound     = errors.New("cinema hall not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrHoldNotFound     = errors.New("hold not found")

	// ErrSeatConflict 座位 compare-and-set 失敗：預期狀態與當前狀態不符。
	// 只在 repository 層出現，service 層必須轉換成領域錯誤，不可外漏。
	ErrSeatConflict = errors.New("seat state conflict")

	ErrSeatUnavailable     = errors.New("seat unavailable")
	ErrHoldExpired         = errors.New("hold expired")
	ErrNotOwner            = errors.New("not hold owner")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrReservationRaceLost = errors.New("reservation race lost")

	ErrInvalidTicketStatus = errors.New("invalid ticket status transition")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)

// SeatUnavailableError 帶出衝突座位的 ID，讓前端可以標示哪些座位被搶走。
type SeatUnavailableError struct {
	SeatIDs []int
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %v", e.SeatIDs)
}

func (e *SeatUnavailableError) Unwrap() error {
	return ErrSeatUnavailable
}
