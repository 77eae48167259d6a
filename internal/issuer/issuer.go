package issuer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go-cinema-booking/internal/model"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/google/uuid"
)

// NumberExistsFunc 查詢票號是否已被使用，由 ticket repository 提供
type NumberExistsFunc func(ctx context.Context, ticketNumber string) (bool, error)

// TicketIssuer 配發票號與條碼。純粹的配號步驟：不碰座位狀態，
// 座位轉換由 Reservation Coordinator 在同一交易內完成。
type TicketIssuer interface {
	// Issue 為一組座位產生票券草稿（尚未入庫）
	Issue(ctx context.Context, ownerToken string, showtimeID int, seatIDs []int, price float64) ([]*model.Ticket, error)
}

type TicketIssuerImpl struct {
	numberExists NumberExistsFunc
}

func NewTicketIssuer(numberExists NumberExistsFunc) TicketIssuer {
	return &TicketIssuerImpl{
		numberExists: numberExists,
	}
}

// maxNumberAttempts 票號碰撞時的重試上限。32 bits 隨機空間，
// 碰撞機率極低，連續失敗代表亂數源或查詢壞了。
const maxNumberAttempts = 5

func (i *TicketIssuerImpl) Issue(ctx context.Context, ownerToken string, showtimeID int, seatIDs []int, price float64) ([]*model.Ticket, error) {
	if len(seatIDs) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tickets := make([]*model.Ticket, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		number, err := i.allocateNumber(ctx)
		if err != nil {
			return nil, err
		}

		barcode, err := generateBarcode()
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, &model.Ticket{
			TicketID:     uuid.New(),
			TicketNumber: number,
			OwnerToken:   ownerToken,
			ShowtimeID:   showtimeID,
			SeatID:       seatID,
			Price:        price,
			Status:       model.TicketStatusConfirmed,
			Barcode:      barcode,
		})
	}

	return tickets, nil
}

// allocateNumber 產生 TKT-YYYYMMDD-XXXXXXXX 格式的票號並查重
func (i *TicketIssuerImpl) allocateNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		suffix, err := randomHex(4)
		if err != nil {
			return "", err
		}

		number := fmt.Sprintf("TKT-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(suffix))

		exists, err := i.numberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}

	return "", fmt.Errorf("allocate ticket number: %w", apperrors.ErrInternalServerError)
}

func generateBarcode() (string, error) {
	raw, err := randomHex(10)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(raw), nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
