package payment

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// SimulatorGateway 模擬金流：驗卡規則沿用原系統（16 碼數字、未過期），
// 卡號尾碼 0002 固定拒絕，方便測試拒絕路徑。圈存紀錄保留在記憶體，
// Capture/Void 只接受還在圈存中的交易。
type SimulatorGateway struct {
	mu     sync.Mutex
	authed map[string]float64
}

func NewSimulatorGateway() *SimulatorGateway {
	return &SimulatorGateway{
		authed: make(map[string]float64),
	}
}

// declineSuffix 固定拒絕的測試卡尾碼
const declineSuffix = "0002"

func (g *SimulatorGateway) Authorize(ctx context.Context, amount float64, card Card) (*Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, &DeclinedError{Reason: "invalid amount"}
	}

	number := normalizeCardNumber(card.Number)
	if len(number) != 16 || !allDigits(number) {
		return nil, &DeclinedError{Reason: "card number must be 16 digits"}
	}

	if cardExpired(card.ExpiryMonth, card.ExpiryYear, time.Now()) {
		return nil, &DeclinedError{Reason: "card has expired"}
	}

	if l := len(card.CVC); l < 3 || l > 4 || !allDigits(card.CVC) {
		return nil, &DeclinedError{Reason: "invalid cvc"}
	}

	if strings.HasSuffix(number, declineSuffix) {
		return nil, &DeclinedError{Reason: "insufficient funds"}
	}

	auth := &Authorization{
		TransactionID: uuid.New().String(),
		Amount:        amount,
	}

	g.mu.Lock()
	g.authed[auth.TransactionID] = amount
	g.mu.Unlock()

	return auth, nil
}

func (g *SimulatorGateway) Capture(ctx context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.authed[transactionID]; !ok {
		return &DeclinedError{Reason: "unknown transaction"}
	}
	delete(g.authed, transactionID)
	return nil
}

func (g *SimulatorGateway) Void(ctx context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Void 幂等：未知交易視為已釋放
	delete(g.authed, transactionID)
	return nil
}

func normalizeCardNumber(number string) string {
	replacer := strings.NewReplacer(" ", "", "-", "")
	return replacer.Replace(number)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func cardExpired(month, year int, now time.Time) bool {
	if month < 1 || month > 12 {
		return true
	}
	// 卡片有效到到期月的最後一天
	endOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return !now.Before(endOfMonth)
}
