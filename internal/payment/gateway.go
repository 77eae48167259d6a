package payment

import "context"

// Card 付款卡片資料，視為不透明的外部輸入
type Card struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVC         string
	NameOnCard  string
}

// Authorization 預授權結果
type Authorization struct {
	TransactionID string
	Amount        float64
}

// Gateway 金流協作者的介面契約。兩段式收款：
// Authorize 只圈存金額，Capture 在座位全部確定售出後才請款，
// 中途失敗用 Void 釋放圈存。實作可能跨網路，任何逾時
// 由呼叫端視同 Declined。
type Gateway interface {
	Authorize(ctx context.Context, amount float64, card Card) (*Authorization, error)
	Capture(ctx context.Context, transactionID string) error
	Void(ctx context.Context, transactionID string) error
}

// DeclinedError 授權被拒絕的原因
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return "payment declined: " + e.Reason
}
