// Package model содержит доменные сущности эскроу-бота.
package model

// DealStatus описывает статус сделки в жизненном цикле эскроу.
type DealStatus string

const (
	DealStatusOpen       DealStatus = "open"
	DealStatusPaid       DealStatus = "paid"
	DealStatusShipped    DealStatus = "shipped"
	DealStatusReceived   DealStatus = "received"
	DealStatusPayoutDone DealStatus = "payout_done"
	DealStatusCancelled  DealStatus = "cancelled"
)

// IsTerminal сообщает, является ли статус конечным.
func (s DealStatus) IsTerminal() bool {
	return s == DealStatusPayoutDone || s == DealStatusCancelled
}

// Deal описывает сделку между продавцом и покупателем.
// Amount хранится десятичной строкой в том виде, в котором её ввёл продавец.
type Deal struct {
	ID           int64
	DealToken    string
	SellerID     int64
	SellerName   string
	Amount       string
	Description  string
	Status       DealStatus
	BuyerID      *int64
	PaymentToken string
	CreatedAt    int64
}

// DealSummary содержит краткое представление сделки для списка "Meine Deals".
type DealSummary struct {
	DealToken   string
	Amount      string
	Description string
	Status      DealStatus
}

// SessionFlow называет многошаговый диалоговый сценарий.
type SessionFlow string

// SessionStep называет текущий шаг внутри сценария.
type SessionStep string

const (
	FlowCreateDeal SessionFlow = "create-deal"

	StepAwaitingAmount      SessionStep = "awaiting-amount"
	StepAwaitingDescription SessionStep = "awaiting-description"
)

// Session хранит эфемерное состояние диалога одного пользователя.
// Сессия живёт только между шагами сценария и никогда не попадает в БД.
type Session struct {
	Flow   SessionFlow `json:"flow"`
	Step   SessionStep `json:"step"`
	Amount string      `json:"amount,omitempty"`
}
