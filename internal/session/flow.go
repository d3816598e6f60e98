package session

import (
	"github.com/giftelf/escrow-bot/internal/model"
	"github.com/giftelf/escrow-bot/internal/validation"
)

// StepOutcome описывает исход очередного шага сценария создания сделки.
type StepOutcome int

const (
	// OutcomeReprompt — ввод отклонён, шаг остаётся прежним.
	OutcomeReprompt StepOutcome = iota
	// OutcomeAmountAccepted — сумма принята, сценарий ждёт описание.
	OutcomeAmountAccepted
	// OutcomeCompleted — описание принято, сценарий завершён.
	OutcomeCompleted
)

// NewCreateDeal возвращает сессию сценария создания сделки на первом шаге.
func NewCreateDeal() *model.Session {
	return &model.Session{
		Flow: model.FlowCreateDeal,
		Step: model.StepAwaitingAmount,
	}
}

// AdvanceCreateDeal применяет текст пользователя к сессии сценария создания
// сделки и возвращает новую сессию вместе с исходом шага. Функция чистая:
// запись сессии и создание сделки остаются на вызывающей стороне.
func AdvanceCreateDeal(s model.Session, text string) (model.Session, StepOutcome) {
	switch s.Step {
	case model.StepAwaitingAmount:
		amount, ok := validation.NormalizeAmount(text)
		if !ok {
			return s, OutcomeReprompt
		}
		s.Amount = amount
		s.Step = model.StepAwaitingDescription
		return s, OutcomeAmountAccepted
	case model.StepAwaitingDescription:
		return s, OutcomeCompleted
	default:
		return s, OutcomeReprompt
	}
}
