// Package bot маршрутизирует входящие события Telegram в машину состояний сделок
// и в сценарии диалоговых сессий.
package bot

import (
	"strings"

	"github.com/giftelf/escrow-bot/internal/telegram"
)

// Event — классифицированное входящее событие.
type Event interface {
	isEvent()
}

// StartSession — команда /start без параметров.
type StartSession struct {
	UserID int64
	ChatID int64
}

// JoinViaLink — переход покупателя по ссылке /start join_<token>.
type JoinViaLink struct {
	UserID    int64
	ChatID    int64
	DealToken string
}

// ButtonPress — нажатие inline-кнопки. Token пуст для кнопок меню.
type ButtonPress struct {
	UserID     int64
	ChatID     int64
	CallbackID string
	Action     string
	Token      string
}

// TextMessage — свободный текст, адресуемый активной сессии пользователя.
type TextMessage struct {
	UserID      int64
	ChatID      int64
	DisplayName string
	Text        string
}

// OperatorCommand — привилегированная команда оператора.
type OperatorCommand struct {
	UserID int64
	ChatID int64
	Verb   string
	Token  string
}

func (StartSession) isEvent()    {}
func (JoinViaLink) isEvent()     {}
func (ButtonPress) isEvent()     {}
func (TextMessage) isEvent()     {}
func (OperatorCommand) isEvent() {}

const joinPrefix = "/start join_"

var operatorVerbs = map[string]bool{
	"paid":   true,
	"payout": true,
	"cancel": true,
}

// Classify определяет форму входящего события. Команды оператора от чужого
// пользователя намеренно классифицируются как обычный текст: существование
// привилегированных команд не раскрывается.
func Classify(u telegram.Update, operatorID int64) Event {
	if cq := u.CallbackQuery; cq != nil {
		var chatID int64
		if cq.Message != nil {
			chatID = cq.Message.Chat.ID
		}

		action, token := cq.Data, ""
		if idx := strings.Index(cq.Data, ":"); idx >= 0 {
			action, token = cq.Data[:idx], cq.Data[idx+1:]
		}

		return ButtonPress{
			UserID:     cq.From.ID,
			ChatID:     chatID,
			CallbackID: cq.ID,
			Action:     action,
			Token:      token,
		}
	}

	msg := u.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, joinPrefix) {
		return JoinViaLink{
			UserID:    userID,
			ChatID:    chatID,
			DealToken: strings.TrimPrefix(text, joinPrefix),
		}
	}

	if text == "/start" {
		return StartSession{UserID: userID, ChatID: chatID}
	}

	if userID == operatorID && strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		verb := strings.TrimPrefix(fields[0], "/")
		if operatorVerbs[verb] && len(fields) == 2 {
			return OperatorCommand{
				UserID: userID,
				ChatID: chatID,
				Verb:   verb,
				Token:  fields[1],
			}
		}
	}

	return TextMessage{
		UserID:      userID,
		ChatID:      chatID,
		DisplayName: msg.From.FullName(),
		Text:        text,
	}
}
