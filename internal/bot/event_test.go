package bot

import (
	"testing"

	"github.com/giftelf/escrow-bot/internal/telegram"
)

const testOperatorID int64 = 42

func messageUpdate(userID, chatID int64, text string) telegram.Update {
	return telegram.Update{
		Message: &telegram.Message{
			From: &telegram.User{ID: userID, FirstName: "Alice"},
			Chat: telegram.Chat{ID: chatID},
			Text: text,
		},
	}
}

func callbackUpdate(userID, chatID int64, callbackID, data string) telegram.Update {
	return telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:      callbackID,
			From:    telegram.User{ID: userID, FirstName: "Alice"},
			Message: &telegram.Message{Chat: telegram.Chat{ID: chatID}},
			Data:    data,
		},
	}
}

func TestClassifyStart(t *testing.T) {
	ev := Classify(messageUpdate(100, 100, "/start"), testOperatorID)

	start, ok := ev.(StartSession)
	if !ok {
		t.Fatalf("event = %T, want StartSession", ev)
	}
	if start.UserID != 100 || start.ChatID != 100 {
		t.Fatalf("event = %+v", start)
	}
}

func TestClassifyJoinLink(t *testing.T) {
	ev := Classify(messageUpdate(200, 200, "/start join_a1b2c3d4e5f6"), testOperatorID)

	join, ok := ev.(JoinViaLink)
	if !ok {
		t.Fatalf("event = %T, want JoinViaLink", ev)
	}
	if join.DealToken != "a1b2c3d4e5f6" {
		t.Fatalf("deal token = %q", join.DealToken)
	}
	if join.UserID != 200 {
		t.Fatalf("user = %d, want 200", join.UserID)
	}
}

func TestClassifyButtonPress(t *testing.T) {
	ev := Classify(callbackUpdate(100, 100, "cb-1", "open:a1b2c3d4e5f6"), testOperatorID)

	press, ok := ev.(ButtonPress)
	if !ok {
		t.Fatalf("event = %T, want ButtonPress", ev)
	}
	if press.Action != "open" || press.Token != "a1b2c3d4e5f6" {
		t.Fatalf("event = %+v", press)
	}
	if press.CallbackID != "cb-1" {
		t.Fatalf("callback id = %q", press.CallbackID)
	}
}

func TestClassifyMenuButtonHasNoToken(t *testing.T) {
	ev := Classify(callbackUpdate(100, 100, "cb-2", "create_deal"), testOperatorID)

	press, ok := ev.(ButtonPress)
	if !ok {
		t.Fatalf("event = %T, want ButtonPress", ev)
	}
	if press.Action != "create_deal" || press.Token != "" {
		t.Fatalf("event = %+v", press)
	}
}

func TestClassifyOperatorCommand(t *testing.T) {
	ev := Classify(messageUpdate(testOperatorID, testOperatorID, "/paid a1b2c3d4e5f6"), testOperatorID)

	cmd, ok := ev.(OperatorCommand)
	if !ok {
		t.Fatalf("event = %T, want OperatorCommand", ev)
	}
	if cmd.Verb != "paid" || cmd.Token != "a1b2c3d4e5f6" {
		t.Fatalf("event = %+v", cmd)
	}
}

// Привилегированные команды от постороннего пользователя выглядят как обычный
// текст: само их существование не раскрывается.
func TestClassifyOperatorCommandFromStranger(t *testing.T) {
	for _, text := range []string{"/paid a1b2c3d4e5f6", "/payout a1b2c3d4e5f6", "/cancel a1b2c3d4e5f6"} {
		ev := Classify(messageUpdate(555, 555, text), testOperatorID)

		msg, ok := ev.(TextMessage)
		if !ok {
			t.Fatalf("Classify(%q) = %T, want TextMessage", text, ev)
		}
		if msg.Text != text {
			t.Fatalf("text = %q, want %q", msg.Text, text)
		}
	}
}

func TestClassifyOperatorCommandMalformed(t *testing.T) {
	// Без токена или с лишними аргументами команда оператора не распознаётся.
	for _, text := range []string{"/paid", "/paid a b", "/unknown a1b2"} {
		ev := Classify(messageUpdate(testOperatorID, testOperatorID, text), testOperatorID)
		if _, ok := ev.(OperatorCommand); ok {
			t.Fatalf("Classify(%q) must not yield OperatorCommand", text)
		}
	}
}

func TestClassifyPlainText(t *testing.T) {
	ev := Classify(messageUpdate(100, 100, "10.5"), testOperatorID)

	msg, ok := ev.(TextMessage)
	if !ok {
		t.Fatalf("event = %T, want TextMessage", ev)
	}
	if msg.Text != "10.5" || msg.DisplayName != "Alice" {
		t.Fatalf("event = %+v", msg)
	}
}

func TestClassifyEmptyUpdate(t *testing.T) {
	if ev := Classify(telegram.Update{}, testOperatorID); ev != nil {
		t.Fatalf("event = %v, want nil", ev)
	}
	if ev := Classify(telegram.Update{Message: &telegram.Message{Text: "hi"}}, testOperatorID); ev != nil {
		t.Fatalf("event without sender = %v, want nil", ev)
	}
}
