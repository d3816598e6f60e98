package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/getMe" {
			t.Errorf("path = %s, want /botTOKEN/getMe", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"id":7,"first_name":"GiftElf","username":"giftelf_bot"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TOKEN")

	me, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe error: %v", err)
	}
	if me.ID != 7 || me.Username != "giftelf_bot" {
		t.Fatalf("GetMe = %+v", me)
	}
}

func TestSendMessage(t *testing.T) {
	var got OutgoingMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("path = %s, want /botTOKEN/sendMessage", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TOKEN")

	msg := OutgoingMessage{
		ChatID:    100,
		Text:      "Menü:",
		ParseMode: "Markdown",
		ReplyMarkup: &InlineKeyboardMarkup{
			InlineKeyboard: [][]InlineKeyboardButton{
				{{Text: "Öffnen", CallbackData: "open:a1b2c3d4e5f6"}},
			},
		},
	}
	if err := client.SendMessage(context.Background(), msg); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}

	if got.ChatID != 100 || got.Text != "Menü:" || got.ParseMode != "Markdown" {
		t.Fatalf("sent payload = %+v", got)
	}
	if got.ReplyMarkup == nil || got.ReplyMarkup.InlineKeyboard[0][0].CallbackData != "open:a1b2c3d4e5f6" {
		t.Fatalf("reply markup lost: %+v", got.ReplyMarkup)
	}
}

func TestGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Offset  int64 `json:"offset"`
			Timeout int   `json:"timeout"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Offset != 5 || req.Timeout != 30 {
			t.Errorf("request = %+v, want offset 5 timeout 30", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":5,"message":{"message_id":1,"from":{"id":100,"first_name":"Alice"},"chat":{"id":100},"text":"/start"}},
			{"update_id":6,"callback_query":{"id":"cb-1","from":{"id":100,"first_name":"Alice"},"data":"my_deals"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TOKEN")

	updates, err := client.GetUpdates(context.Background(), 5, 30)
	if err != nil {
		t.Fatalf("GetUpdates error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/start" {
		t.Fatalf("first update = %+v", updates[0])
	}
	if updates[1].CallbackQuery == nil || updates[1].CallbackQuery.Data != "my_deals" {
		t.Fatalf("second update = %+v", updates[1])
	}
}

func TestAnswerCallbackQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CallbackQueryID string `json:"callback_query_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.CallbackQueryID != "cb-1" {
			t.Errorf("callback id = %q, want cb-1", req.CallbackQueryID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TOKEN")

	if err := client.AnswerCallbackQuery(context.Background(), "cb-1"); err != nil {
		t.Fatalf("AnswerCallbackQuery error: %v", err)
	}
}

func TestAPIErrorSurfacesDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Ответ с ok:false приходит со статусом 200, ретраев не будет.
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TOKEN")

	err := client.SendMessage(context.Background(), OutgoingMessage{ChatID: 1, Text: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("error %q must contain the API description", err)
	}
}
