package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/giftelf/escrow-bot/internal/telegram"
)

type capturingHandler struct {
	updates []telegram.Update
}

func (h *capturingHandler) HandleUpdate(_ context.Context, u telegram.Update) {
	h.updates = append(h.updates, u)
}

const updateBody = `{"update_id":1,"message":{"message_id":1,"from":{"id":100,"first_name":"Alice"},"chat":{"id":100},"text":"/start"}}`

func TestHealthz(t *testing.T) {
	srv := NewServer(&capturingHandler{}, "", zap.NewNop())
	ts := httptest.NewServer(srv.SetupRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestWebhookDeliversUpdate(t *testing.T) {
	handler := &capturingHandler{}
	srv := NewServer(handler, "", zap.NewNop())
	ts := httptest.NewServer(srv.SetupRouter())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/webhook/telegram", "application/json", strings.NewReader(updateBody))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(handler.updates) != 1 {
		t.Fatalf("delivered updates = %d, want 1", len(handler.updates))
	}
	u := handler.updates[0]
	if u.Message == nil || u.Message.Text != "/start" || u.Message.From.ID != 100 {
		t.Fatalf("update = %+v", u)
	}
}

func TestWebhookRejectsBadJSON(t *testing.T) {
	handler := &capturingHandler{}
	srv := NewServer(handler, "", zap.NewNop())
	ts := httptest.NewServer(srv.SetupRouter())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/webhook/telegram", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if len(handler.updates) != 0 {
		t.Fatalf("delivered updates = %d, want 0", len(handler.updates))
	}
}

func TestWebhookSecretToken(t *testing.T) {
	handler := &capturingHandler{}
	srv := NewServer(handler, "s3cret", zap.NewNop())
	ts := httptest.NewServer(srv.SetupRouter())
	defer ts.Close()

	post := func(secret string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/webhook/telegram", strings.NewReader(updateBody))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		return resp
	}

	resp := post("")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing secret: status = %d, want 401", resp.StatusCode)
	}

	resp = post("wrong")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d, want 401", resp.StatusCode)
	}
	if len(handler.updates) != 0 {
		t.Fatalf("delivered updates = %d, want 0", len(handler.updates))
	}

	resp = post("s3cret")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid secret: status = %d, want 200", resp.StatusCode)
	}
	if len(handler.updates) != 1 {
		t.Fatalf("delivered updates = %d, want 1", len(handler.updates))
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := NewServer(&capturingHandler{}, "", zap.NewNop())
	ts := httptest.NewServer(srv.SetupRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
