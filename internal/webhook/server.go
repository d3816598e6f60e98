// Package webhook принимает обновления Telegram по HTTP вместо long-polling.
package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/giftelf/escrow-bot/internal/telegram"
)

// Заголовок, которым Telegram подписывает доставку на webhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Server обслуживает webhook-доставку обновлений и эндпоинт здоровья.
type Server struct {
	handler telegram.UpdateHandler
	secret  string
	logger  *zap.Logger
}

// NewServer создаёт webhook-сервер, передающий обновления указанному обработчику.
func NewServer(handler telegram.UpdateHandler, secretToken string, logger *zap.Logger) *Server {
	return &Server{
		handler: handler,
		secret:  secretToken,
		logger:  logger,
	}
}

// SetupRouter настраивает HTTP-маршруты webhook-сервера.
func (s *Server) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/webhook/telegram", s.handleUpdate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.verifySecret(r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var u telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.handler.HandleUpdate(r.Context(), u)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) verifySecret(r *http.Request) bool {
	if s.secret == "" {
		return true
	}

	got := r.Header.Get(secretTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) == 1
}
