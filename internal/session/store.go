// Package session управляет эфемерным состоянием диалогов пользователей.
package session

import (
	"context"
	"sync"

	"github.com/giftelf/escrow-bot/internal/model"
)

// Store описывает контракт хранилища сессий, внедряемого в маршрутизатор событий.
// Реализация обязана сериализовать read-modify-write по ключу пользователя.
type Store interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Put(ctx context.Context, userID int64, s *model.Session) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore хранит сессии в памяти процесса.
// Новая сессия того же пользователя перезаписывает старую (last-write-wins).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]model.Session
}

// NewMemoryStore создаёт пустое in-memory хранилище сессий.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]model.Session),
	}
}

// Get возвращает копию сессии пользователя или nil, если сессии нет.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Put сохраняет сессию пользователя.
func (m *MemoryStore) Put(_ context.Context, userID int64, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = *s
	return nil
}

// Delete удаляет сессию пользователя.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}
