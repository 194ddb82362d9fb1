package store

import (
	"sort"
	"sync"
	"time"

	"github.com/mazungumzo/chat-service/internal/domain"

	"github.com/samber/lo"
)

// SessionRegistry владеет отображением connID -> Session. Несколько сессий
// могут делить один phone (несколько вкладок/устройств).
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]domain.Session)}
}

// Register вставляет или заменяет сессию соединения. Повторный join того же
// соединения просто меняет комнату.
func (r *SessionRegistry) Register(connID string, id domain.Identity, room string) domain.Session {
	s := domain.Session{
		ConnID:   connID,
		Identity: id,
		Room:     room,
		JoinedAt: time.Now(),
	}

	r.mu.Lock()
	if prev, ok := r.sessions[connID]; ok {
		// сохраняем исходный JoinedAt при смене комнаты
		s.JoinedAt = prev.JoinedAt
	}
	r.sessions[connID] = s
	r.mu.Unlock()

	return s
}

// Remove удаляет и возвращает сессию; no-op если её нет.
func (r *SessionRegistry) Remove(connID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return s, ok
}

func (r *SessionRegistry) Get(connID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	return s, ok
}

// ListByRoom возвращает сессии комнаты, отсортированные по времени входа.
func (r *SessionRegistry) ListByRoom(room string) []domain.Session {
	r.mu.RLock()
	all := lo.Values(r.sessions)
	r.mu.RUnlock()

	list := lo.Filter(all, func(s domain.Session, _ int) bool {
		return s.Room == room
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].ConnID < list[j].ConnID
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})

	return list
}

func (r *SessionRegistry) CountByRoom(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sessions {
		if s.Room == room {
			n++
		}
	}
	return n
}
