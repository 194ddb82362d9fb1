package store

import (
	"sync"
	"time"
)

type heartbeat struct {
	room     string
	lastSeen time.Time
}

// HeartbeatTracker — presence для poll-транспорта. Скользящее окно:
// участник онлайн пока now-lastSeen <= ttl, протухшие записи вычищаются,
// набор не растёт бесконечно.
type HeartbeatTracker struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]heartbeat
}

func NewHeartbeatTracker(ttl time.Duration) *HeartbeatTracker {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &HeartbeatTracker{
		ttl:  ttl,
		seen: make(map[string]heartbeat),
	}
}

// Touch обновляет last-seen. Room опционален: пустой room даёт только
// глобальный счётчик (слабый вариант протокола).
func (t *HeartbeatTracker) Touch(phone, room string, now time.Time) {
	t.mu.Lock()
	t.seen[phone] = heartbeat{room: room, lastSeen: now}
	t.mu.Unlock()
}

func (t *HeartbeatTracker) IsOnline(phone string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	hb, ok := t.seen[phone]
	return ok && now.Sub(hb.lastSeen) <= t.ttl
}

// Count считает онлайн по комнате; room == "" — глобально.
// Попутно вычищает протухшие записи.
func (t *HeartbeatTracker) Count(room string, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for phone, hb := range t.seen {
		if now.Sub(hb.lastSeen) > t.ttl {
			delete(t.seen, phone)
			continue
		}
		if room == "" || hb.room == room {
			n++
		}
	}
	return n
}
