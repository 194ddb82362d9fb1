package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/persist"
)

type roomLog struct {
	mu   sync.Mutex
	msgs []domain.Message
}

// MessageStore — append-only лог сообщений на комнату. У каждой комнаты свой
// мьютекс: append в разные комнаты не конкурируют, порядок внутри комнаты
// равен порядку append.
type MessageStore struct {
	mu    sync.RWMutex
	rooms map[string]*roomLog

	sink persist.Store
	now  func() time.Time
}

func NewMessageStore(sink persist.Store) *MessageStore {
	if sink == nil {
		sink = persist.Noop{}
	}
	return &MessageStore{
		rooms: make(map[string]*roomLog),
		sink:  sink,
		now:   time.Now,
	}
}

// Seed загружает ранее сброшенные логи. Вызывается один раз до начала трафика.
func (s *MessageStore) Seed(logs map[string][]domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for room, msgs := range logs {
		s.rooms[room] = &roomLog{msgs: append([]domain.Message(nil), msgs...)}
	}
}

func (s *MessageStore) log(room string) *roomLog {
	s.mu.RLock()
	l, ok := s.rooms[room]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.rooms[room]; !ok {
		l = &roomLog{}
		s.rooms[room] = l
	}
	return l
}

// Append — единственный путь мутации. Присваивает позицию и серверное время,
// после чего сообщение неизменяемо. Сброс на диск best-effort: ошибка
// логируется и не откатывает append.
func (s *MessageStore) Append(ctx context.Context, msg domain.Message) domain.Message {
	l := s.log(msg.Room)

	l.mu.Lock()
	at := s.now()
	msg.Seq = int64(len(l.msgs) + 1)
	msg.CreatedAt = at
	msg.Time = at.Format("15:04")
	l.msgs = append(l.msgs, msg)
	snapshot := append([]domain.Message(nil), l.msgs...)
	l.mu.Unlock()

	if err := s.sink.Flush(ctx, msg.Room, snapshot); err != nil {
		slog.Warn("message store flush failed", "room", msg.Room, "err", err)
	}

	return msg
}

// History возвращает снапшот лога на момент вызова.
func (s *MessageStore) History(room string) []domain.Message {
	s.mu.RLock()
	l, ok := s.rooms[room]
	s.mu.RUnlock()
	if !ok {
		return []domain.Message{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Message(nil), l.msgs...)
}
