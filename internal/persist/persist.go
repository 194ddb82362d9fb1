// Package persist snapshots room logs. Корректность движка не зависит от
// выбранного бэкенда: Flush best-effort после каждого append, LoadAll один раз
// на старте.
package persist

import (
	"context"

	"github.com/mazungumzo/chat-service/internal/domain"
)

type Store interface {
	Flush(ctx context.Context, room string, log []domain.Message) error
	LoadAll(ctx context.Context) (map[string][]domain.Message, error)
	Close() error
}

// Noop — чисто in-memory вариант.
type Noop struct{}

func (Noop) Flush(context.Context, string, []domain.Message) error { return nil }

func (Noop) LoadAll(context.Context) (map[string][]domain.Message, error) {
	return map[string][]domain.Message{}, nil
}

func (Noop) Close() error { return nil }
