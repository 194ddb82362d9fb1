package persist

import (
	"context"
	"encoding/json"

	"github.com/mazungumzo/chat-service/internal/domain"

	"github.com/dgraph-io/badger/v4"
)

const roomKeyPrefix = "room:"

// Badger — встраиваемый снапшот-стор: один ключ на комнату, значение —
// JSON всего лога. Лог целиком переписывается на каждом Flush.
type Badger struct {
	db *badger.DB
}

func OpenBadger(path string) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Flush(_ context.Context, room string, log []domain.Message) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(roomKeyPrefix+room), data)
	})
}

func (b *Badger) LoadAll(_ context.Context) (map[string][]domain.Message, error) {
	out := make(map[string][]domain.Message)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(roomKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			room := string(item.Key()[len(roomKeyPrefix):])
			if err := item.Value(func(val []byte) error {
				var msgs []domain.Message
				if err := json.Unmarshal(val, &msgs); err != nil {
					return err
				}
				out[room] = msgs
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Badger) Close() error { return b.db.Close() }
