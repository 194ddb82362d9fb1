package persist

import (
	"context"
	"testing"
	"time"

	"github.com/mazungumzo/chat-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestBadger_FlushLoadRoundtrip(t *testing.T) {
	req := require.New(t)
	b, err := OpenBadger(t.TempDir())
	req.NoError(err)
	defer b.Close()

	ctx := context.Background()
	at := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	general := []domain.Message{
		{Seq: 1, Room: "General", Phone: "+255700000001", Username: "asha", Text: "habari", Time: "14:30", CreatedAt: at},
		{Seq: 2, Room: "General", Phone: "+255700000002", Username: "juma", Text: "poa", Time: "14:31", CreatedAt: at.Add(time.Minute)},
	}
	ops := []domain.Message{
		{Seq: 1, Room: "Ops", Phone: "+255700000001", Username: "asha", Text: "deploy?", Time: "14:32", CreatedAt: at.Add(2 * time.Minute)},
	}

	req.NoError(b.Flush(ctx, "General", general))
	req.NoError(b.Flush(ctx, "Ops", ops))

	logs, err := b.LoadAll(ctx)
	req.NoError(err)
	req.Len(logs, 2)
	req.Equal(general, logs["General"])
	req.Equal(ops, logs["Ops"])
}

func TestBadger_FlushOverwritesSnapshot(t *testing.T) {
	req := require.New(t)
	b, err := OpenBadger(t.TempDir())
	req.NoError(err)
	defer b.Close()

	ctx := context.Background()
	at := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	one := []domain.Message{{Seq: 1, Room: "General", Text: "one", Time: "14:30", CreatedAt: at}}
	req.NoError(b.Flush(ctx, "General", one))

	two := append(one, domain.Message{Seq: 2, Room: "General", Text: "two", Time: "14:31", CreatedAt: at.Add(time.Minute)})
	req.NoError(b.Flush(ctx, "General", two))

	logs, err := b.LoadAll(ctx)
	req.NoError(err)
	req.Len(logs["General"], 2)
	req.Equal("two", logs["General"][1].Text)
}

func TestNoop(t *testing.T) {
	req := require.New(t)
	var s Store = Noop{}

	req.NoError(s.Flush(context.Background(), "General", nil))
	logs, err := s.LoadAll(context.Background())
	req.NoError(err)
	req.Empty(logs)
	req.NoError(s.Close())
}
