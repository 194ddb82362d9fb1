package persist

import (
	"context"

	"github.com/mazungumzo/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres переписывает снапшот лога комнаты в room_messages внутри одной
// транзакции, так что читатель никогда не видит пол-лога.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS room_messages (
			room       TEXT        NOT NULL,
			seq        BIGINT      NOT NULL,
			phone      TEXT        NOT NULL,
			username   TEXT        NOT NULL,
			text       TEXT        NOT NULL,
			file_url   TEXT        NOT NULL DEFAULT '',
			avatar_url TEXT        NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (room, seq)
		)`)
	return err
}

func (p *Postgres) Flush(ctx context.Context, room string, log []domain.Message) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM room_messages WHERE room=$1`, room); err != nil {
		return err
	}
	for _, m := range log {
		if _, err := tx.Exec(ctx, `
			INSERT INTO room_messages (room, seq, phone, username, text, file_url, avatar_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			room, m.Seq, m.Phone, m.Username, m.Text, m.FileURL, m.AvatarURL, m.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (p *Postgres) LoadAll(ctx context.Context) (map[string][]domain.Message, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT room, seq, phone, username, text, file_url, avatar_url, created_at
		FROM room_messages
		ORDER BY room, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Message)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.Room, &m.Seq, &m.Phone, &m.Username, &m.Text, &m.FileURL, &m.AvatarURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Time = m.CreatedAt.Format("15:04")
		out[m.Room] = append(out[m.Room], m)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
