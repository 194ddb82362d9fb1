package domain

import "time"

// Session — живая привязка соединения к участнику. Одна комната на соединение;
// повторный join меняет Room.
type Session struct {
	ConnID   string
	Identity Identity
	Room     string
	JoinedAt time.Time
}
