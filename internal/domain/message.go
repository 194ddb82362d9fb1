package domain

import "time"

// Message неизменяемо после записи в лог комнаты. Seq присваивается стором,
// порядок внутри комнаты — единственная гарантия порядка.
type Message struct {
	Seq       int64
	Room      string
	Phone     string
	Username  string
	Text      string
	FileURL   string
	AvatarURL string
	Time      string // HH:MM, для фронта
	CreatedAt time.Time
}
