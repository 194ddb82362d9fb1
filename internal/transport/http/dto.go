package http

import (
	"time"

	"github.com/mazungumzo/chat-service/internal/transport/ws"
)

type SendMessageRequest struct {
	Phone     string `json:"phone" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Text      string `json:"message"`
	FileURL   string `json:"file_url,omitempty"`
	AvatarURL string `json:"profile_pic,omitempty"`
}

type HeartbeatRequest struct {
	Phone string `json:"phone" validate:"required"`
	Room  string `json:"room,omitempty"` // опционально: без него счётчик только глобальный
}

type CreateGroupRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Members string `json:"members"` // comma-separated phones
}

type AddMemberRequest struct {
	Requester string `json:"requester" validate:"required"`
	User      string `json:"user" validate:"required"`
}

type HistoryResponse struct {
	Items []ws.MessageItem `json:"items"`
}

type OnlineResponse struct {
	Online int `json:"online"`
}

type ParticipantItem struct {
	Phone     string    `json:"phone"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"profile_pic,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

type ParticipantsResponse struct {
	Items []ParticipantItem `json:"items"`
}

type GroupResponse struct {
	Name    string   `json:"name"`
	Admin   string   `json:"admin"`
	Members []string `json:"members"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
