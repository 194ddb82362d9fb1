package ws

import "github.com/mazungumzo/chat-service/internal/domain"

// Входящие типы событий
const (
	TypeJoin            = "join"
	TypeSendMessage     = "send_message"
	TypeTyping          = "typing"
	TypeCreateGroup     = "create_group"
	TypeAddToGroup      = "add_to_group"
	TypeRemoveFromGroup = "remove_from_group"
)

// Исходящие
const (
	TypeStatus         = "status"          // текстовое уведомление комнате
	TypeUserJoined     = "user_joined"     // участник вошёл
	TypeOnlineUsers    = "online_users"    // снапшот присутствующих
	TypeMessageHistory = "message_history" // replay лога (unicast при join)
	TypeNewMessage     = "new_message"     // сохранённое сообщение
	TypeUserTyping     = "user_typing"     // печатает (всем кроме отправителя)
	TypeGroupCreated   = "group_created"   // unicast создателю
	TypeUserAdded      = "user_added"      // членство изменено
	TypeUserRemoved    = "user_removed"
	TypeUserLeft       = "user_left" // участник отключился
	TypeError          = "error"    // unicast отказ
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type JoinPayload struct {
	Username  string `json:"username" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Room      string `json:"room" validate:"required"`
	AvatarURL string `json:"profile_pic,omitempty"`
}

type SendMessagePayload struct {
	Room      string `json:"room" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Text      string `json:"message"`
	FileURL   string `json:"file_url,omitempty"`
	AvatarURL string `json:"profile_pic,omitempty"`
}

type TypingPayload struct {
	Room  string `json:"room" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type CreateGroupPayload struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Members string `json:"members"` // comma-separated phones
}

type GroupMemberPayload struct {
	Group string `json:"group" validate:"required"`
	User  string `json:"user" validate:"required"`
}

type StatusPayload struct {
	Msg string `json:"msg"`
}

type ErrorPayload struct {
	Msg string `json:"msg"`
}

type UserEventPayload struct {
	Phone     string `json:"phone"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"profile_pic,omitempty"`
}

type OnlineUser struct {
	Phone     string `json:"phone"`
	Username  string `json:"username"`
	AvatarURL string `json:"profile_pic,omitempty"`
}

type GroupCreatedPayload struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type MembershipPayload struct {
	Group string `json:"group"`
	User  string `json:"user"`
}

// MessageItem — wire-форма сохранённого сообщения.
type MessageItem struct {
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	Text      string `json:"message"`
	FileURL   string `json:"file_url,omitempty"`
	AvatarURL string `json:"profile_pic,omitempty"`
	Time      string `json:"time"`
}

func ToMessageItem(m domain.Message) MessageItem {
	return MessageItem{
		Username:  m.Username,
		Phone:     m.Phone,
		Text:      m.Text,
		FileURL:   m.FileURL,
		AvatarURL: m.AvatarURL,
		Time:      m.Time,
	}
}
