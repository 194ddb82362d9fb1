package service

import (
	"context"
	"strings"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/store"
)

const maxMessageLen = 4000

// ChatService — путь send: авторизация, затем append. Denied send не оставляет
// следов ни в логе, ни где-либо ещё.
type ChatService struct {
	directory *store.Directory
	messages  *store.MessageStore
}

func NewChatService(directory *store.Directory, messages *store.MessageStore) *ChatService {
	return &ChatService{directory: directory, messages: messages}
}

func (s *ChatService) Send(ctx context.Context, room string, id domain.Identity, text, fileURL string) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && fileURL == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	if len(text) > maxMessageLen {
		return domain.Message{}, domain.ErrTooLong
	}
	if !s.directory.IsAuthorized(room, id.Phone) {
		return domain.Message{}, domain.ErrNotAuthorized
	}

	s.directory.EnsureRoom(room)
	msg := s.messages.Append(ctx, domain.Message{
		Room:      room,
		Phone:     id.Phone,
		Username:  id.Username,
		Text:      text,
		FileURL:   fileURL,
		AvatarURL: id.AvatarURL,
	})

	return msg, nil
}

func (s *ChatService) History(room string) []domain.Message {
	return s.messages.History(room)
}
