package service

import (
	"context"
	"strings"
	"testing"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/store"

	"github.com/stretchr/testify/require"
)

func newServices() (*MemberService, *ChatService, *GroupService) {
	registry := store.NewSessionRegistry()
	directory := store.NewDirectory()
	messages := store.NewMessageStore(nil)

	return NewMemberService(registry, directory),
		NewChatService(directory, messages),
		NewGroupService(directory)
}

func TestGatedGroupFlow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	_, chat, groups := newServices()

	g, err := groups.Create("Ops", "+255700000001", "+255700000002")
	req.NoError(err)
	req.Equal([]string{"+255700000001", "+255700000002"}, g.Members)

	// не-член: отказ, лог пуст
	_, err = chat.Send(ctx, "Ops", domain.Identity{Phone: "+255700000003", Username: "juma"}, "hello", "")
	req.ErrorIs(err, domain.ErrNotAuthorized)
	req.Empty(chat.History("Ops"))

	// админ добавляет — теперь проходит
	_, err = groups.Add("Ops", "+255700000001", "+255700000003")
	req.NoError(err)

	msg, err := chat.Send(ctx, "Ops", domain.Identity{Phone: "+255700000003", Username: "juma"}, "hello", "")
	req.NoError(err)
	req.Equal("hello", msg.Text)
	req.Equal("Ops", msg.Room)
	req.Len(chat.History("Ops"), 1)
}

func TestOpenRoomJoinNeverFails(t *testing.T) {
	req := require.New(t)
	members, _, _ := newServices()

	id := domain.Identity{Phone: "+255700000001", Username: "asha"}
	for i := 0; i < 3; i++ {
		_, err := members.Join("c1", id, "General")
		req.NoError(err)
	}
}

func TestDeniedJoinLeavesNoSession(t *testing.T) {
	req := require.New(t)
	members, _, groups := newServices()

	_, err := groups.Create("Ops", "+255700000001", "")
	req.NoError(err)

	_, err = members.Join("c1", domain.Identity{Phone: "+255700000002"}, "Ops")
	req.ErrorIs(err, domain.ErrNotAuthorized)
	req.Empty(members.ListParticipants("Ops"))

	_, ok := members.Session("c1")
	req.False(ok)
}

func TestDeniedRejoinKeepsOldSession(t *testing.T) {
	req := require.New(t)
	members, _, groups := newServices()

	_, err := members.Join("c1", domain.Identity{Phone: "+255700000002"}, "General")
	req.NoError(err)

	_, err = groups.Create("Ops", "+255700000001", "")
	req.NoError(err)

	_, err = members.Join("c1", domain.Identity{Phone: "+255700000002"}, "Ops")
	req.ErrorIs(err, domain.ErrNotAuthorized)

	// прежняя сессия не тронута
	sess, ok := members.Session("c1")
	req.True(ok)
	req.Equal("General", sess.Room)
}

func TestSendValidation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	_, chat, _ := newServices()

	id := domain.Identity{Phone: "+255700000001", Username: "asha"}

	_, err := chat.Send(ctx, "General", id, "   ", "")
	req.ErrorIs(err, domain.ErrEmptyMessage)

	_, err = chat.Send(ctx, "General", id, strings.Repeat("a", 4001), "")
	req.ErrorIs(err, domain.ErrTooLong)

	// вложение без текста допустимо
	msg, err := chat.Send(ctx, "General", id, "", "/static/uploads/pic.png")
	req.NoError(err)
	req.Equal("/static/uploads/pic.png", msg.FileURL)

	req.Len(chat.History("General"), 1)
}
