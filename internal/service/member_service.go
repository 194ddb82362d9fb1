package service

import (
	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/store"
)

// MemberService связывает авторизацию групп с реестром сессий.
type MemberService struct {
	registry  *store.SessionRegistry
	directory *store.Directory
}

func NewMemberService(registry *store.SessionRegistry, directory *store.Directory) *MemberService {
	return &MemberService{registry: registry, directory: directory}
}

// Join авторизует и коммитит сессию. При отказе реестр не трогается вовсе:
// запись прежней комнаты (если была) остаётся как есть.
func (s *MemberService) Join(connID string, id domain.Identity, room string) (domain.Session, error) {
	if !s.directory.IsAuthorized(room, id.Phone) {
		return domain.Session{}, domain.ErrNotAuthorized
	}

	s.directory.EnsureRoom(room)
	return s.registry.Register(connID, id, room), nil
}

// Leave снимает сессию; идемпотентен.
func (s *MemberService) Leave(connID string) (domain.Session, bool) {
	return s.registry.Remove(connID)
}

func (s *MemberService) Session(connID string) (domain.Session, bool) {
	return s.registry.Get(connID)
}

func (s *MemberService) ListParticipants(room string) []domain.Session {
	return s.registry.ListByRoom(room)
}
