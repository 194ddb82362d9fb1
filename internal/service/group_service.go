package service

import (
	"strings"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/store"
)

// GroupService разбирает пользовательский ввод и делегирует каталогу.
type GroupService struct {
	directory *store.Directory
}

func NewGroupService(directory *store.Directory) *GroupService {
	return &GroupService{directory: directory}
}

// Create принимает членов как comma-separated строку (формат клиента).
func (s *GroupService) Create(name, creator, memberCSV string) (domain.Group, error) {
	return s.directory.CreateGroup(name, creator, strings.Split(memberCSV, ","))
}

func (s *GroupService) Add(name, requester, target string) (domain.Group, error) {
	return s.directory.AddMember(name, requester, target)
}

func (s *GroupService) Remove(name, requester, target string) (domain.Group, error) {
	return s.directory.RemoveMember(name, requester, target)
}

func (s *GroupService) Get(name string) (domain.Group, bool) {
	return s.directory.Group(name)
}
