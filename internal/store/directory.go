package store

import (
	"strings"
	"sync"

	"github.com/mazungumzo/chat-service/internal/domain"

	"github.com/samber/lo"
)

type group struct {
	mu      sync.Mutex
	admin   string
	members []string // порядок вставки, создатель первым
}

func (g *group) snapshot(name string) domain.Group {
	return domain.Group{
		Name:    name,
		Admin:   g.admin,
		Members: append([]string(nil), g.members...),
	}
}

// Directory владеет списком комнат и ACL групп. Внешняя RWMutex защищает
// только мапы; членство каждой группы мутирует под её собственным мьютексом,
// так что операции по разным группам не блокируют друг друга.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[string]struct{}
	groups map[string]*group
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]struct{}),
		groups: make(map[string]*group),
	}
}

// EnsureRoom регистрирует открытую комнату. Идемпотентна.
func (d *Directory) EnsureRoom(name string) {
	d.mu.Lock()
	d.rooms[name] = struct{}{}
	d.mu.Unlock()
}

// CreateGroup создаёт группу: admin = creator, members = {creator} + members.
// Пустые токены членов отбрасываются.
func (d *Directory) CreateGroup(name, creator string, members []string) (domain.Group, error) {
	g := &group{admin: creator, members: []string{creator}}
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" || lo.Contains(g.members, m) {
			continue
		}
		g.members = append(g.members, m)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.groups[name]; exists {
		return domain.Group{}, domain.ErrGroupExists
	}
	d.groups[name] = g
	d.rooms[name] = struct{}{}

	return g.snapshot(name), nil
}

// Group возвращает снапшот группы.
func (d *Directory) Group(name string) (domain.Group, bool) {
	d.mu.RLock()
	g, ok := d.groups[name]
	d.mu.RUnlock()
	if !ok {
		return domain.Group{}, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot(name), true
}

// IsAuthorized: комната открыта для всех, если у неё нет записи группы
// (или admin пуст); иначе нужен членский билет.
func (d *Directory) IsAuthorized(room, phone string) bool {
	d.mu.RLock()
	g, ok := d.groups[room]
	d.mu.RUnlock()
	if !ok {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.admin == "" {
		return true
	}
	return lo.Contains(g.members, phone)
}

// AddMember — только админ. Повторное добавление — no-op.
func (d *Directory) AddMember(name, requester, target string) (domain.Group, error) {
	g, err := d.adminGroup(name, requester)
	if err != nil {
		return domain.Group{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !lo.Contains(g.members, target) {
		g.members = append(g.members, target)
	}
	return g.snapshot(name), nil
}

// RemoveMember — только админ. Удаление самого админа запрещено:
// инвариант admin ∈ members держится всегда.
func (d *Directory) RemoveMember(name, requester, target string) (domain.Group, error) {
	g, err := d.adminGroup(name, requester)
	if err != nil {
		return domain.Group{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if target == g.admin {
		return domain.Group{}, domain.ErrAdminRemoval
	}
	g.members = lo.Filter(g.members, func(m string, _ int) bool { return m != target })
	return g.snapshot(name), nil
}

func (d *Directory) adminGroup(name, requester string) (*group, error) {
	d.mu.RLock()
	g, ok := d.groups[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.ErrGroupNotFound
	}

	g.mu.Lock()
	admin := g.admin
	g.mu.Unlock()
	if requester != admin {
		return nil, domain.ErrNotAdmin
	}
	return g, nil
}
