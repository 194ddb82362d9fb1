package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/service"
	"github.com/mazungumzo/chat-service/internal/store"
	"github.com/mazungumzo/chat-service/internal/transport/ws"
	"github.com/mazungumzo/chat-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type Handler struct {
	chatSvc   *service.ChatService
	groupSvc  *service.GroupService
	memberSvc *service.MemberService
	presence  *store.HeartbeatTracker
	hub       *ws.Hub

	uploadsDir string
}

func NewHandler(chat *service.ChatService, group *service.GroupService, member *service.MemberService, presence *store.HeartbeatTracker, hub *ws.Hub, uploadsDir string) *Handler {
	return &Handler{
		chatSvc:    chat,
		groupSvc:   group,
		memberSvc:  member,
		presence:   presence,
		hub:        hub,
		uploadsDir: uploadsDir,
	}
}

// errStatus — маппинг доменных отказов на HTTP.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrNotAdmin),
		errors.Is(err, domain.ErrAdminRemoval):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrGroupExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// GET /api/rooms/{room}/messages
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	items := lo.Map(h.chatSvc.History(room), func(m domain.Message, _ int) ws.MessageItem {
		return ws.ToMessageItem(m)
	})
	httputil.OK(w, HistoryResponse{Items: items})
}

// POST /api/rooms/{room}/messages — poll-вариант send. Доставки нет, но живым
// ws-сессиям комнаты сообщение всё равно рассылается.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	var req SendMessageRequest
	if err := decodeValid(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid message payload")
		return
	}

	msg, err := h.chatSvc.Send(r.Context(), room, domain.Identity{
		Phone:     req.Phone,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
	}, req.Text, req.FileURL)
	if err != nil {
		httputil.Error(w, errStatus(err), err.Error())
		return
	}

	item := ws.ToMessageItem(msg)
	h.hub.Broadcast(room, ws.Message{Type: ws.TypeNewMessage, Payload: item})
	httputil.JSON(w, http.StatusCreated, item)
}

// POST /api/heartbeat
func (h *Handler) PostHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req HeartbeatRequest
	if err := decodeValid(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid heartbeat payload")
		return
	}

	h.presence.Touch(req.Phone, req.Room, time.Now())
	httputil.OK(w, map[string]string{"status": "ok"})
}

// GET /api/rooms/{room}/online — счётчик по heartbeat-окну.
func (h *Handler) GetOnline(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	httputil.OK(w, OnlineResponse{Online: h.presence.Count(room, time.Now())})
}

// GET /api/rooms/{room}/participants — живые сессии комнаты.
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	items := lo.Map(h.memberSvc.ListParticipants(room), func(s domain.Session, _ int) ParticipantItem {
		return ParticipantItem{
			Phone:     s.Identity.Phone,
			Username:  s.Identity.Username,
			AvatarURL: s.Identity.AvatarURL,
			JoinedAt:  s.JoinedAt,
		}
	})
	httputil.OK(w, ParticipantsResponse{Items: items})
}

// POST /api/groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := decodeValid(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid group payload")
		return
	}

	g, err := h.groupSvc.Create(req.Name, req.Phone, req.Members)
	if err != nil {
		httputil.Error(w, errStatus(err), err.Error())
		return
	}

	httputil.JSON(w, http.StatusCreated, GroupResponse{Name: g.Name, Admin: g.Admin, Members: g.Members})
}

// GET /api/groups/{name}
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	g, ok := h.groupSvc.Get(name)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "group not found")
		return
	}
	httputil.OK(w, GroupResponse{Name: g.Name, Admin: g.Admin, Members: g.Members})
}

// POST /api/groups/{name}/members
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req AddMemberRequest
	if err := decodeValid(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid membership payload")
		return
	}

	g, err := h.groupSvc.Add(name, req.Requester, req.User)
	if err != nil {
		httputil.Error(w, errStatus(err), err.Error())
		return
	}

	h.hub.Broadcast(name, ws.Message{
		Type:    ws.TypeUserAdded,
		Payload: ws.MembershipPayload{Group: name, User: req.User},
	})
	httputil.OK(w, GroupResponse{Name: g.Name, Admin: g.Admin, Members: g.Members})
}

// DELETE /api/groups/{name}/members/{user}?requester=...
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	user := chi.URLParam(r, "user")
	requester := r.URL.Query().Get("requester")
	if requester == "" {
		httputil.Error(w, http.StatusBadRequest, "missing requester")
		return
	}

	g, err := h.groupSvc.Remove(name, requester, user)
	if err != nil {
		httputil.Error(w, errStatus(err), err.Error())
		return
	}

	h.hub.Broadcast(name, ws.Message{
		Type:    ws.TypeUserRemoved,
		Payload: ws.MembershipPayload{Group: name, User: user},
	})
	httputil.OK(w, GroupResponse{Name: g.Name, Admin: g.Admin, Members: g.Members})
}
