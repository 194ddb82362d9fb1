package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/service"
	"github.com/mazungumzo/chat-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

var validate = validator.New()

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub

	memberSvc *service.MemberService
	chatSvc   *service.ChatService
	groupSvc  *service.GroupService
	presence  *store.HeartbeatTracker

	pingEvery time.Duration
}

func NewServer(hub *Hub, member *service.MemberService, chat *service.ChatService, group *service.GroupService, presence *store.HeartbeatTracker) *Server {
	return &Server{
		hub:       hub,
		memberSvc: member,
		chatSvc:   chat,
		groupSvc:  group,
		presence:  presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws. Комната выбирается событием join, не URL:
// соединение может перепрыгивать между комнатами не переподключаясь.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, uuid.NewString())

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	s.disconnect(c)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.id, "err", err)
	}
}

// disconnect — единственная «отмена»: снимаем сессию и сообщаем комнате.
func (s *Server) disconnect(c *wsConn) {
	sess, ok := s.memberSvc.Leave(c.id)
	if !ok {
		return
	}

	s.hub.Remove(sess.Room, c)
	s.hub.Broadcast(sess.Room, Message{
		Type:    TypeUserLeft,
		Payload: UserEventPayload{Phone: sess.Identity.Phone},
	})
	s.broadcastOnline(sess.Room)
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		if sess, ok := s.memberSvc.Session(c.id); ok {
			s.presence.Touch(sess.Identity.Phone, sess.Room, time.Now())
		}
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeJoin:
			s.handleJoin(c, msg.Payload)
		case TypeSendMessage:
			s.handleSend(ctx, c, msg.Payload)
		case TypeTyping:
			s.handleTyping(c, msg.Payload)
		case TypeCreateGroup:
			s.handleCreateGroup(c, msg.Payload)
		case TypeAddToGroup:
			s.handleMembership(c, msg.Payload, true)
		case TypeRemoveFromGroup:
			s.handleMembership(c, msg.Payload, false)
		default:
			// ignore
		}
	}
}

func (s *Server) handleJoin(c *wsConn, payload interface{}) {
	var p JoinPayload
	if err := decodeValid(payload, &p); err != nil {
		s.sendError(c, "invalid join payload")
		return
	}

	prev, hadPrev := s.memberSvc.Session(c.id)

	sess, err := s.memberSvc.Join(c.id, domain.Identity{
		Phone:     p.Phone,
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
	}, p.Room)
	if err != nil {
		// отказ виден только запросившему; реестр и комната нетронуты
		s.sendError(c, err.Error())
		return
	}

	if hadPrev && prev.Room != sess.Room {
		s.hub.Remove(prev.Room, c)
		s.hub.Broadcast(prev.Room, Message{
			Type:    TypeUserLeft,
			Payload: UserEventPayload{Phone: prev.Identity.Phone},
		})
		s.broadcastOnline(prev.Room)
	}

	s.hub.Add(sess.Room, c)
	s.presence.Touch(p.Phone, sess.Room, time.Now())

	s.hub.Broadcast(sess.Room, Message{
		Type:    TypeStatus,
		Payload: StatusPayload{Msg: p.Username + " joined " + sess.Room},
	})
	s.hub.Broadcast(sess.Room, Message{
		Type: TypeUserJoined,
		Payload: UserEventPayload{
			Phone:     p.Phone,
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
		},
	})
	s.broadcastOnline(sess.Room)

	history := lo.Map(s.chatSvc.History(sess.Room), func(m domain.Message, _ int) MessageItem {
		return ToMessageItem(m)
	})
	if err := c.Send(Message{Type: TypeMessageHistory, Payload: history}); err != nil {
		slog.Warn("ws history replay failed", "room", sess.Room, "conn", c.id, "err", err)
	}
}

func (s *Server) handleSend(ctx context.Context, c *wsConn, payload interface{}) {
	if _, ok := s.memberSvc.Session(c.id); !ok {
		s.sendError(c, "join a room first")
		return
	}

	var p SendMessagePayload
	if err := decodeValid(payload, &p); err != nil {
		s.sendError(c, "invalid message payload")
		return
	}

	msg, err := s.chatSvc.Send(ctx, p.Room, domain.Identity{
		Phone:     p.Phone,
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
	}, p.Text, p.FileURL)
	if err != nil {
		s.sendError(c, err.Error())
		return
	}

	s.hub.Broadcast(p.Room, Message{Type: TypeNewMessage, Payload: ToMessageItem(msg)})
}

func (s *Server) handleTyping(c *wsConn, payload interface{}) {
	if _, ok := s.memberSvc.Session(c.id); !ok {
		return
	}

	var p TypingPayload
	if err := decodeValid(payload, &p); err != nil {
		return
	}

	s.hub.BroadcastExcept(p.Room, c.id, Message{
		Type:    TypeUserTyping,
		Payload: UserEventPayload{Phone: p.Phone},
	})
}

func (s *Server) handleCreateGroup(c *wsConn, payload interface{}) {
	var p CreateGroupPayload
	if err := decodeValid(payload, &p); err != nil {
		s.sendError(c, "invalid group payload")
		return
	}

	g, err := s.groupSvc.Create(p.Name, p.Phone, p.Members)
	if err != nil {
		s.sendError(c, err.Error())
		return
	}

	// только создателю; члены узнают при первом join
	if err := c.Send(Message{
		Type:    TypeGroupCreated,
		Payload: GroupCreatedPayload{Name: g.Name, Members: g.Members},
	}); err != nil {
		slog.Debug("ws group_created send failed", "group", g.Name, "err", err)
	}
}

func (s *Server) handleMembership(c *wsConn, payload interface{}, add bool) {
	sess, ok := s.memberSvc.Session(c.id)
	if !ok {
		s.sendError(c, "join a room first")
		return
	}

	var p GroupMemberPayload
	if err := decodeValid(payload, &p); err != nil {
		s.sendError(c, "invalid membership payload")
		return
	}

	var (
		err     error
		outType string
	)
	if add {
		_, err = s.groupSvc.Add(p.Group, sess.Identity.Phone, p.User)
		outType = TypeUserAdded
	} else {
		_, err = s.groupSvc.Remove(p.Group, sess.Identity.Phone, p.User)
		outType = TypeUserRemoved
	}
	if err != nil {
		s.sendError(c, err.Error())
		return
	}

	s.hub.Broadcast(p.Group, Message{
		Type:    outType,
		Payload: MembershipPayload{Group: p.Group, User: p.User},
	})
}

func (s *Server) broadcastOnline(room string) {
	online := lo.Map(s.memberSvc.ListParticipants(room), func(sess domain.Session, _ int) OnlineUser {
		return OnlineUser{
			Phone:     sess.Identity.Phone,
			Username:  sess.Identity.Username,
			AvatarURL: sess.Identity.AvatarURL,
		}
	})
	s.hub.Broadcast(room, Message{Type: TypeOnlineUsers, Payload: online})
}

func (s *Server) sendError(c *wsConn, msg string) {
	_ = c.Send(Message{Type: TypeError, Payload: ErrorPayload{Msg: msg}})
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// decodeValid перегоняет payload через json и валидирует схему до того,
// как событие коснётся общего состояния.
func decodeValid(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return err
	}

	return validate.Struct(dst)
}

type wsConn struct {
	conn   *websocket.Conn
	id     string
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, id string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     id,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string { return c.id }
