package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mazungumzo/chat-service/internal/domain"
	"github.com/mazungumzo/chat-service/internal/service"
	"github.com/mazungumzo/chat-service/internal/store"
	"github.com/mazungumzo/chat-service/internal/transport/ws"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router    http.Handler
	directory *store.Directory
	members   *service.MemberService
	uploads   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry := store.NewSessionRegistry()
	directory := store.NewDirectory()
	directory.EnsureRoom("General")
	messages := store.NewMessageStore(nil)
	tracker := store.NewHeartbeatTracker(time.Minute)

	memberSvc := service.NewMemberService(registry, directory)
	chatSvc := service.NewChatService(directory, messages)
	groupSvc := service.NewGroupService(directory)

	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, memberSvc, chatSvc, groupSvc, tracker)

	uploads := t.TempDir()
	handler := NewHandler(chatSvc, groupSvc, memberSvc, tracker, hub, uploads)

	return &testEnv{
		router:    NewRouter(handler, wsServer, tracker),
		directory: directory,
		members:   memberSvc,
		uploads:   uploads,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestPostAndPollMessages(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rooms/General/messages", SendMessageRequest{
		Phone: "+255700000001", Username: "asha", Text: "habari",
	}, nil)
	req.Equal(http.StatusCreated, rec.Code)

	item := decodeBody[ws.MessageItem](t, rec)
	req.Equal("habari", item.Text)
	req.Regexp(`^\d{2}:\d{2}$`, item.Time)

	rec = env.do(t, http.MethodGet, "/api/rooms/General/messages", nil, nil)
	req.Equal(http.StatusOK, rec.Code)

	hist := decodeBody[HistoryResponse](t, rec)
	req.Len(hist.Items, 1)
	req.Equal("habari", hist.Items[0].Text)
}

func TestPostMessageValidation(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	// нет обязательных полей — отказ до какой-либо мутации
	rec := env.do(t, http.MethodPost, "/api/rooms/General/messages", map[string]string{"message": "hi"}, nil)
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/rooms/General/messages", nil, nil)
	req.Empty(decodeBody[HistoryResponse](t, rec).Items)
}

func TestGatedRoomOverHTTP(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/groups/", CreateGroupRequest{
		Name: "Ops", Phone: "+255700000001", Members: "+255700000002",
	}, nil)
	req.Equal(http.StatusCreated, rec.Code)

	g := decodeBody[GroupResponse](t, rec)
	req.Equal([]string{"+255700000001", "+255700000002"}, g.Members)

	// коллизия имени
	rec = env.do(t, http.MethodPost, "/api/groups/", CreateGroupRequest{
		Name: "Ops", Phone: "+255700000009",
	}, nil)
	req.Equal(http.StatusConflict, rec.Code)

	// не-член не может писать
	rec = env.do(t, http.MethodPost, "/api/rooms/Ops/messages", SendMessageRequest{
		Phone: "+255700000003", Username: "juma", Text: "hello",
	}, nil)
	req.Equal(http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/rooms/Ops/messages", nil, nil)
	req.Empty(decodeBody[HistoryResponse](t, rec).Items)

	// не-админ не управляет составом
	rec = env.do(t, http.MethodPost, "/api/groups/Ops/members", AddMemberRequest{
		Requester: "+255700000002", User: "+255700000003",
	}, nil)
	req.Equal(http.StatusForbidden, rec.Code)

	// админ добавляет — send проходит
	rec = env.do(t, http.MethodPost, "/api/groups/Ops/members", AddMemberRequest{
		Requester: "+255700000001", User: "+255700000003",
	}, nil)
	req.Equal(http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/rooms/Ops/messages", SendMessageRequest{
		Phone: "+255700000003", Username: "juma", Text: "hello",
	}, nil)
	req.Equal(http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/rooms/Ops/messages", nil, nil)
	req.Len(decodeBody[HistoryResponse](t, rec).Items, 1)
}

func TestRemoveMember(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	_, err := env.directory.CreateGroup("Ops", "+255700000001", []string{"+255700000002"})
	req.NoError(err)

	rec := env.do(t, http.MethodDelete, "/api/groups/Ops/members/+255700000002", nil, nil)
	req.Equal(http.StatusBadRequest, rec.Code) // missing requester

	rec = env.do(t, http.MethodDelete, "/api/groups/Ops/members/+255700000002?requester=%2B255700000001", nil, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.NotContains(decodeBody[GroupResponse](t, rec).Members, "+255700000002")

	// админа снять нельзя
	rec = env.do(t, http.MethodDelete, "/api/groups/Ops/members/+255700000001?requester=%2B255700000001", nil, nil)
	req.Equal(http.StatusForbidden, rec.Code)
}

func TestGetParticipants(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	_, err := env.members.Join("conn-1", domain.Identity{Phone: "+255700000001", Username: "asha"}, "General")
	req.NoError(err)
	_, err = env.members.Join("conn-2", domain.Identity{Phone: "+255700000002", Username: "juma"}, "General")
	req.NoError(err)
	// сессия другой комнаты не попадает в выборку
	_, err = env.members.Join("conn-3", domain.Identity{Phone: "+255700000003", Username: "neema"}, "Ops")
	req.NoError(err)

	rec := env.do(t, http.MethodGet, "/api/rooms/General/participants", nil, nil)
	req.Equal(http.StatusOK, rec.Code)

	resp := decodeBody[ParticipantsResponse](t, rec)
	req.Len(resp.Items, 2)
	req.Equal("+255700000001", resp.Items[0].Phone)
	req.Equal("asha", resp.Items[0].Username)
	req.Equal("+255700000002", resp.Items[1].Phone)
	req.False(resp.Items[0].JoinedAt.IsZero())

	// после leave участник исчезает из списка
	_, ok := env.members.Leave("conn-2")
	req.True(ok)

	rec = env.do(t, http.MethodGet, "/api/rooms/General/participants", nil, nil)
	resp = decodeBody[ParticipantsResponse](t, rec)
	req.Len(resp.Items, 1)
	req.Equal("+255700000001", resp.Items[0].Phone)
}

func TestHeartbeatAndOnlineCount(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	for i := 1; i <= 3; i++ {
		rec := env.do(t, http.MethodPost, "/api/heartbeat", HeartbeatRequest{
			Phone: fmt.Sprintf("+25570000000%d", i), Room: "General",
		}, nil)
		req.Equal(http.StatusOK, rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/api/heartbeat", HeartbeatRequest{Phone: "+255700000009", Room: "Ops"}, nil)
	req.Equal(http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/rooms/General/online", nil, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(3, decodeBody[OnlineResponse](t, rec).Online)

	// heartbeat без phone — ValidationError
	rec = env.do(t, http.MethodPost, "/api/heartbeat", map[string]string{"room": "General"}, nil)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestHeartbeatMiddlewareTouchesPresence(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/rooms/General/messages", nil, map[string]string{"X-Phone": "+255700000001"})
	req.Equal(http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/rooms/General/online", nil, nil)
	req.Equal(1, decodeBody[OnlineResponse](t, rec).Online)
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "pic.png", []byte("not-really-a-png")))
	req.Equal(http.StatusOK, rec.Code)

	resp := decodeBody[UploadResponse](t, rec)
	req.Equal("/static/uploads/pic.png", resp.URL)

	_, err := os.Stat(filepath.Join(env.uploads, "pic.png"))
	req.NoError(err)

	// расширение вне allow-list
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "malware.exe", []byte("nope")))
	req.Equal(http.StatusBadRequest, rec.Code)

	// попытка выйти из каталога
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "../../etc/passwd.png", []byte("nope")))
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("/static/uploads/passwd.png", decodeBody[UploadResponse](t, rec).URL)
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "big.png", bytes.Repeat([]byte("a"), maxUploadSize+1)))
	req.Equal(http.StatusBadRequest, rec.Code)

	// на диск ничего не просочилось
	entries, err := os.ReadDir(env.uploads)
	req.NoError(err)
	req.Empty(entries)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
