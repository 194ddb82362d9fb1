package http

import (
	"net/http"
	"time"

	"github.com/mazungumzo/chat-service/internal/store"
	httpmw "github.com/mazungumzo/chat-service/internal/transport/http/middleware"
	"github.com/mazungumzo/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, wsServer *ws.Server, tracker *store.HeartbeatTracker) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Phone"},
	}))

	// push-транспорт
	r.Get("/ws", wsServer.HandleWS)

	// poll-транспорт
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmw.WithRequestLoggerCtx)
		api.Use(httpmw.RequestLogger)
		api.Use(middlewareChi.Timeout(30 * time.Second))

		api.Post("/heartbeat", h.PostHeartbeat)

		api.Route("/rooms/{room}", func(rm chi.Router) {
			rm.Use(httpmw.Heartbeat(tracker))
			rm.Get("/messages", h.GetHistory)
			rm.Post("/messages", h.PostMessage)
			rm.Get("/online", h.GetOnline)
			rm.Get("/participants", h.GetParticipants)
		})

		api.Route("/groups", func(g chi.Router) {
			g.Post("/", h.CreateGroup)
			g.Get("/{name}", h.GetGroup)
			g.Post("/{name}/members", h.AddMember)
			g.Delete("/{name}/members/{user}", h.RemoveMember)
		})
	})

	// вложения
	r.Post("/upload", h.Upload)
	r.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/",
		http.FileServer(http.Dir(h.uploadsDir))))

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
