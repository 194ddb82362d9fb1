package httpmw

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type HeartbeatToucher interface {
	Touch(phone, room string, now time.Time)
}

// Heartbeat обновляет last-seen участника на каждом запросе комнаты,
// если клиент представился заголовком X-Phone. Best-effort.
func Heartbeat(tracker HeartbeatToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if phone := r.Header.Get("X-Phone"); phone != "" {
				tracker.Touch(phone, chi.URLParam(r, "room"), time.Now())
			}
			next.ServeHTTP(w, r)
		})
	}
}
