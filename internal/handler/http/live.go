package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
)

type LiveHandler interface {
	// Token issues a short-lived token for Stream
	Token(w http.ResponseWriter, r *http.Request)
	// Stream serves the caller's live events as text/event-stream
	Stream(w http.ResponseWriter, r *http.Request)
}

type liveHandlerImpl struct {
	liveService live.LiveService
	keepalive   time.Duration
}

func NewLiveHandler(liveService live.LiveService, keepalive time.Duration) LiveHandler {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &liveHandlerImpl{liveService: liveService, keepalive: keepalive}
}

// Token handles POST /live/token
func (h *liveHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	result, err := h.liveService.StreamToken(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Stream handles GET /live/stream?token=
func (h *liveHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token travels in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.liveService.Authenticate(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.liveService.Subscribe(userID)
	defer cleanup()

	if err := sse.Write(w, sse.Event{Event: "connected", Data: map[string]string{"status": "connected", "user_id": userID}}); err != nil {
		return
	}
	flusher.Flush()
	slog.DebugContext(r.Context(), "Live stream opened", "user_id", userID)

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.Write(w, event); err != nil {
				slog.WarnContext(r.Context(), "Live stream write failed", "user_id", userID, "error", err)
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			if err := sse.Write(w, sse.Event{Event: "ping", Data: map[string]int64{"timestamp": time.Now().Unix()}}); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			slog.DebugContext(r.Context(), "Live stream closed", "user_id", userID)
			return
		}
	}
}
