package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/services"
	"github.com/yoockh/talentpool/internal/utils"
)

// StatusFeed delivers raw status payloads published for one résumé.
type StatusFeed interface {
	Subscribe(ctx context.Context, resumeID string) (<-chan string, error)
}

type ResumeStatusHandler struct {
	svc      services.CandidateService
	feed     StatusFeed
	upgrader websocket.Upgrader
}

// NewResumeStatusHandler accepts a nil feed; the socket then sends the
// current status and closes.
func NewResumeStatusHandler(svc services.CandidateService, feed StatusFeed) *ResumeStatusHandler {
	return &ResumeStatusHandler{
		svc:  svc,
		feed: feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin once the frontend host is fixed
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) closeNormal(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second))
}

// Watch streams parse status for one of the caller's résumés until parsing
// finishes or the client goes away.
func (h *ResumeStatusHandler) Watch(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	resumeID := c.Param("resume_id")

	// authorize before upgrading so errors are plain HTTP
	if _, err := h.svc.Resume(c.Request.Context(), actor, resumeID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader already wrote the response
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var updates <-chan string
	if h.feed != nil {
		updates, err = h.feed.Subscribe(ctx, resumeID)
		if err != nil {
			_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"status feed unavailable"}`))
			return
		}
	}

	// snapshot after subscribing, so a transition in between is not lost
	r, err := h.svc.Resume(ctx, actor, resumeID)
	if err != nil {
		_ = wc.writeText([]byte(`{"type":"error","code":"` + string(utils.CodeOf(err)) + `","message":"failed to load resume"}`))
		return
	}
	snap, _ := json.Marshal(models.ResumeStatusEvent{Type: "snapshot", ResumeID: r.ID, Status: r.ParseStatus})
	if err := wc.writeText(snap); err != nil {
		return
	}
	if r.ParseStatus.Done() || updates == nil {
		wc.closeNormal(string(r.ParseStatus))
		return
	}

	// reader: only keeps the deadline fresh and notices the client leaving
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// writer: feed -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			if err := wc.writeText([]byte(payload)); err != nil {
				return
			}
			var ev models.ResumeStatusEvent
			if json.Unmarshal([]byte(payload), &ev) == nil && ev.Status.Done() {
				wc.closeNormal(string(ev.Status))
				return
			}
		}
	}
}
