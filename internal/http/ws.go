package http

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/example/helpdesk/internal/models"
)

const wsWriteTimeout = 5 * time.Second

// SummaryHub pushes the all-tickets summary to connected admin dashboards.
// Each connection has its own writer goroutine, so a slow dashboard never
// holds up the ticket write that triggered a broadcast.
type SummaryHub struct {
	summarize func(context.Context, *uint) (models.Summary, error)
	upgrader  websocket.Upgrader

	// mu guards clients.
	mu      sync.Mutex
	clients map[*websocket.Conn]chan models.Summary

	// pushMu orders broadcasts so the last one sent reflects the latest state.
	pushMu sync.Mutex
}

// NewSummaryHub returns a hub computing summaries with summarize.
func NewSummaryHub(summarize func(context.Context, *uint) (models.Summary, error)) *SummaryHub {
	return &SummaryHub{
		summarize: summarize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan models.Summary),
	}
}

// Handle upgrades the request, sends the current summary and keeps the
// connection registered until the client goes away.
func (h *SummaryHub) Handle(c *gin.Context) {
	summary, err := h.summarize(c.Request.Context(), nil)
	if err != nil {
		log.Printf("summary for websocket: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// The client is registered before the first summary can reach it.
	send := make(chan models.Summary, 1)
	send <- summary
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	go writeLoop(conn, send)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		close(send)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast schedules a fresh summary for every client and returns without
// waiting for the query or the sockets.
func (h *SummaryHub) Broadcast(ctx context.Context) {
	go h.push(context.WithoutCancel(ctx))
}

func (h *SummaryHub) push(ctx context.Context) {
	h.pushMu.Lock()
	defer h.pushMu.Unlock()

	h.mu.Lock()
	empty := len(h.clients) == 0
	h.mu.Unlock()
	if empty {
		return
	}
	summary, err := h.summarize(ctx, nil)
	if err != nil {
		log.Printf("summary for broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, send := range h.clients {
		// A pending summary is stale once a newer one exists.
		select {
		case <-send:
		default:
		}
		send <- summary
	}
}

// writeLoop delivers summaries to one connection until send is closed or a
// write fails. A failed write closes the connection, which ends Handle.
func writeLoop(conn *websocket.Conn, send <-chan models.Summary) {
	for summary := range send {
		if err := writeSummary(conn, summary); err != nil {
			conn.Close()
			for range send {
			}
			return
		}
	}
}

func writeSummary(conn *websocket.Conn, summary models.Summary) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(summary)
}
