package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/example/helpdesk/internal/models"
)

func TestBroadcastDoesNotWaitForSummary(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	hub := NewSummaryHub(func(ctx context.Context, _ *uint) (models.Summary, error) {
		n := atomic.AddInt32(&calls, 1)
		if n > 1 {
			<-release
		}
		return models.Summary{Total: int(n)}, nil
	})

	engine := gin.New()
	engine.GET("/ws", hub.Handle)
	ts := httptest.NewServer(engine)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var summary models.Summary
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("initial summary: %v", err)
	}

	done := make(chan struct{})
	go func() {
		hub.Broadcast(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on the summary query")
	}

	close(release)
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("pushed summary: %v", err)
	}
	if summary.Total != 2 {
		t.Fatalf("pushed summary = %+v, want Total 2", summary)
	}
}
