package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestLiveLeaderboardStream(t *testing.T) {
	router, service := newTestRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/api/quiz/leaderboard/live"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial frame carries the current (empty) standing.
	frame := readFrame(t, conn)
	if frame.Payload.TotalStudents != 0 {
		t.Fatalf("expected empty initial frame, got %+v", frame.Payload)
	}

	if _, err := service.Submit(context.Background(), "S1", map[string]string{"q1": "a"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	frame = readFrame(t, conn)
	if frame.Type != "leaderboard" {
		t.Fatalf("expected leaderboard frame, got %s", frame.Type)
	}
	if frame.Payload.TotalStudents != 1 || frame.Payload.Entries[0].StudentID != "S1" {
		t.Fatalf("expected S1 on the board, got %+v", frame.Payload)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) liveFrame {
	t.Helper()
	var frame liveFrame
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}
