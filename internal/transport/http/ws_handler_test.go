package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
	"logo-quiz-service/internal/infra/memory"
)

func TestWebSocketSequentialGame(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, domain.ModeSequential))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?name=Alice&email=a@x.io"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	typ, payload := readNext(conn, t, "state")
	if typ != "state" || payload["phase"] != string(domain.PhaseActive) {
		t.Fatalf("expected active state, got %s %v", typ, payload)
	}

	for _, choice := range []string{"Go", "Redis"} {
		if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"choice": choice}}); err != nil {
			t.Fatalf("write answer: %v", err)
		}
		waitFor(conn, t, "answerResult")
		if err := conn.WriteJSON(map[string]any{"type": "advance"}); err != nil {
			t.Fatalf("write advance: %v", err)
		}
	}

	_, ended := waitFor(conn, t, "ended")
	if ended["playerName"] != "Alice" || ended["score"] != float64(2) {
		t.Fatalf("unexpected ended payload: %v", ended)
	}

	conn.Close()
	service.Wait()
	view := service.Leaderboard(context.Background(), nil)
	if len(view.Top) != 1 || view.Top[0].Score != 2 {
		t.Fatalf("expected persisted score, got %+v", view.Top)
	}
}

func TestWebSocketRejectsMissingName(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), domain.ModeSequential))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?name=%20"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", resp)
	}
}

func TestWebSocketUnsupportedMessage(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), domain.ModeSequential))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?name=Bob"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "state")

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := waitFor(conn, t, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestWebSocketClosedWhenGameEvicted(t *testing.T) {
	cat := domain.NewCatalog([]domain.QuestionRecord{
		{PromptAssetRef: "go", Options: [4]string{"Go", "Rust", "Zig", "C"}, CorrectAnswer: "Go"},
	})
	opts := app.DefaultServiceOptions()
	opts.TickInterval = 0
	opts.FeedbackDelay = 0
	opts.IdleTimeout = 50 * time.Millisecond
	games := memory.NewSessionStore()
	service := app.NewGameService(cat, games, app.NewScoreGateway(nil, memory.NewLocalCache(), domain.InsertOnly), opts)
	server := httptest.NewServer(NewRouter(service, domain.ModeSequential))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?name=Idle"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "state")

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg map[string]any
	err = conn.ReadJSON(&msg)
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v (%v)", err, msg)
	}
	if games.Len() != 0 {
		t.Fatalf("expected evicted game, %d left", games.Len())
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// waitFor skips interleaved state broadcasts until a message of type want arrives.
func waitFor(conn *websocket.Conn, t *testing.T, want string) (string, map[string]any) {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == want {
			return typ, payload
		}
	}
	t.Fatalf("no %s message received", want)
	return "", nil
}

func newTestService() *app.GameService {
	cat := domain.NewCatalog([]domain.QuestionRecord{
		{PromptAssetRef: "go", Options: [4]string{"Go", "Rust", "Zig", "C"}, CorrectAnswer: "Go"},
		{PromptAssetRef: "redis", Options: [4]string{"Redis", "Memcached", "Valkey", "etcd"}, CorrectAnswer: "Redis"},
	})
	opts := app.DefaultServiceOptions()
	opts.TickInterval = 0
	opts.FeedbackDelay = 0
	gateway := app.NewScoreGateway(memory.NewScoreStore(), memory.NewLocalCache(), domain.UpdateIfHigher)
	return app.NewGameService(cat, memory.NewSessionStore(), gateway, opts)
}
