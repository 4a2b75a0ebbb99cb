package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizbox-service/internal/app"
	"quizbox-service/internal/domain"
	"quizbox-service/internal/infra/memory"
	"quizbox-service/internal/player"
)

func TestWebSocketPlayFlow(t *testing.T) {
	sessions := memory.NewSessionStore(time.Minute)
	quizRepo := memory.NewQuizRepository(memory.NewQuizStore(sampleQuiz()), time.Minute)
	service := app.NewPlayService(sessions, quizRepo, player.Options{})
	wsHandler := NewWSHandler(service, nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	st := readState(t, conn)
	if st.Phase != domain.PhaseIntro {
		t.Fatalf("expected intro on connect, got %s", st.Phase)
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"questionIndex": 0, "answerIds": []string{"o2"}}})
	if typ, _ := readNext(t, conn); typ != "error" {
		t.Fatalf("expected error when answering before start, got %s", typ)
	}

	send(t, conn, map[string]any{"type": "start"})
	st = readState(t, conn)
	if st.Phase != domain.PhasePlaying || st.Question == nil {
		t.Fatalf("expected playing after start, got %+v", st)
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"questionIndex": 0, "answerIds": []string{"o2"}}})
	st = readState(t, conn)
	if st.Phase != domain.PhaseResult || st.Result == nil || st.Result.Band.Title != "Well done" {
		t.Fatalf("expected result with top band, got %+v", st)
	}

	send(t, conn, map[string]any{"type": "reset"})
	st = readState(t, conn)
	if st.Phase != domain.PhaseIntro || st.Score != 0 {
		t.Fatalf("expected reset to intro, got %+v", st)
	}

	send(t, conn, map[string]any{"type": "dance"})
	if typ, _ := readNext(t, conn); typ != "error" {
		t.Fatalf("expected error for unknown type, got %s", typ)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for sessions.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sessions.Len() != 0 {
		t.Fatalf("expected session to be closed with the socket")
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	quizRepo := memory.NewQuizRepository(memory.NewQuizStore(), time.Minute)
	service := app.NewPlayService(memory.NewSessionStore(time.Minute), quizRepo, player.Options{})
	server := httptest.NewServer(http.HandlerFunc(NewWSHandler(service, nil, nil).ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/?quizId=nope", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if typ, _ := readNext(t, conn); typ != "error" {
		t.Fatalf("expected error for unknown quiz, got %s", typ)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func readState(t *testing.T, conn *websocket.Conn) player.State {
	t.Helper()
	typ, raw := readNext(t, conn)
	if typ != "state" {
		t.Fatalf("expected state, got %s: %s", typ, raw)
	}
	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if payload.SessionID == "" {
		t.Fatalf("expected session id in state message")
	}
	return payload.State
}
