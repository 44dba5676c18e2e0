package events

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/models"
)

func dial(t *testing.T, f *Feed, query url.Values) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(NewWebSocketHandler(f, nil))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for f.Stats().Subscribers == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for subscription")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	return string(data)
}

func TestWebSocket_StreamsRuns(t *testing.T) {
	f := NewFeed(10)
	conn := dial(t, f, nil)

	f.Publish(&models.Run{ID: "run-1", SpecID: "spec-1", Success: true, OperationsIncluded: []string{"getUsers"}})

	msg := read(t, conn)
	if got := gjson.Get(msg, "id").String(); got != "run-1" {
		t.Errorf("Expected run-1, got %q", got)
	}
	if got := gjson.Get(msg, "operationsIncluded.0").String(); got != "getUsers" {
		t.Errorf("Expected getUsers, got %q", got)
	}
}

func TestWebSocket_Filters(t *testing.T) {
	f := NewFeed(10)
	conn := dial(t, f, url.Values{
		"specId": {"spec-1"},
		"match":  {`diagnostics.#(severity=="error")`},
	})

	f.Publish(&models.Run{ID: "other-spec", SpecID: "spec-2", Diagnostics: minify.Diagnostics{{Severity: minify.SeverityError}}})
	f.Publish(&models.Run{ID: "clean", SpecID: "spec-1", Success: true})
	f.Publish(&models.Run{ID: "broken", SpecID: "spec-1", Diagnostics: minify.Diagnostics{
		{Severity: minify.SeverityError, Code: minify.CodeEmptySelection},
	}})

	msg := read(t, conn)
	if got := gjson.Get(msg, "id").String(); got != "broken" {
		t.Errorf("Expected only the failing spec-1 run, got %q", got)
	}
}

func TestMatches(t *testing.T) {
	data := []byte(`{"success":false,"schemasIncluded":["User"],"operationsIncluded":[],"options":{"includeExamples":true}}`)

	tests := []struct {
		path string
		want bool
	}{
		{"success", false},
		{"schemasIncluded", true},
		{"operationsIncluded", false},
		{"options", true},
		{"options.includeExamples", true},
		{"missing", false},
	}

	for _, tt := range tests {
		if got := Matches(data, tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
