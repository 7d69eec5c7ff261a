package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/dungenlab/dungen/pkg/recipe"
)

const testRecipe = `
name = "test"
seed = 3

[root]
width = 12
height = 9
walled = true

[portals]
min = 1
max = 2
reciprocate = true

[rooms]
min_width = 4
max_width = 6
min_height = 4
max_height = 6
walled = true
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(recipe.NewRunner(nil, nil, nil), nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postGenerate(t *testing.T, ts *httptest.Server, req GenerateRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/generate: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)

	resp := postGenerate(t, ts, GenerateRequest{
		Recipe:  testRecipe,
		Formats: []string{recipe.FormatASCII, recipe.FormatJSON},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.RunID == "" || out.DungeonHash == "" {
		t.Error("response missing run ID or dungeon hash")
	}
	if out.Seed != 3 {
		t.Errorf("seed = %d, want recipe seed 3", out.Seed)
	}
	if out.MapCount < 2 {
		t.Errorf("map count = %d, want at least root plus one room", out.MapCount)
	}
	ascii := string(out.Artifacts[recipe.FormatASCII])
	if !strings.Contains(ascii, "#") {
		t.Errorf("ascii artifact has no walls:\n%s", ascii)
	}
	if len(out.Artifacts[recipe.FormatJSON]) == 0 {
		t.Error("missing json artifact")
	}
}

func TestGenerateSeedOverride(t *testing.T) {
	ts := newTestServer(t)

	seed := uint64(77)
	resp := postGenerate(t, ts, GenerateRequest{Recipe: testRecipe, Seed: &seed})
	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Seed != 77 {
		t.Errorf("seed = %d, want override 77", out.Seed)
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		req  GenerateRequest
	}{
		{"empty recipe", GenerateRequest{}},
		{"invalid recipe", GenerateRequest{Recipe: "[root]\nwidth = -1\nheight = 5"}},
		{"unknown format", GenerateRequest{Recipe: testRecipe, Formats: []string{"gif"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postGenerate(t, ts, tt.req)
			if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("status = %d, want error status", resp.StatusCode)
			}
		})
	}
}

func TestWebSocketStream(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(GenerateRequest{Recipe: testRecipe, Formats: []string{recipe.FormatASCII}}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var events []Event
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		events = append(events, ev)
		if ev.Event == "done" || ev.Event == "error" {
			break
		}
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want generated+artifact+done", len(events))
	}
	if events[0].Event != "generated" || events[0].RunID == "" {
		t.Errorf("first event = %+v, want generated", events[0])
	}
	if events[1].Event != "artifact" || events[1].Format != recipe.FormatASCII {
		t.Errorf("second event = %+v, want ascii artifact", events[1])
	}
	if events[2].Event != "done" {
		t.Errorf("last event = %+v, want done", events[2])
	}
}

func TestWebSocketReportsErrors(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(GenerateRequest{Recipe: "not a recipe ["}); err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Event != "error" || ev.Error == "" {
		t.Errorf("event = %+v, want error", ev)
	}

	// The connection survives an in-stream error.
	if err := conn.WriteJSON(GenerateRequest{Recipe: testRecipe}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read after error: %v", err)
	}
	if ev.Event != "generated" {
		t.Errorf("event = %+v, want generated", ev)
	}
}
