package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The server has no browser origin of its own; callers are expected
	// to put their own origin policy in front of it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message in the WebSocket stream.
type Event struct {
	Event string `json:"event"` // "generated", "artifact", "done", "error"

	// Generated fields.
	RunID       string `json:"run_id,omitempty"`
	Seed        uint64 `json:"seed,omitempty"`
	MapCount    int    `json:"map_count,omitempty"`
	DungeonHash string `json:"dungeon_hash,omitempty"`
	Cached      bool   `json:"cached,omitempty"`

	// Artifact fields.
	Format string `json:"format,omitempty"`
	Data   []byte `json:"data,omitempty"`

	// Error field.
	Error string `json:"error,omitempty"`
}

// handleWS runs one generation per incoming request message, streaming
// a "generated" event when the dungeon exists, one "artifact" event per
// format, and "done" when the run completes. The connection stays open
// for further requests until the client closes it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade connection", "err", err)
		return
	}
	defer conn.Close()

	for {
		var req GenerateRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read message", "err", err)
			}
			return
		}

		if err := s.stream(r, conn, req); err != nil {
			return
		}
	}
}

// stream executes one run and writes its events. A write error aborts
// the connection; a generation error is reported in-stream and the
// connection stays usable.
func (s *Server) stream(r *http.Request, conn *websocket.Conn, req GenerateRequest) error {
	opts, err := s.options(req)
	if err != nil {
		return conn.WriteJSON(Event{Event: "error", Error: err.Error()})
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		return conn.WriteJSON(Event{Event: "error", Error: err.Error()})
	}

	if err := conn.WriteJSON(Event{
		Event:       "generated",
		RunID:       res.RunID,
		Seed:        res.Stats.Seed,
		MapCount:    res.Stats.MapCount,
		DungeonHash: res.DungeonHash,
		Cached:      res.CacheInfo.GenerateHit,
	}); err != nil {
		return err
	}

	for format, data := range res.Artifacts {
		if err := conn.WriteJSON(Event{Event: "artifact", RunID: res.RunID, Format: format, Data: data}); err != nil {
			return err
		}
	}

	return conn.WriteJSON(Event{Event: "done", RunID: res.RunID})
}
