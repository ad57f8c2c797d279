package userstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

// Simulator serves the loopback WebSocket endpoint: on every connection it
// writes a fixed demo script of Frames for instance, spaced out, then
// closes normally. It stands in for the exchange's user-data-stream push
// feed.
type Simulator struct {
	script   []Frame
	interval time.Duration
	log      zerolog.Logger
}

// NewSimulator constructs a Simulator that replays script once per
// connection, pausing interval between frames.
func NewSimulator(script []Frame, interval time.Duration, log zerolog.Logger) *Simulator {
	return &Simulator{
		script:   script,
		interval: interval,
		log:      log.With().Str("component", "userstream_simulator").Logger(),
	}
}

// ServeHTTP upgrades the request to a WebSocket and replays the script.
func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to accept userstream connection")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "script complete")

	ctx := r.Context()
	for _, frame := range s.script {
		data, err := json.Marshal(frame)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to marshal demo frame")
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to write demo frame")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}
