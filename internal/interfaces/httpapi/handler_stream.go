package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	"github.com/riskibarqy/live-cricket/internal/usecase"
)

const (
	defaultWriteWait = 10 * time.Second
	maxClientMessage = 512
)

type StreamConfig struct {
	// WriteWait bounds each frame write; a peer that stops reading ends the
	// stream at the next snapshot.
	WriteWait      time.Duration
	AllowedOrigins []string
}

func (c StreamConfig) normalize() StreamConfig {
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	return c
}

// StreamMatchStats upgrades to a websocket and pushes one envelope per stats
// snapshot until either side goes away.
func (h *Handler) StreamMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamMatchStats")
	defer span.End()

	matchID, err := h.validateMatchID(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originAllowed(h.streamCfg.AllowedOrigins),
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "match_id", matchID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readUntilClosed(conn, cancel)

	state, err := h.stream.Subscribe(ctx, matchID, func(_ context.Context, stats []matchstats.MatchStats) error {
		payload, err := encodeEnvelope(stats)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(h.streamCfg.WriteWait))
		return conn.WriteMessage(websocket.TextMessage, payload)
	})

	closeCode, reason := websocket.CloseNormalClosure, ""
	if state == usecase.StreamStateErrored && err != nil {
		mapped := mapError(ctx, err)
		closeCode, reason = websocket.CloseInternalServerErr, mapped.Reason
		h.logger.WarnContext(ctx, "match stats stream ended", "match_id", matchID, "state", string(state), "error", err)
		if frame, encErr := errorFrame(mapped, err); encErr == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(h.streamCfg.WriteWait))
			_ = conn.WriteMessage(websocket.TextMessage, frame)
		}
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(closeCode, reason),
		time.Now().Add(h.streamCfg.WriteWait),
	)
}

// readUntilClosed drains client frames so pings and close frames are
// processed, and cancels the stream once the peer is gone.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxClientMessage)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func errorFrame(mapped mappedError, err error) ([]byte, error) {
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = "internal server error"
	}
	return marshalEnvelope(errorEnvelope(mapped, message))
}
