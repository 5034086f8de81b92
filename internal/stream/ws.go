package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callmenick/sun-venus-earth/internal/metrics"
	"github.com/callmenick/sun-venus-earth/internal/scene"
)

const wsWriteWait = 10 * time.Second

// HandleWebSocket serves the animation as WebSocket text messages.
// GET /api/v1/ws/frames?fps=30&frames=0
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, ip, ok := h.admit(w, r)
	if !ok {
		return
	}
	defer h.track(r, ip, "websocket", p)()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		metrics.IncStreamErrors("upgrade_error")
		h.logger.Warn("websocket upgrade failed", "remote_ip", ip, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Control frames are only processed while reading. The client never
	// sends data, so any read result ends the stream.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(h.config.KeepaliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	send := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		metrics.IncStreamMessages()
		metrics.AddStreamBytes(int64(len(data)))
		return nil
	}

	sc := h.base.Clone()
	msg, rec, err := buildSceneMessage(sc, p.interval)
	if err != nil {
		metrics.IncStreamErrors("draw_error")
		h.logger.Error("stream draw failed", "remote_ip", ip, "error", err)
		return
	}
	if err := send(msg); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("websocket send error (scene)", "remote_ip", ip, "error", err)
		return
	}

	err = scene.NewDriver(p.interval, p.maxFrames).Run(ctx, func(int64) error {
		frame, err := rec.step(sc)
		if err != nil {
			return err
		}
		metrics.IncFrames("websocket")
		return send(frame)
	})

	switch {
	case err == nil:
		if err := send(endMessage{Type: "end", Frames: sc.Frame()}); err != nil {
			metrics.IncStreamErrors("send_error")
			return
		}
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(wsWriteWait))
	case ctx.Err() != nil:
		// Client went away.
	default:
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("websocket send error", "remote_ip", ip, "error", err)
	}
}
