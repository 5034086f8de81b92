// Package stream animates the orrery for remote clients. Every connection
// clones the scene, draws it once, then steps it once per frame and sends the
// new planet positions.
//
// Clients connect via GET /api/v1/stream/frames (Server-Sent Events) or
// GET /api/v1/ws/frames (WebSocket). Both carry the same JSON messages.
// The first message is always the scene:
//
//	{"type":"scene","mode":"animated","view_box":{...},"frame_interval_ms":16,"shapes":[...]}
//
// followed by one message per frame:
//
//	{"type":"frame","n":1,"bodies":[{"id":"venus","cx":109.02,"cy":285.3,"angle_deg":1.6}, ...]}
//
// When a frame limit was requested, a final {"type":"end","frames":N} closes
// the stream. Reconnecting clients start again from angle zero.
package stream

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callmenick/sun-venus-earth/internal/httputil"
	"github.com/callmenick/sun-venus-earth/internal/metrics"
	"github.com/callmenick/sun-venus-earth/internal/scene"
)

// Config holds streaming configuration.
type Config struct {
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 10).
	MaxTotal           int           // Max concurrent streams overall (default: 1000).
	FrameInterval      time.Duration // Default pacing when no fps is requested.
	KeepaliveInterval  time.Duration // WebSocket ping interval (default: 30s).
	TrustProxy         bool          // Key limits on X-Forwarded-For / X-Real-IP.
}

// Handler manages streaming connections.
type Handler struct {
	base     *scene.Scene
	config   Config
	limiter  *streamLimiter
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new streaming handler. base is never stepped; each
// stream works on its own clone.
func NewHandler(base *scene.Scene, config Config, logger *slog.Logger) *Handler {
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 10
	}
	if config.FrameInterval <= 0 {
		config.FrameInterval = 16 * time.Millisecond
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 30 * time.Second
	}
	return &Handler{
		base:    base,
		config:  config,
		limiter: newStreamLimiter(config.MaxConcurrentPerIP, config.MaxTotal),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// params are the per-stream query parameters.
type params struct {
	interval  time.Duration
	maxFrames int64
}

// parseParams reads ?fps=1..60 and ?frames=0..100000.
func (h *Handler) parseParams(r *http.Request) (params, string) {
	p := params{interval: h.config.FrameInterval}

	if v := r.URL.Query().Get("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			return p, "invalid fps parameter, must be 1-60"
		}
		p.interval = time.Second / time.Duration(n)
	}

	if v := r.URL.Query().Get("frames"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 || n > 100000 {
			return p, "invalid frames parameter, must be 0-100000"
		}
		p.maxFrames = n
	}

	return p, ""
}

// admit validates the request and takes a limiter slot. On failure it has
// already written the error response.
func (h *Handler) admit(w http.ResponseWriter, r *http.Request) (params, string, bool) {
	p, msg := h.parseParams(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return p, "", false
	}

	if h.base.Mode != scene.Animated {
		writeError(w, http.StatusConflict, "animation disabled")
		return p, "", false
	}

	// Rate limiting: enforce concurrent stream limit per IP.
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusTooManyRequests, "too many concurrent streams")
		return p, "", false
	}

	return p, ip, true
}

// track records connect metrics and returns the matching disconnect func.
func (h *Handler) track(r *http.Request, ip, transport string, p params) func() {
	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"transport", transport,
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"frame_interval_ms", p.interval.Milliseconds(),
		"max_frames", p.maxFrames,
	)

	return func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"transport", transport,
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}
}

// HandleFrames serves the SSE animation stream.
// GET /api/v1/stream/frames?fps=30&frames=0
func (h *Handler) HandleFrames(w http.ResponseWriter, r *http.Request) {
	p, ip, ok := h.admit(w, r)
	if !ok {
		return
	}
	defer h.track(r, ip, "sse", p)()

	// Verify flusher support (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Set SSE response headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Clear the server's default WriteTimeout for this connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Jittered retry interval (3-7s) to prevent thundering-herd
	// reconnection storms when the server restarts.
	c.sendRetry(time.Duration(3000+rand.Intn(4000)) * time.Millisecond)

	sc := h.base.Clone()
	msg, rec, err := buildSceneMessage(sc, p.interval)
	if err != nil {
		metrics.IncStreamErrors("draw_error")
		h.logger.Error("stream draw failed", "remote_ip", ip, "error", err)
		return
	}
	if err := c.sendJSON(msg); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (scene)", "remote_ip", ip, "error", err)
		return
	}

	ctx := r.Context()
	err = scene.NewDriver(p.interval, p.maxFrames).Run(ctx, func(int64) error {
		frame, err := rec.step(sc)
		if err != nil {
			return err
		}
		metrics.IncFrames("sse")
		return c.sendJSON(frame)
	})

	switch {
	case err == nil:
		if err := c.sendJSON(endMessage{Type: "end", Frames: sc.Frame()}); err != nil {
			metrics.IncStreamErrors("send_error")
		}
	case ctx.Err() != nil:
		// Client went away.
	default:
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
