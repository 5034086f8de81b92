package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/callmenick/sun-venus-earth/internal/auth"
	"github.com/callmenick/sun-venus-earth/internal/health"
	"github.com/callmenick/sun-venus-earth/internal/metrics"
	"github.com/callmenick/sun-venus-earth/internal/render"
	"github.com/callmenick/sun-venus-earth/internal/scene"
	"github.com/callmenick/sun-venus-earth/internal/stream"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Deps are the collaborators the routes serve.
type Deps struct {
	Scene     *scene.Scene
	Stream    *stream.Handler
	Readiness *health.Readiness
	Static    fs.FS // web frontend; nil disables "/"
}

// NewServer creates a configured HTTP server. The SVG is rendered once here
// since the base scene never changes after startup.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, deps Deps) (*Server, error) {
	svgBytes, err := renderSVG(deps.Scene)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	logger.Info("svg rendered", "component", "api", "bytes", len(svgBytes), "mode", deps.Scene.Mode.String())

	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", deps.Readiness.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /orbit.svg", svgHandler(svgBytes))
	mux.HandleFunc("GET /api/v1/scene", sceneHandler(deps.Scene))
	mux.HandleFunc("GET /api/v1/stream/frames", deps.Stream.HandleFrames)
	mux.HandleFunc("GET /api/v1/ws/frames", deps.Stream.HandleWebSocket)
	if deps.Static != nil {
		mux.Handle("GET /", http.FileServerFS(deps.Static))
	}

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}, nil
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.httpServer.Serve(l)
}

func renderSVG(sc *scene.Scene) ([]byte, error) {
	doc, err := render.Render(sc)
	if err != nil {
		return nil, err
	}
	metrics.IncSVGRenders()
	return doc.Bytes()
}

func svgHandler(body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}
}

func sceneHandler(sc *scene.Scene) http.HandlerFunc {
	desc := sc.Describe()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(desc)
	}
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(sr.ResponseWriter).Hijack()
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
