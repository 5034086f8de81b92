package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/callmenick/sun-venus-earth/internal/api"
	"github.com/callmenick/sun-venus-earth/internal/auth"
	"github.com/callmenick/sun-venus-earth/internal/config"
	"github.com/callmenick/sun-venus-earth/internal/health"
	"github.com/callmenick/sun-venus-earth/internal/render"
	"github.com/callmenick/sun-venus-earth/internal/scene"
	"github.com/callmenick/sun-venus-earth/internal/stream"
	"github.com/callmenick/sun-venus-earth/web"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "orrery",
		Short:        "Draw the Sun, Venus and Earth as an SVG orbital diagram",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newRenderCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var openBrowser bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram, its web page and the animation streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			cfgPath, _ := cmd.Flags().GetString("config")
			if err := config.ReadFile(v, cfgPath); err != nil {
				return err
			}
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return serve(cmd.Context(), cfg, openBrowser)
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&openBrowser, "open", false, "open the web page in the default browser")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, openBrowser bool) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger.Info("config loaded", "config", cfg)

	srv, readiness, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", listener.Addr().String(), "auth_enabled", cfg.AuthEnabled)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	readiness.SetReady(true)

	if openBrowser {
		url := "http://" + browserAddr(listener.Addr())
		if err := open.Run(url); err != nil {
			logger.Warn("could not open browser", "url", url, "error", err)
		}
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	readiness.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newServer builds the scene from cfg and wires it into the HTTP routes. The
// returned readiness stays false until the caller starts serving.
func newServer(cfg config.Config, logger *slog.Logger) (*api.Server, *health.Readiness, error) {
	sceneCfg := scene.DefaultConfig()
	sceneCfg.Mode = cfg.Mode
	sc, err := scene.New(sceneCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build scene: %w", err)
	}
	logger.Info("scene built",
		"mode", sc.Mode.String(),
		"width", sc.Bounds.Width(),
		"height", sc.Bounds.Height(),
		"planets", len(sc.Planets),
	)

	streamHandler := stream.NewHandler(sc, stream.Config{
		MaxConcurrentPerIP: cfg.StreamMax,
		MaxTotal:           cfg.StreamMaxTotal,
		FrameInterval:      cfg.FrameInterval,
		KeepaliveInterval:  cfg.KeepaliveInterval,
		TrustProxy:         cfg.TrustProxy,
	}, logger)

	readiness := &health.Readiness{}
	srv, err := api.NewServer(cfg.HTTPAddr, logger, auth.Config{
		Enabled: cfg.AuthEnabled,
		Token:   cfg.AuthToken,
	}, api.Deps{
		Scene:     sc,
		Stream:    streamHandler,
		Readiness: readiness,
		Static:    web.Content,
	})
	if err != nil {
		return nil, nil, err
	}
	return srv, readiness, nil
}

// browserAddr replaces an unspecified listen host with localhost.
func browserAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	return net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
}

func newRenderCmd() *cobra.Command {
	var (
		output string
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the diagram as an SVG document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := scene.ParseMode(mode)
			if err != nil {
				return err
			}
			sceneCfg := scene.DefaultConfig()
			sceneCfg.Mode = m
			sc, err := scene.New(sceneCfg)
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}
			doc, err := render.Render(sc)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if _, err := doc.WriteTo(w); err != nil {
				return fmt.Errorf("write svg: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&mode, "mode", scene.Static.String(), "static or animated")
	return cmd
}
