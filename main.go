// Command bulls-and-cows starts the bulls and cows game server.
//
// It supports two modes:
//  1. default – runs the HTTP server exposing the REST API, WebSocket updates,
//     Prometheus metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server backed by a running API, or by an
//     internal HTTP API when none is reachable
//
// Flags control host/port, preset directory, logging, and optional ngrok
// tunneling for external access during development. Every flag can also be
// set through the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/bulls-and-cows/api"
	"github.com/wricardo/bulls-and-cows/game/config"
	"github.com/wricardo/bulls-and-cows/game/service"
	"github.com/wricardo/bulls-and-cows/game/session"
	"github.com/wricardo/bulls-and-cows/metrics"
	"github.com/wricardo/bulls-and-cows/transport/mcp"
	"github.com/wricardo/bulls-and-cows/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Bulls and Cows Server"
)

const shutdownTimeout = 10 * time.Second

// main loads .env, builds the command tree and runs it until a signal arrives.
func main() {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(envErr).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("exited with error")
	}
}

func newApp(envErr error) *cli.Command {
	return &cli.Command{
		Name:    "bulls-and-cows",
		Usage:   "Bulls and cows game server with REST, WebSocket and MCP interfaces",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "presets-dir",
				Usage:   "Directory of additional preset JSON files",
				Sources: cli.EnvVars("PRESETS_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-preset",
				Value:   config.DefaultPreset,
				Usage:   "Preset used when a game is started without one",
				Sources: cli.EnvVars("DEFAULT_PRESET"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging with human readable output",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := setupLogging(cmd.String("log-level"), cmd.Bool("debug")); err != nil {
				return ctx, err
			}
			if envErr == nil {
				log.Debug().Msg("loaded environment variables from .env file")
			} else if !errors.Is(envErr, os.ErrNotExist) {
				log.Warn().Err(envErr).Msg("error loading .env file")
			}
			return ctx, nil
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Usage:   "REST API to proxy (default: probe host:port, else start an internal API)",
						Sources: cli.EnvVars("API_URL"),
					},
				},
				Action: runStdioMCP,
			},
		},
	}
}

// setupLogging configures the global zerolog logger
func setupLogging(level string, debug bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if debug {
		lvl = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// app holds the wired services shared by the HTTP and stdio modes
type app struct {
	service  service.GameService
	sessions *session.Manager
	registry *prometheus.Registry
}

// initializeServices wires the session store, preset catalogue, metrics and
// game service.
func initializeServices(presetsDir, defaultPreset string) (*app, error) {
	presets, err := config.NewManager(presetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}
	if err := presets.SetDefault(defaultPreset); err != nil {
		return nil, fmt.Errorf("failed to set default preset: %w", err)
	}

	sessions := session.NewManager()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(registry, sessions.CountActive)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &app{
		service:  service.NewGameService(sessions, presets, service.WithRecorder(recorder)),
		sessions: sessions,
		registry: registry,
	}, nil
}

// newHandler combines the API, metrics and MCP endpoints
func (a *app) newHandler(hub *websocket.Hub, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(a.service, hub))
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	if mcpClient != nil {
		mux.Handle("/mcp", mcpClient)
	}
	return mux
}

// runHTTPServer serves the REST API, WebSocket hub, metrics and the /mcp
// endpoint until ctx is cancelled. An ngrok tunnel is added when enabled.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	a, err := initializeServices(cmd.String("presets-dir"), cmd.String("default-preset"))
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	hub := websocket.NewHub()
	handler := a.newHandler(hub, mcp.NewClient("http://"+addr, Version))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().
			Str("addr", addr).
			Str("version", Version).
			Str("rest", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?game=<id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msgf("%s listening", AppName)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown")
		}
		return nil
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			return runNgrok(gctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// runNgrok exposes handler through an ngrok tunnel until ctx is cancelled.
// A missing auth token disables the tunnel without stopping the server.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) error {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info().Str("domain", domain).Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return nil
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("rest", ngrokURL+"/api").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
	return nil
}

// runStdioMCP runs an MCP stdio server. It proxies to --api-url when given,
// then to a server already listening on host:port, and otherwise starts an
// internal HTTP API on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")
	if baseURL == "" {
		candidate := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
		if apiReachable(ctx, candidate) {
			log.Info().Str("url", candidate).Msg("using external API server for MCP")
			baseURL = candidate
		}
	}

	if baseURL == "" {
		internalURL, shutdown, err := startInternalAPI(ctx, cmd.String("presets-dir"), cmd.String("default-preset"))
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	client := mcp.NewClient(baseURL, Version)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port. The
// returned func stops it.
func startInternalAPI(ctx context.Context, presetsDir, defaultPreset string) (string, func(), error) {
	a, err := initializeServices(presetsDir, defaultPreset)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hubCtx, cancelHub := context.WithCancel(ctx)
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	httpServer := &http.Server{Handler: a.newHandler(hub, nil)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	baseURL := "http://" + listener.Addr().String()
	log.Info().Str("url", baseURL).Msg("started internal HTTP server for MCP stdio")

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		cancelHub()
	}
	return baseURL, shutdown, nil
}
