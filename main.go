// Command mazechase runs the Maze Chase grid simulation.
//
// Subcommands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – MCP stdio server; spins up an internal HTTP API if none is available
//  3. "play" – plays one maze in the terminal
//  4. "validate" – checks configuration files
//
// Flags can also be set from the environment or a .env file, and the server can
// optionally expose itself through an ngrok tunnel during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/mazechase/api"
	"github.com/wricardo/mcp-training/mazechase/game/config"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
	"github.com/wricardo/mcp-training/mazechase/game/session"
	"github.com/wricardo/mcp-training/mazechase/transport/mcp"
	"github.com/wricardo/mcp-training/mazechase/transport/websocket"
	"github.com/wricardo/mcp-training/mazechase/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Chase Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("error loading .env file")
		}
	} else {
		log.Debug("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           "mazechase",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "log as JSON",
				Sources: cli.EnvVars("LOG_JSON"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			validateCommand(),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("log-json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	if cmd.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	return ctx, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "remove sessions idle for longer than this",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd.String("config-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			go sessionCleanupRoutine(ctx, svcs.sessions, time.Hour, cmd.Duration("session-ttl"))
			return runHTTPServer(ctx, cmd, svcs)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server, starting an internal HTTP API when none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "external API to reuse when it is up",
				Sources: cli.EnvVars("MAZECHASE_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd.String("config-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runStdioMCPWithInternalServer(ctx, cmd.String("api-url"), svcs)
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a maze in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration name, defaults to the server default",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "random seed, 0 keeps the config seed",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadPlayConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}
			if seed := cmd.Uint64("seed"); seed != 0 {
				copied := *cfg
				copied.Seed = seed
				cfg = &copied
			}

			eng, err := engine.NewEngine(cfg)
			if err != nil {
				return err
			}

			// the alternate screen owns the terminal
			log.SetOutput(io.Discard)
			return tui.Run(eng, tea.WithAltScreen(), tea.WithContext(ctx))
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate configuration files",
		ArgsUsage: "[file.json ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return fmt.Errorf("error finding config files: %w", err)
				}
				sort.Strings(files)
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found")
			}
			if !validateFiles(os.Stdout, files) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// services bundles the managers shared by every server mode
type services struct {
	configs  *config.Manager
	sessions *session.Manager
	game     service.GameService
}

// initializeServices wires the session/config managers and the game service
func initializeServices(configDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()

	return &services{
		configs:  configManager,
		sessions: sessionManager,
		game:     service.NewGameService(sessionManager, configManager),
	}, nil
}

// loadPlayConfig resolves the maze for the play command. Without a config
// directory it falls back to the built-in maze, unless a name was asked for.
func loadPlayConfig(configDir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(configDir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		return engine.DefaultGameConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.WithField("removed", removed).Debug("session cleanup pass")
			}
		}
	}
}

// newHub starts a hub bound to ctx and a clock that broadcasts every tick through it
func newHub(ctx context.Context, svc service.GameService) (*websocket.Hub, *service.Clock) {
	hub := websocket.NewHub(svc.Steer)
	go hub.Run(ctx)

	clock := service.NewClock(svc, func(sessionID string, result *service.StepResult) {
		hub.BroadcastToSession(sessionID, result.GameState)
		if result.GameOver {
			hub.BroadcastEvent(sessionID, "game_over", result)
		}
	})
	return hub, clock
}

// newRouter mounts the API at the root and the MCP JSON-RPC endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/mcp", mcpHandler(mcpClient)).Methods(http.MethodPost)
	router.PathPrefix("/").Handler(apiServer)
	return router
}

func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.WithError(err).Error("failed to write MCP response")
		}
	}
}

// runHTTPServer serves until ctx is cancelled. If ngrok is enabled it also
// provisions a public tunnel serving the same router.
func runHTTPServer(ctx context.Context, cmd *cli.Command, svcs *services) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub, clock := newHub(ctx, svcs.game)
	defer clock.StopAll()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := fmt.Sprintf("http://%s", addr)
	router := newRouter(api.NewServer(svcs.game, hub, clock), mcp.NewClient(baseURL))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(log.Fields{
			"api":  baseURL + "/api",
			"ws":   fmt.Sprintf("ws://%s/ws?session=<id>", addr),
			"mcp":  baseURL + "/mcp",
			"name": AppName,
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			cancel()
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), router)
		}()
	}

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info("starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(log.Fields{
		"api": ngrokURL + "/api",
		"mcp": ngrokURL + "/mcp",
	}).Infof("🚀 ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.WithError(err).Error("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// externalAPIUp reports whether an API server already answers at baseURL
func externalAPIUp(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses the API at
// externalURL when one answers; otherwise it serves the API on a random
// loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, externalURL string, svcs *services) error {
	baseURL := externalURL
	log.WithField("url", externalURL).Debug("checking for external API server")

	if externalAPIUp(externalURL) {
		log.WithField("url", externalURL).Info("external API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub, clock := newHub(ctx, svcs.game)
		defer clock.StopAll()

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub, clock)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.WithField("url", baseURL).Info("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
