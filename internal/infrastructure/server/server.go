// Package server wires the shell's components together and runs the
// HTTP listener that carries both the UI bridge and the diagnostics API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	apihttp "github.com/MarinaBrowser/marina/shell/internal/api/http"
	"github.com/MarinaBrowser/marina/shell/internal/api/middleware"
	"github.com/MarinaBrowser/marina/shell/internal/bridge"
	"github.com/MarinaBrowser/marina/shell/internal/domain/gesture"
	"github.com/MarinaBrowser/marina/shell/internal/domain/nav"
	"github.com/MarinaBrowser/marina/shell/internal/domain/org"
	"github.com/MarinaBrowser/marina/shell/internal/domain/session"
	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/agent"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/config"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/monitoring"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/tracing"
	"github.com/MarinaBrowser/marina/shell/internal/providers/favicon"
	httpclient "github.com/MarinaBrowser/marina/shell/internal/providers/http/client"
	"github.com/MarinaBrowser/marina/shell/internal/shared/paths"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
	"github.com/MarinaBrowser/marina/shell/internal/storage/snapshot"
)

// shutdownGrace bounds how long Run waits for in-flight requests.
const shutdownGrace = 5 * time.Second

// maxPageBytes caps page fetches made on behalf of the favicon pipeline.
const maxPageBytes int64 = 2 << 20

// Server owns every long-lived component of the shell process.
type Server struct {
	router   *gin.Engine
	store    *org.Store
	coord    *surface.Coordinator
	shell    *shell.Shell
	bridge   *bridge.Bridge
	sessions *session.Manager
	favicons *favicon.Provider
	agent    *agent.Client
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// New builds and wires the shell. The returned server is not yet
// listening; call Run.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("initializing marina shell",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("agent_addr", cfg.Agent.Address),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("shell", logger.Logger)

	// Profile layout first: everything persistent hangs off it.
	root := cfg.Session.ProfileDir
	if root == "" {
		root = paths.DefaultRoot()
	}
	profile := paths.Profile{Root: root}
	if err := profile.Ensure(); err != nil {
		return nil, fmt.Errorf("prepare profile directory: %w", err)
	}
	logger.Info("profile ready", zap.String("root", profile.Root))

	disk, err := snapshot.NewStore(profile.SnapshotsDir(), cfg.Session.Compression, logger)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	// Core components.
	store := org.NewStore()
	tracker := nav.NewTracker(nav.Config{
		RestoreResetsForward: cfg.Org.RestoreResetsForward,
	})
	gestures := gesture.New(gesture.Config{
		Threshold:       cfg.Gesture.Threshold,
		NoiseFloor:      cfg.Gesture.NoiseFloor,
		Dominance:       cfg.Gesture.Dominance,
		SettleAfter:     cfg.Gesture.SettleAfter.Std(),
		EventsPerSecond: cfg.Gesture.EventsPerSecond,
		Burst:           cfg.Gesture.Burst,
	})

	// The bridge doubles as the surface factory: mounts round-trip to the
	// UI process over the same websocket that carries tab events.
	br := bridge.New(bridge.Config{
		CallTimeout: cfg.Bridge.CallTimeout.Std(),
	}, store, logger, metrics)

	coord := surface.New(store, tracker, br, surface.Config{
		MountTimeout: cfg.Surface.MountTimeout.Std(),
	})

	// Metadata pipeline.
	web := httpclient.New(httpclient.Config{
		Timeout:      cfg.Favicon.Timeout.Std(),
		RetryMax:     2,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 4 * time.Second,
		PerHostRPS:   4,
		PerHostBurst: 8,
		UserAgent:    "marina-shell/1.0",
	})
	fetcher := favicon.NewFetcher(web, maxPageBytes, cfg.Favicon.MaxIconBytes)
	favicons := favicon.New(fetcher, store, logger, metrics, favicon.Options{
		CacheSize: cfg.Favicon.CacheSize,
		Timeout:   cfg.Favicon.Timeout.Std(),
	})

	sh := shell.New(store, tracker, coord, gestures, shell.Config{
		DockDeletePolicy: types.DockDeletePolicy(cfg.Org.DockDeletePolicy),
	})

	coord.SetHooks(surface.Hooks{
		Crashed: func(tabID string) {
			metrics.IncSurfaceCrashes()
			br.PushSurfaceCrashed(tabID)
		},
		NewWindow: sh.HandleNewWindow,
		Favicon:   favicons.Enqueue,
	})
	br.Wire(sh, coord)

	// Restore before Watch so the loaded snapshot is not immediately
	// re-saved, and before the bridge starts pushing state.
	sessions := session.NewManager(store, disk, cfg.Session.Debounce.Std(), logger, metrics)
	if _, err := sessions.Restore(); err != nil {
		logger.Warn("session restore failed, starting empty", zap.Error(err))
	}
	if _, ok := store.DefaultRealm(); !ok {
		if err := seedDefaults(store); err != nil {
			return nil, fmt.Errorf("seed default workspace: %w", err)
		}
		logger.Info("seeded default workspace")
	}
	sessions.Watch()
	br.Watch()
	store.Subscribe(func(types.SidebarState) {
		syncGauges(metrics, store, coord)
	})
	syncGauges(metrics, store, coord)

	// Agent client is optional: without it command() degrades to an
	// unavailable error instead of blocking boot.
	var agentClient *agent.Client
	if cfg.Agent.Enabled && cfg.Agent.Address != "" {
		client, err := agent.New(cfg.Agent.Address, logger, metrics,
			grpc.WithUnaryInterceptor(tracing.GRPCClientInterceptor(tracer)))
		if err != nil {
			logger.Warn("agent service unavailable", zap.Error(err))
		} else {
			agentClient = client
			sh.WithAgent(agentClient)
			logger.Info("connected to agent service", zap.String("addr", cfg.Agent.Address))
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlerMetrics := apihttp.NewHandlerMetrics(metrics)
	handlers := apihttp.NewHandlers(sh, sessions, br, favicons, handlerMetrics, logger)
	aggregator := apihttp.NewMetricsAggregator(metrics, sh, sessions, br, agentClient, web)

	router.GET("/health", handlers.Health)
	router.GET("/state", handlers.State)
	router.GET("/tabs", handlers.Tabs)
	router.GET("/tabs/active", handlers.ActiveTab)
	router.GET("/stats", handlers.Stats)
	router.GET("/gestures/stats", handlers.GestureStats)

	router.GET("/session/stats", handlers.SessionStats)
	router.POST("/session/save", handlers.SaveSession)
	router.POST("/session/export", handlers.ExportSession)
	router.POST("/session/import", handlers.ImportSession)

	router.POST("/logs/stream", handlers.StreamLogs)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", aggregator.GetAggregatedMetrics)
	router.GET("/metrics/dashboard", aggregator.GetMetricsDashboard)

	// The UI process rides the same listener.
	router.GET("/bridge", br.Handle)

	logger.Info("shell initialized")

	return &Server{
		router:   router,
		store:    store,
		coord:    coord,
		shell:    sh,
		bridge:   br,
		sessions: sessions,
		favicons: favicons,
		agent:    agentClient,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.favicons.Start(ctx)

	addr := s.config.Server.Host + ":" + s.config.Server.Port
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	return s.Close()
}

// Close flushes persistent state and releases every connection. Safe to
// call after Run returns.
func (s *Server) Close() error {
	if err := s.sessions.Close(); err != nil {
		s.logger.Error("final session save failed", zap.Error(err))
	}
	s.bridge.Close()
	s.favicons.Wait()
	if s.agent != nil {
		if err := s.agent.Close(); err != nil {
			s.logger.Error("agent client close failed", zap.Error(err))
		}
	}
	s.logger.Sync()
	return nil
}

// seedDefaults gives a fresh profile one realm and one home tab so the
// UI never renders an empty sidebar.
func seedDefaults(store *org.Store) error {
	realm, err := store.CreateRealm("Personal", "home", "#6366f1")
	if err != nil {
		return err
	}
	_, err = store.CreateTab(realm.ID, nil, "")
	return err
}

// syncGauges mirrors store and coordinator counts into Prometheus gauges.
func syncGauges(m *monitoring.Metrics, store *org.Store, coord *surface.Coordinator) {
	stats := store.Stats()
	m.SetTabsOpen(stats.TotalTabs)
	m.SetRealmsActive(stats.TotalRealms)
	m.SetDocksActive(stats.TotalDocks)
	surf := coord.Stats()
	m.SetSurfaces(surf.Visible, surf.Hidden, surf.Mounting)
}
