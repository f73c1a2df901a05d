package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mescon/Unqlocked/internal/api"
	"github.com/mescon/Unqlocked/internal/config"
	"github.com/mescon/Unqlocked/internal/console"
	"github.com/mescon/Unqlocked/internal/layout"
	"github.com/mescon/Unqlocked/internal/logger"
	"github.com/mescon/Unqlocked/internal/metrics"
	"github.com/mescon/Unqlocked/internal/services"
	"github.com/mescon/Unqlocked/internal/statemachine"
)

func main() {
	// Define command line flags (these override environment variables)
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(showVersion, "v", false, "Print version and exit (shorthand)")

	// Configuration flags - all can also be set via environment variables (UNQLOCKED_*)
	flagPort := flag.String("port", "", "HTTP server port (env: UNQLOCKED_PORT, default: 3095)")
	flagLogLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (env: UNQLOCKED_LOG_LEVEL, default: info)")
	flagDataDir := flag.String("data-dir", "", "Data directory path (env: UNQLOCKED_DATA_DIR)")
	flagLayout := flag.String("layout", "", "Built-in layout name or path to a YAML layout (env: UNQLOCKED_LAYOUT, default: english)")
	flagFace := flag.String("face", "", "Clock face: words, sprites (env: UNQLOCKED_FACE, default: words)")
	flagSurface := flag.String("surface", "", "Where to draw: web, console (env: UNQLOCKED_SURFACE, default: web)")
	flagNoColor := flag.Bool("no-color", false, "Disable colours on the console surface (env: UNQLOCKED_NO_COLOR)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Unqlocked %s\n", config.Version)
		os.Exit(0)
	}

	config.Load()
	config.ApplyFlags(config.FlagOverrides{
		Port:     flagPort,
		LogLevel: flagLogLevel,
		DataDir:  flagDataDir,
		Layout:   flagLayout,
		Face:     flagFace,
		Surface:  flagSurface,
		NoColor:  flagNoColor,
	})
	cfg := config.Get()

	logger.Init(cfg.LogDir)
	logger.SetLevel(cfg.LogLevel)

	logger.Infof("========================================")
	logger.Infof("Starting Unqlocked %s...", config.Version)
	logger.Infof("========================================")

	logger.Infof("Configuration:")
	logger.Infof("  Log Level: %s", cfg.LogLevel)
	logger.Infof("  Data Directory: %s", cfg.DataDir)
	logger.Infof("  Log Directory: %s", cfg.LogDir)
	logger.Infof("  Layout: %s", cfg.Layout)
	logger.Infof("  Face: %s", cfg.Face)
	logger.Infof("  Surface: %s", cfg.Surface)
	if cfg.Surface == config.SurfaceWeb {
		logger.Infof("  Port: %s", cfg.Port)
	}

	l, err := loadLayout(cfg)
	if err != nil {
		logger.Errorf("Failed to load layout: %v", err)
		os.Exit(1)
	}
	logger.Infof("✓ Layout %q loaded (%dx%d, %d phrases)", l.Name, l.Width, l.Height, len(l.Times))

	metricsService := metrics.NewMetricsService(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	logger.Infof("✓ Metrics Service initialized")

	var (
		renderer   services.Renderer
		visibility statemachine.Visibility
		hub        *api.WebSocketHub
	)
	switch cfg.Surface {
	case config.SurfaceConsole:
		opts := []console.Option{console.WithClearScreen()}
		if cfg.NoColor {
			opts = append(opts, console.WithoutColor())
		}
		c := console.NewRenderer(os.Stdout, l.Matrix, opts...)
		renderer, visibility = c, c
	default:
		hub = api.NewWebSocketHub(cfg.CORSOrigin, logger.Std("[ws] "), true)
		hub.SetGauge(metricsService)
		renderer, visibility = hub, hub
	}

	face, err := services.NewFace(services.Kind(cfg.Face), services.FaceDeps{
		Layout:   l,
		Renderer: renderer,
		Logger:   logger.Std(""),
		Recorder: metricsService,
	})
	if err != nil {
		logger.Errorf("Failed to create %s face: %v", cfg.Face, err)
		os.Exit(1)
	}
	logger.Infof("✓ %s face ready (one state every %d seconds)", face.Name(), face.Delay())

	display := services.NewDisplay(face, metricsService, logger.Std(""), visibility,
		statemachine.WithLogger(logger.Std("[tick] ")),
		statemachine.WithObserver(metricsService),
	)

	var apiServer *api.RESTServer
	if hub != nil {
		// The clock starts when the first page connects and stops once the last one leaves
		hub.OnConnect(func() {
			if err := display.Ensure(); err != nil && !errors.Is(err, services.ErrDisplayClosed) {
				logger.Errorf("Failed to start %s face: %v", face.Name(), err)
			}
		})

		apiServer = api.NewRESTServer(api.ServerDeps{
			Layout:  l,
			Display: display,
			Hub:     hub,
			Metrics: metricsService,
		})
		go func() {
			addr := ":" + cfg.Port
			if err := apiServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("Failed to start API server: %v", err)
				os.Exit(1)
			}
		}()
	} else if err := display.Ensure(); err != nil {
		logger.Errorf("Failed to start %s face: %v", face.Name(), err)
		os.Exit(1)
	}

	logger.Infof("========================================")
	logger.Infof("✓ Unqlocked %s started successfully", config.Version)
	if apiServer != nil {
		logger.Infof("✓ Clock available at http://localhost:%s/", cfg.Port)
	}
	logger.Infof("========================================")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Infof("Received signal %v, initiating graceful shutdown...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	logger.Infof("Stopping clock face...")
	display.Shutdown()
	logger.Infof("✓ Clock face stopped")

	if apiServer != nil {
		logger.Infof("Stopping API Server...")
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("API Server shutdown error: %v", err)
		} else {
			logger.Infof("✓ API Server stopped")
		}
		hub.Close()
	}

	logger.Infof("✓ Unqlocked shutdown complete")
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
	}
}

func loadLayout(cfg *config.Config) (*layout.Layout, error) {
	if cfg.LayoutIsFile() {
		return layout.Load(cfg.Layout)
	}
	return layout.Builtin(cfg.Layout)
}
