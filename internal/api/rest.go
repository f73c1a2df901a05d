// Package api provides the HTTP surface for Unqlocked. It serves the clock
// page, exposes the layout and the current frame, and pushes every frame to
// browsers over WebSocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mescon/Unqlocked/internal/config"
	"github.com/mescon/Unqlocked/internal/layout"
	"github.com/mescon/Unqlocked/internal/logger"
	"github.com/mescon/Unqlocked/internal/metrics"
	"github.com/mescon/Unqlocked/internal/services"
	"github.com/mescon/Unqlocked/internal/web"
)

type RESTServer struct {
	router     *gin.Engine
	httpServer *http.Server
	layout     *layout.Layout
	display    *services.Display
	hub        *WebSocketHub
	metrics    *metrics.MetricsService
	startTime  time.Time
}

// ServerDeps contains all dependencies required for the REST server
type ServerDeps struct {
	Layout  *layout.Layout
	Display *services.Display
	Hub     *WebSocketHub
	// Metrics is optional; /metrics is only mounted when set
	Metrics *metrics.MetricsService
}

func NewRESTServer(deps ServerDeps) *RESTServer {
	// Set Gin to release mode for production (suppresses debug warnings)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Request ID middleware for correlation/tracing
	r.Use(func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	})

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		reqID := c.GetString("request_id")
		logger.Errorf("[PANIC RECOVERY] request_id=%s path=%s method=%s error=%v",
			reqID, c.Request.URL.Path, c.Request.Method, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      ErrMsgInternalError,
			"request_id": reqID,
		})
	}))

	s := &RESTServer{
		router:    r,
		layout:    deps.Layout,
		display:   deps.Display,
		hub:       deps.Hub,
		metrics:   deps.Metrics,
		startTime: time.Now(),
	}

	s.setupRoutes()

	return s
}

// Handler exposes the router, mainly for tests.
func (s *RESTServer) Handler() http.Handler {
	return s.router
}

func (s *RESTServer) setupRoutes() {
	// Prometheus metrics endpoint at root level (standard convention)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.router.GET("/", s.handleIndex)

	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/layout", s.handleLayout)
		api.GET("/frame", s.handleFrame)
		api.GET("/ws", s.hub.HandleConnection)
	}

	s.router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "Route")
	})
}

func (s *RESTServer) handleIndex(c *gin.Context) {
	data, err := web.ReadIndex()
	if err != nil {
		respondWithError(c, http.StatusServiceUnavailable, ErrMsgServiceUnavailable, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

type layoutResponse struct {
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Matrix [][]string `json:"matrix"`
	Hours  []string   `json:"hours"`
	Times  []string   `json:"times"`
}

func (s *RESTServer) handleLayout(c *gin.Context) {
	if s.layout == nil {
		respondNotFound(c, "Layout")
		return
	}

	times := make([]string, len(s.layout.Times))
	for i, e := range s.layout.Times {
		times[i] = e.At.String()
	}
	c.JSON(http.StatusOK, layoutResponse{
		Name:   s.layout.Name,
		Width:  s.layout.Width,
		Height: s.layout.Height,
		Matrix: s.layout.Matrix,
		Hours:  s.layout.Hours,
		Times:  times,
	})
}

func (s *RESTServer) handleFrame(c *gin.Context) {
	frame := s.hub.LastFrame()
	if frame.Matrix == nil && frame.Sprites == nil {
		respondNotFound(c, "Frame")
		return
	}
	c.JSON(http.StatusOK, frame)
}

func (s *RESTServer) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"version": config.Version,
		"uptime":  formatUptime(time.Since(s.startTime)),
		"clients": s.hub.ClientCount(),
	}
	if s.display != nil {
		resp["face"] = s.display.Face().Name()
		resp["face_status"] = s.display.Status().String()
		resp["delay_seconds"] = s.display.Face().Delay()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *RESTServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// formatUptime returns a human-readable uptime string
func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
