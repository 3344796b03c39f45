package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sonashow/internal/discovery"
	"sonashow/internal/logging"
	"sonashow/internal/notifications"
	"sonashow/internal/services"
)

// Server hosts the HTTP routes and the websocket endpoint.
type Server struct {
	bind   string
	ctrl   *Controller
	hub    *notifications.Hub
	logger *slog.Logger

	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(bind string, ctrl *Controller, hub *notifications.Hub, logger *slog.Logger) (*Server, error) {
	if ctrl == nil || hub == nil {
		return nil, errors.New("web server requires controller and hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		bind:   strings.TrimSpace(bind),
		ctrl:   ctrl,
		hub:    hub,
		logger: logging.NewComponentLogger(logger, "web"),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleSocket)

	api := s.engine.Group("/api")
	api.GET("/library", s.handleLibrary)
	api.POST("/library/refresh", s.handleLibraryRefresh)
	api.GET("/discovery", s.handleDiscovery)
	api.POST("/discovery/start", s.handleStart)
	api.POST("/discovery/stop", s.handleStop)
	api.POST("/discovery/more", s.handleMore)
	api.POST("/acquire", s.handleAcquire)
	api.GET("/settings", s.handleSettings)
	api.PUT("/settings", s.handleUpdateSettings)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the bind address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "web server error", "web_server_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "web clients disconnected"))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("web server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and disconnects websocket clients.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.hub.CloseAll()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(start)),
			logging.String("request_id", requestID))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, "SonaShow is running: %d library series, %d candidates, %d clients\n",
		s.ctrl.index.Len(), len(s.ctrl.session.Candidates()), s.hub.Count())
}

func (s *Server) handleLibrary(c *gin.Context) {
	s.ctrl.SidebarOpened()
	c.JSON(http.StatusOK, gin.H{"items": s.ctrl.index.Items(), "running": s.ctrl.session.Running()})
}

func (s *Server) handleLibraryRefresh(c *gin.Context) {
	items, err := s.ctrl.RefreshLibrary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type discoveryView struct {
	ID         string                `json:"id"`
	State      string                `json:"state"`
	Running    bool                  `json:"running"`
	Seeds      []string              `json:"seeds"`
	LastFound  int                   `json:"last_found"`
	Candidates []discovery.Candidate `json:"candidates"`
}

func (s *Server) handleDiscovery(c *gin.Context) {
	session := s.ctrl.session
	c.JSON(http.StatusOK, discoveryView{
		ID:         session.ID(),
		State:      session.State().String(),
		Running:    session.Running(),
		Seeds:      session.Seeds(),
		LastFound:  session.LastFound(),
		Candidates: session.Candidates(),
	})
}

func (s *Server) handleStart(c *gin.Context) {
	var names []string
	if err := c.ShouldBindJSON(&names); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a list of series names"})
		return
	}
	if err := s.ctrl.Start(names); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, discovery.ErrEmptySelection) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": s.ctrl.session.ID(), "seeds": s.ctrl.session.Seeds()})
}

func (s *Server) handleStop(c *gin.Context) {
	s.ctrl.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (s *Server) handleMore(c *gin.Context) {
	if !s.ctrl.session.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "discovery is not running"})
		return
	}
	s.ctrl.LoadMore()
	c.JSON(http.StatusAccepted, gin.H{"state": s.ctrl.session.State().String()})
}

func (s *Server) handleAcquire(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}
	name, year, err := parseAddRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.ctrl.Acquire(name, year); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrAcquisitionInFlight) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"name": name, "year": year})
}

func (s *Server) handleSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Settings())
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var update SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	current, err := s.ctrl.UpdateSettings(update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, current)
}
