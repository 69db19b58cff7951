// Package api serves the local admin surface: health, counters, and a live
// conversion-event feed.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/hazuki-dev/picshift/api/controllers"
	"github.com/hazuki-dev/picshift/api/eventhub"
	"github.com/hazuki-dev/picshift/api/middlewares"
	"github.com/hazuki-dev/picshift/stats"
	"github.com/hazuki-dev/picshift/tool"
)

// Server is the local-only HTTP admin server.
type Server struct {
	addr   string
	engine *gin.Engine
	server *http.Server
	hub    *eventhub.Hub
	agg    *stats.Aggregator
}

// NewServer builds the admin server over the shared aggregator and hub.
func NewServer(addr string, agg *stats.Aggregator, hub *eventhub.Hub) *Server {
	return &Server{
		addr: addr,
		hub:  hub,
		agg:  agg,
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.OnlyAllowLocal)

	statsCtrl := controllers.NewStatsController(s.agg)

	engine.GET("/healthz", controllers.HandleHealth)
	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/stats", statsCtrl.HandleStats)
		apiGroup.GET("/events", eventhub.HandleEventsWS(s.hub))
	}
	return engine
}

// Start runs the server until it fails or Stop is called.
func (s *Server) Start() error {
	s.engine = s.setupRoutes()
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}
	tool.DefaultLogger.Infof("[API] Admin API listening on %s", s.addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		_ = s.server.Close()
	}
}
