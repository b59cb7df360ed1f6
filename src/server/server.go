package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/state"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Store  *state.Store
	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDashboardState // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once
	connCount  atomic.Int64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, log *logger.Logger, store *state.Store) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		broadcast:  make(chan *models.MDashboardState, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/state", s.getState)
	s.engine.GET("/api/ticks", s.getTicks)
	s.engine.GET("/api/snapshots", s.getSnapshots)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	// Signal the Hub instead of closing the rendezvous channels: a websocket
	// upgrade racing with shutdown must never send on a closed channel.
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getState(c *gin.Context) {
	c.JSON(200, s.Store.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTicks(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(400, gin.H{"error": "limit must be a positive integer"})
		return
	}

	c.JSON(200, gin.H{
		"count": s.Store.TickCount(),
		"ticks": s.Store.RecentTicks(limit),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSnapshots(c *gin.Context) {
	c.JSON(200, s.Store.Snapshot().Snapshots)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	// Static setup the UI needs to label its panels
	c.JSON(200, gin.H{
		"future_symbol":    s.Config.Market.FutureSymbol,
		"index_symbol":     s.Config.Market.IndexSymbol,
		"trading_class":    s.Config.Market.TradingClass,
		"option_exchanges": s.Config.Market.OptionExchanges,
		"timezone":         s.Config.Schedule.Timezone,
		"schedule": gin.H{
			"morning":   s.Config.Schedule.MorningSnap,
			"afternoon": s.Config.Schedule.AfternoonSnap,
			"late":      s.Config.Schedule.LateSnap,
		},
		"update_interval_seconds": s.Config.Engine.UpdateIntervalSeconds,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	st := s.Store.Snapshot()

	c.JSON(200, gin.H{
		"status":      "ok",
		"connected":   st.Connected,
		"connections": s.connCount.Load(),
		"last_update": st.LastUpdate,
		"mode":        st.Mode,
	})
}
