package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dattodev/amazon-crawler/internal/api"
	"github.com/dattodev/amazon-crawler/internal/config"
	"github.com/dattodev/amazon-crawler/internal/store"
)

// Server HTTP 服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	api     *api.Handler
	watcher *Watcher
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}

	sqliteStore, err := store.New(config.DBPath(cfg, dataDir))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	apiHandler := api.NewHandler(sqliteStore, dataDir)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		api:    apiHandler,
	}

	if cfg.Ingest.WatchDir != "" {
		s.watcher = NewWatcher(apiHandler, sqliteStore, cfg.Ingest.WatchDir, cfg.Ingest.WatchIntervalSec)
	}

	s.setupRoutes()

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	if s.watcher != nil {
		s.watcher.Start()
	}
	return s.router.Run(addr)
}

// Close 释放资源
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
