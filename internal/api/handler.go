package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dattodev/amazon-crawler/internal/store"
)

// Handler API 处理器
type Handler struct {
	store     *store.Store
	dataDir   string
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(s *store.Store, dataDir string) *Handler {
	return &Handler{store: s, dataDir: dataDir, downloads: newExportDownloadStore()}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 类目管理
	router.GET("/categories", h.ListCategories)
	router.POST("/categories", h.CreateCategory)
	router.GET("/categories/:id", h.GetCategory)
	router.GET("/categories/:id/datasets", h.ListDatasets)

	// 数据导入
	router.POST("/categories/:id/ingest", h.Ingest)
	router.POST("/datasets/:id/reingest", h.Reingest)

	// 指标查询
	router.GET("/datasets/:id", h.GetDataset)
	router.GET("/datasets/:id/metrics", h.ListMetrics)
	router.GET("/datasets/:id/summary", h.GetSummary)
	router.DELETE("/datasets/:id", h.DeleteDataset)

	// 数据导出
	router.POST("/datasets/:id/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}
