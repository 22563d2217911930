package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dattodev/amazon-crawler/internal/config"
	"github.com/dattodev/amazon-crawler/internal/importer"
	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/store"
)

// Ingest 上传工作簿并导入 (SSE 流式响应)
// POST /api/categories/:id/ingest
func (h *Handler) Ingest(c *gin.Context) {
	categoryID := c.Param("id")
	if _, err := h.store.Category(categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "类目不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	uploadedFile := files[0]

	// 保留上传文件，支持后续重新导入
	datasetID := uuid.NewString()
	savedName := fmt.Sprintf("%s_%s", datasetID, filepath.Base(uploadedFile.Filename))
	savedPath := config.UploadPath(h.dataDir, savedName)
	if err := c.SaveUploadedFile(uploadedFile, savedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	dataset := &model.Dataset{
		ID:         datasetID,
		CategoryID: categoryID,
		Name:       strings.TrimSuffix(uploadedFile.Filename, filepath.Ext(uploadedFile.Filename)),
		Status:     model.DatasetUploaded,
	}
	if err := h.store.CreateDataset(dataset); err != nil {
		os.Remove(savedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.streamIngest(c, savedPath, datasetID)
}

// Reingest 使用已保存的工作簿重新导入 (SSE 流式响应)
// POST /api/datasets/:id/reingest
func (h *Handler) Reingest(c *gin.Context) {
	datasetID := c.Param("id")
	if _, err := h.store.Dataset(datasetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "数据集不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	savedPath, err := h.findUpload(datasetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "上传文件已不存在"})
		return
	}

	h.streamIngest(c, savedPath, datasetID)
}

// findUpload 按数据集 ID 前缀查找已保存的上传文件
func (h *Handler) findUpload(datasetID string) (string, error) {
	matches, err := filepath.Glob(config.UploadPath(h.dataDir, datasetID+"_*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", os.ErrNotExist
	}
	return matches[0], nil
}

// streamIngest 启动导入并把进度事件以 SSE 推送给客户端
func (h *Handler) streamIngest(c *gin.Context, filePath, datasetID string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	coordinator := importer.NewCoordinator(h.store, h.store, h.store, h.store)
	progressChan := coordinator.Ingest(importer.IngestOptions{
		FilePath:  filePath,
		DatasetID: datasetID,
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// IngestFile 供后台目录监听使用的非 HTTP 导入入口
// 返回最终状态，进度事件只打印到日志
func (h *Handler) IngestFile(filePath, categoryID string) (*model.Dataset, error) {
	datasetID := uuid.NewString()
	dataset := &model.Dataset{
		ID:         datasetID,
		CategoryID: categoryID,
		Name:       strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)),
		Status:     model.DatasetUploaded,
		CreatedAt:  time.Now(),
	}
	if err := h.store.CreateDataset(dataset); err != nil {
		return nil, err
	}

	coordinator := importer.NewCoordinator(h.store, h.store, h.store, h.store)
	for event := range coordinator.Ingest(importer.IngestOptions{FilePath: filePath, DatasetID: datasetID}) {
		if event.Type == "warning" || event.Type == "error" {
			log.Printf("[ingest] %s: %s", event.Type, event.Message)
		}
	}
	return h.store.Dataset(datasetID)
}
