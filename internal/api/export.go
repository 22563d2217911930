package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dattodev/amazon-crawler/internal/exporter"
	"github.com/dattodev/amazon-crawler/internal/store"
)

const exportDownloadTTL = 10 * time.Minute

type exportDownload struct {
	filePath  string
	datasetID string
	expiresAt time.Time
}

// exportDownloadStore 导出文件的一次性下载令牌
type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{items: make(map[string]exportDownload)}
}

func (s *exportDownloadStore) put(filePath, datasetID string, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	s.items[token] = exportDownload{
		filePath:  filePath,
		datasetID: datasetID,
		expiresAt: time.Now().Add(ttl),
	}
	return token
}

func (s *exportDownloadStore) get(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	if !ok {
		return exportDownload{}, false
	}
	if time.Now().After(v.expiresAt) {
		delete(s.items, token)
		return exportDownload{}, false
	}
	return v, true
}

func (s *exportDownloadStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Export 导出数据集为 Excel，返回下载令牌
// POST /api/datasets/:id/export
func (h *Handler) Export(c *gin.Context) {
	datasetID := c.Param("id")
	dataset, err := h.store.Dataset(datasetID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "数据集不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	f, err := exporter.NewExporter(h.store).Export(datasetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	filePath := filepath.Join(os.TempDir(), fmt.Sprintf("ac_export_%s_%d.xlsx", datasetID, time.Now().Unix()))
	if err := f.SaveAs(filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存导出文件失败"})
		return
	}

	token := h.downloads.put(filePath, datasetID, exportDownloadTTL)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"filename": fmt.Sprintf("%s_metrics.xlsx", dataset.Name),
	})
}

// DownloadExport 按令牌下载导出文件，令牌一次性有效
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载令牌无效或已过期"})
		return
	}
	h.downloads.delete(token)
	defer os.Remove(item.filePath)

	filename := fmt.Sprintf("dataset_%s.xlsx", item.datasetID)
	c.FileAttachment(item.filePath, filename)
}
