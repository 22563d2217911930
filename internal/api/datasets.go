package api

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dattodev/amazon-crawler/internal/calculator"
	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/store"
)

// GetDataset 查询单个数据集
// GET /api/datasets/:id
func (h *Handler) GetDataset(c *gin.Context) {
	dataset, err := h.store.Dataset(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "数据集不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dataset)
}

// ListMetrics 列出数据集的全部指标记录
// GET /api/datasets/:id/metrics
func (h *Handler) ListMetrics(c *gin.Context) {
	records, err := h.store.MetricsByDataset(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*model.MetricRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// GetSummary 查询数据集的时间序列汇总
// GET /api/datasets/:id/summary?metrics=a,b&from=2024-01&to=2024-06
func (h *Handler) GetSummary(c *gin.Context) {
	opts := calculator.SummaryOptions{
		FromMonth: c.Query("from"),
		ToMonth:   c.Query("to"),
	}
	if metrics := c.Query("metrics"); metrics != "" {
		opts.Metrics = strings.Split(metrics, ",")
	}

	summary, err := calculator.BuildSummary(h.store, c.Param("id"), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteDataset 删除数据集及其上传文件
// DELETE /api/datasets/:id
func (h *Handler) DeleteDataset(c *gin.Context) {
	datasetID := c.Param("id")
	if _, err := h.store.Dataset(datasetID); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "数据集不存在"})
		return
	}

	if err := h.store.DeleteDataset(datasetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if path, err := h.findUpload(datasetID); err == nil {
		os.Remove(path)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": datasetID})
}
