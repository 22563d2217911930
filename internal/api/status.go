package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized     bool `json:"initialized"`     // 是否已有类目数据
	TotalCategories int  `json:"totalCategories"` // 类目总数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	categories, err := h.store.Categories()
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{Initialized: false})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{
		Initialized:     len(categories) > 0,
		TotalCategories: len(categories),
	})
}
