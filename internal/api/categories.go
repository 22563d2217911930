package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/store"
)

// CreateCategoryRequest 新建类目请求
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func categorySlug(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// CreateCategory 新建类目
// POST /api/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	category := &model.Category{
		ID:   uuid.NewString(),
		Name: req.Name,
		Slug: categorySlug(req.Name),
	}
	if err := h.store.CreateCategory(category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListCategories 列出全部类目
// GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.Categories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory 查询单个类目
// GET /api/categories/:id
func (h *Handler) GetCategory(c *gin.Context) {
	category, err := h.store.Category(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "类目不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, category)
}

// ListDatasets 列出类目下的数据集
// GET /api/categories/:id/datasets
func (h *Handler) ListDatasets(c *gin.Context) {
	datasets, err := h.store.DatasetsByCategory(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if datasets == nil {
		datasets = []*model.Dataset{}
	}
	c.JSON(http.StatusOK, datasets)
}
