package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dattodev/amazon-crawler/internal/api"
	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/store"
)

// Watcher 后台目录监听，自动导入新出现的工作簿
// 目录结构为 <watchDir>/<类目 slug>/xxx.xlsx，导入成功后移入 imported 子目录
type Watcher struct {
	api      *api.Handler
	store    *store.Store
	dir      string
	interval time.Duration
	stopChan chan struct{}
}

// NewWatcher 创建目录监听器
func NewWatcher(apiHandler *api.Handler, s *store.Store, dir string, intervalSec int) *Watcher {
	if intervalSec <= 0 {
		intervalSec = 30
	}
	return &Watcher{
		api:      apiHandler,
		store:    s,
		dir:      dir,
		interval: time.Duration(intervalSec) * time.Second,
		stopChan: make(chan struct{}),
	}
}

// Start 启动监听
func (w *Watcher) Start() {
	go w.loop()
}

// Stop 停止监听
func (w *Watcher) Stop() {
	close(w.stopChan)
}

func (w *Watcher) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan()
	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan 扫描一轮目录
func (w *Watcher) scan() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Printf("[watcher] failed to read watch dir: %v", err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		category, err := w.categoryBySlug(entry.Name())
		if err != nil {
			log.Printf("[watcher] no category for dir %s, skipping", entry.Name())
			continue
		}
		w.scanCategory(filepath.Join(w.dir, entry.Name()), category)
	}
}

func (w *Watcher) categoryBySlug(slug string) (*model.Category, error) {
	categories, err := w.store.Categories()
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (w *Watcher) scanCategory(dir string, category *model.Category) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" && ext != ".xlsm" {
			continue
		}

		path := filepath.Join(dir, name)
		dataset, err := w.api.IngestFile(path, category.ID)
		if err != nil {
			log.Printf("[watcher] failed to ingest %s: %v", path, err)
			continue
		}
		log.Printf("[watcher] ingested %s as dataset %s (status %s)", name, dataset.ID, dataset.Status)

		// 移入 imported 子目录避免重复导入
		importedDir := filepath.Join(dir, "imported")
		if err := os.MkdirAll(importedDir, 0755); err == nil {
			os.Rename(path, filepath.Join(importedDir, name))
		}
	}
}
