package store

import (
	"sort"
	"sync"
	"time"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// MemoryStore 内存数据存储，实现与 sqlite 相同的读写接口
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[string]*model.Category
	datasets   map[string]*model.Dataset
	records    map[string]map[string][]*model.MetricRecord // datasetID -> sourceSheet -> records
	referral   []*model.ReferralFeeRule
	tiers      []*model.SizeTierRule
	fbaFees    []*model.FbaFeeRule
	nextID     int64
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[string]*model.Category),
		datasets:   make(map[string]*model.Dataset),
		records:    make(map[string]map[string][]*model.MetricRecord),
		nextID:     1,
	}
}

// SetRules 设置规则表
func (s *MemoryStore) SetRules(referral []*model.ReferralFeeRule, tiers []*model.SizeTierRule, fbaFees []*model.FbaFeeRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referral = referral
	s.tiers = tiers
	s.fbaFees = fbaFees
}

// ReferralFeeRules 读取佣金规则
func (s *MemoryStore) ReferralFeeRules() ([]*model.ReferralFeeRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.referral, nil
}

// SizeTierRules 读取尺寸分级规则
func (s *MemoryStore) SizeTierRules() ([]*model.SizeTierRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiers, nil
}

// FbaFeeRules 读取配送费规则
func (s *MemoryStore) FbaFeeRules() ([]*model.FbaFeeRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fbaFees, nil
}

// CreateCategory 新建类目
func (s *MemoryStore) CreateCategory(c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.categories[cp.ID] = &cp
	return nil
}

// Category 按 ID 查询类目
func (s *MemoryStore) Category(id string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// UpdateConstants 按增量更新类目常量
func (s *MemoryStore) UpdateConstants(id string, update *model.CategoryConstantUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return ErrNotFound
	}
	if update.IsEmpty() {
		return nil
	}
	if update.FbaFeeUSD != nil {
		c.FbaFeeUSD = update.FbaFeeUSD
	}
	if update.SizeTierEstimate != nil {
		c.SizeTierEstimate = *update.SizeTierEstimate
	}
	if update.AvgWeightLb != nil {
		c.AvgWeightLb = update.AvgWeightLb
	}
	if update.AvgVolumeIn3 != nil {
		c.AvgVolumeIn3 = update.AvgVolumeIn3
	}
	if update.ReferralFeePercentDefault != nil {
		c.ReferralFeePercentDefault = update.ReferralFeePercentDefault
	}
	if update.ReferralMinFeeUSD != nil {
		c.ReferralMinFeeUSD = update.ReferralMinFeeUSD
	}
	return nil
}

// CreateDataset 新建数据集
func (s *MemoryStore) CreateDataset(d *model.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.datasets[cp.ID] = &cp
	return nil
}

// Dataset 按 ID 查询数据集
func (s *MemoryStore) Dataset(id string) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// DatasetsByCategory 列出类目下的数据集，新的在前
func (s *MemoryStore) DatasetsByCategory(categoryID string) ([]*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Dataset
	for _, d := range s.datasets {
		if d.CategoryID != categoryID {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// SetStatus 更新数据集状态
func (s *MemoryStore) SetStatus(id string, status model.DatasetStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.datasets[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	return nil
}

// SetTimeRangeFrom 写回识别出的数据月份
func (s *MemoryStore) SetTimeRangeFrom(id, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.datasets[id]
	if !ok {
		return ErrNotFound
	}
	d.TimeRangeFrom = month
	return nil
}

// ReplaceSheetRecords 整体替换某个 (数据集, 来源 Sheet) 的记录集
func (s *MemoryStore) ReplaceSheetRecords(datasetID, sourceSheet string, records []*model.MetricRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySheet, ok := s.records[datasetID]
	if !ok {
		bySheet = make(map[string][]*model.MetricRecord)
		s.records[datasetID] = bySheet
	}
	stored := make([]*model.MetricRecord, 0, len(records))
	for _, r := range records {
		cp := *r
		cp.ID = s.nextID
		s.nextID++
		cp.SourceSheet = sourceSheet
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		stored = append(stored, &cp)
	}
	bySheet[sourceSheet] = stored
	return nil
}

// MetricsByDataset 按插入顺序读取数据集的全部指标记录
func (s *MemoryStore) MetricsByDataset(datasetID string) ([]*model.MetricRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.MetricRecord
	for _, records := range s.records[datasetID] {
		for _, r := range records {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
