package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// ErrNotFound 查询的实体不存在
var ErrNotFound = errors.New("not found")

// CreateDataset 新建数据集
func (s *Store) CreateDataset(d *model.Dataset) error {
	_, err := s.db.Exec(`
		INSERT INTO datasets (id, category_id, name, status, time_range_from)
		VALUES (?, ?, ?, ?, ?)
	`, d.ID, d.CategoryID, d.Name, string(d.Status), d.TimeRangeFrom)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// Dataset 按 ID 查询数据集
func (s *Store) Dataset(id string) (*model.Dataset, error) {
	row := s.db.QueryRow(`
		SELECT id, category_id, name, status, time_range_from, created_at
		FROM datasets WHERE id = ?
	`, id)
	return scanDataset(row)
}

// DatasetsByCategory 列出类目下的数据集，新的在前
func (s *Store) DatasetsByCategory(categoryID string) ([]*model.Dataset, error) {
	rows, err := s.db.Query(`
		SELECT id, category_id, name, status, time_range_from, created_at
		FROM datasets WHERE category_id = ?
		ORDER BY created_at DESC, id DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*model.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// SetStatus 更新数据集状态
func (s *Store) SetStatus(id string, status model.DatasetStatus) error {
	_, err := s.db.Exec(`UPDATE datasets SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update dataset status: %w", err)
	}
	return nil
}

// SetTimeRangeFrom 写回识别出的数据月份
func (s *Store) SetTimeRangeFrom(id, month string) error {
	_, err := s.db.Exec(`UPDATE datasets SET time_range_from = ? WHERE id = ?`, month, id)
	if err != nil {
		return fmt.Errorf("failed to update dataset time range: %w", err)
	}
	return nil
}

// DeleteDataset 删除数据集，记录随外键级联删除
func (s *Store) DeleteDataset(id string) error {
	_, err := s.db.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*model.Dataset, error) {
	var d model.Dataset
	var status string
	err := row.Scan(&d.ID, &d.CategoryID, &d.Name, &status, &d.TimeRangeFrom, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan dataset: %w", err)
	}
	d.Status = model.DatasetStatus(status)
	return &d, nil
}
