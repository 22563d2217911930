package store

import (
	"database/sql"
	"fmt"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// ReplaceSheetRecords 整体替换某个 (数据集, 来源 Sheet) 的记录集
// 先删后插在同一事务中完成，保证重复导入不产生累积
func (s *Store) ReplaceSheetRecords(datasetID, sourceSheet string, records []*model.MetricRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM metric_records WHERE dataset_id = ? AND source_sheet = ?`,
		datasetID, sourceSheet,
	); err != nil {
		return fmt.Errorf("failed to delete existing records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO metric_records (
			dataset_id, category_id, metric, bucket, value, unit, source_sheet,
			sample_size, sample_type, fee_percent, base_price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			datasetID, r.CategoryID, r.Metric, r.Bucket, r.Value, string(r.Unit), sourceSheet,
			r.SampleSize, r.SampleType, r.FeePercent, r.BasePrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MetricsByDataset 读取数据集的全部指标记录
func (s *Store) MetricsByDataset(datasetID string) ([]*model.MetricRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, dataset_id, category_id, metric, bucket, value, unit, source_sheet,
		       sample_size, sample_type, fee_percent, base_price, created_at
		FROM metric_records
		WHERE dataset_id = ?
		ORDER BY id
	`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric records: %w", err)
	}
	defer rows.Close()

	var records []*model.MetricRecord
	for rows.Next() {
		rec, err := scanMetricRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanMetricRecord(rows *sql.Rows) (*model.MetricRecord, error) {
	var rec model.MetricRecord
	var unit string
	var sampleSize, feePercent, basePrice sql.NullFloat64
	err := rows.Scan(
		&rec.ID, &rec.DatasetID, &rec.CategoryID, &rec.Metric, &rec.Bucket,
		&rec.Value, &unit, &rec.SourceSheet,
		&sampleSize, &rec.SampleType, &feePercent, &basePrice, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan metric record: %w", err)
	}
	rec.Unit = model.Unit(unit)
	if sampleSize.Valid {
		rec.SampleSize = &sampleSize.Float64
	}
	if feePercent.Valid {
		rec.FeePercent = &feePercent.Float64
	}
	if basePrice.Valid {
		rec.BasePrice = &basePrice.Float64
	}
	return &rec, nil
}
