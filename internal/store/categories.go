package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// CreateCategory 新建类目
func (s *Store) CreateCategory(c *model.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, name, slug, referral_fee_percent_default, referral_min_fee_usd, default_ctr, default_cpc)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Slug, c.ReferralFeePercentDefault, c.ReferralMinFeeUSD, c.DefaultCTR, c.DefaultCPC)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Category 按 ID 查询类目
func (s *Store) Category(id string) (*model.Category, error) {
	row := s.db.QueryRow(`
		SELECT id, name, slug, fba_fee_usd, size_tier_estimate, avg_weight_lb, avg_volume_in3,
		       referral_fee_percent_default, referral_min_fee_usd, default_ctr, default_cpc, created_at
		FROM categories WHERE id = ?
	`, id)
	return scanCategory(row)
}

// Categories 列出全部类目
func (s *Store) Categories() ([]*model.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, name, slug, fba_fee_usd, size_tier_estimate, avg_weight_lb, avg_volume_in3,
		       referral_fee_percent_default, referral_min_fee_usd, default_ctr, default_cpc, created_at
		FROM categories ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateConstants 按增量更新类目常量，nil 字段保持原值
func (s *Store) UpdateConstants(id string, update *model.CategoryConstantUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	var sets []string
	var args []any
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if update.FbaFeeUSD != nil {
		add("fba_fee_usd", *update.FbaFeeUSD)
	}
	if update.SizeTierEstimate != nil {
		add("size_tier_estimate", *update.SizeTierEstimate)
	}
	if update.AvgWeightLb != nil {
		add("avg_weight_lb", *update.AvgWeightLb)
	}
	if update.AvgVolumeIn3 != nil {
		add("avg_volume_in3", *update.AvgVolumeIn3)
	}
	if update.ReferralFeePercentDefault != nil {
		add("referral_fee_percent_default", *update.ReferralFeePercentDefault)
	}
	if update.ReferralMinFeeUSD != nil {
		add("referral_min_fee_usd", *update.ReferralMinFeeUSD)
	}

	args = append(args, id)
	query := "UPDATE categories SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update category constants: %w", err)
	}
	return nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	var fbaFee, weight, volume, feeDefault, minFee, ctr, cpc sql.NullFloat64
	var tier sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &fbaFee, &tier, &weight, &volume,
		&feeDefault, &minFee, &ctr, &cpc, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	c.FbaFeeUSD = nullFloat(fbaFee)
	c.SizeTierEstimate = tier.String
	c.AvgWeightLb = nullFloat(weight)
	c.AvgVolumeIn3 = nullFloat(volume)
	c.ReferralFeePercentDefault = nullFloat(feeDefault)
	c.ReferralMinFeeUSD = nullFloat(minFee)
	c.DefaultCTR = nullFloat(ctr)
	c.DefaultCPC = nullFloat(cpc)
	return &c, nil
}
