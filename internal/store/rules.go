package store

import (
	"database/sql"
	"fmt"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// ReferralFeeRules 读取全部类目佣金规则
func (s *Store) ReferralFeeRules() ([]*model.ReferralFeeRule, error) {
	rows, err := s.db.Query(`
		SELECT id, category, price_min, price_max, fee_percent, apply_to, min_fee_usd
		FROM referral_fee_rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query referral fee rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.ReferralFeeRule
	for rows.Next() {
		var r model.ReferralFeeRule
		var priceMin, priceMax, minFee sql.NullFloat64
		var applyTo string
		if err := rows.Scan(&r.ID, &r.Category, &priceMin, &priceMax, &r.FeePercent, &applyTo, &minFee); err != nil {
			return nil, fmt.Errorf("failed to scan referral fee rule: %w", err)
		}
		r.ApplyTo = model.ApplyTo(applyTo)
		r.PriceMin = nullFloat(priceMin)
		r.PriceMax = nullFloat(priceMax)
		r.MinFeeUSD = nullFloat(minFee)
		rules = append(rules, &r)
	}
	return rules, rows.Err()
}

// SizeTierRules 按匹配顺序读取尺寸分级规则
func (s *Store) SizeTierRules() ([]*model.SizeTierRule, error) {
	rows, err := s.db.Query(`
		SELECT id, tier, longest_max, median_max, shortest_max, length_girth_max,
		       shipping_weight_max, unit_length, unit_weight
		FROM size_tier_rules
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query size tier rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.SizeTierRule
	for rows.Next() {
		var r model.SizeTierRule
		var longest, median, shortest, girth, weight sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Tier, &longest, &median, &shortest, &girth,
			&weight, &r.UnitLength, &r.UnitWeight); err != nil {
			return nil, fmt.Errorf("failed to scan size tier rule: %w", err)
		}
		r.LongestMax = nullFloat(longest)
		r.MedianMax = nullFloat(median)
		r.ShortestMax = nullFloat(shortest)
		r.LengthGirthMax = nullFloat(girth)
		r.ShippingWeightMax = nullFloat(weight)
		rules = append(rules, &r)
	}
	return rules, rows.Err()
}

// FbaFeeRules 按匹配顺序读取 FBA 配送费规则并带出超重阶梯
func (s *Store) FbaFeeRules() ([]*model.FbaFeeRule, error) {
	rows, err := s.db.Query(`
		SELECT id, tier, unit, weight_min, weight_max, fee_usd, base_usd
		FROM fba_fee_rules
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fba fee rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.FbaFeeRule
	byID := make(map[int64]*model.FbaFeeRule)
	for rows.Next() {
		var r model.FbaFeeRule
		var weightMin, weightMax, feeUSD, baseUSD sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Tier, &r.Unit, &weightMin, &weightMax, &feeUSD, &baseUSD); err != nil {
			return nil, fmt.Errorf("failed to scan fba fee rule: %w", err)
		}
		r.WeightMin = nullFloat(weightMin)
		r.WeightMax = nullFloat(weightMax)
		r.FeeUSD = nullFloat(feeUSD)
		r.BaseUSD = nullFloat(baseUSD)
		rules = append(rules, &r)
		byID[r.ID] = &r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	overRows, err := s.db.Query(`
		SELECT rule_id, over_threshold_value, over_threshold_unit, step_value, step_fee_usd
		FROM fba_fee_overages
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fba fee overages: %w", err)
	}
	defer overRows.Close()

	for overRows.Next() {
		var ruleID int64
		var o model.FbaOverageRule
		if err := overRows.Scan(&ruleID, &o.OverThresholdValue, &o.OverThresholdUnit, &o.StepValue, &o.StepFeeUSD); err != nil {
			return nil, fmt.Errorf("failed to scan fba fee overage: %w", err)
		}
		if rule, ok := byID[ruleID]; ok {
			rule.Overage = append(rule.Overage, o)
		}
	}
	return rules, overRows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
