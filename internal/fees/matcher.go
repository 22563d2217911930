package fees

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// 尺寸/重量单位换算
const (
	cmPerInch = 2.54
	ozPerLb   = 16.0
)

// 维度比较容差
const dimTolerance = 1e-6

// jaccardThreshold 类目分词相似度的匹配下限
const jaccardThreshold = 0.5

// NoMatchingTierError 尺寸分级规则全部不满足
type NoMatchingTierError struct {
	ShippingWeightLb float64
}

func (e *NoMatchingTierError) Error() string {
	return fmt.Sprintf("no size tier accommodates shipping weight %.4f lb", e.ShippingWeightLb)
}

// NoMatchingFeeBandError FBA 费用重量区间查找失败
type NoMatchingFeeBandError struct {
	Tier             string
	ShippingWeightLb float64
}

func (e *NoMatchingFeeBandError) Error() string {
	return fmt.Sprintf("no FBA fee band for tier %q at %.4f lb", e.Tier, e.ShippingWeightLb)
}

// Dimensions 包装尺寸（英寸）
type Dimensions struct {
	Longest     float64
	Median      float64
	Shortest    float64
	LengthGirth float64
}

// ReferralFeeResult 佣金匹配结果
type ReferralFeeResult struct {
	FeeUSD     float64 // 最终费用（已套用最低佣金）
	FeePercent float64 // 有效费率（FeeUSD / price，0-1 小数）
}

// Matcher 费用规则匹配器
// 只读外部供给的规则表，自身无任何 I/O，便于独立测试
type Matcher struct {
	referral []*model.ReferralFeeRule
	tiers    []*model.SizeTierRule
	fbaFees  []*model.FbaFeeRule
}

// NewMatcher 创建匹配器
func NewMatcher(referral []*model.ReferralFeeRule, tiers []*model.SizeTierRule, fbaFees []*model.FbaFeeRule) *Matcher {
	return &Matcher{
		referral: referral,
		tiers:    tiers,
		fbaFees:  fbaFees,
	}
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]+`)
var spacesRe = regexp.MustCompile(`\s+`)

// NormalizeCategory 类目名称归一：小写、& 展开为 and、剔除非字母数字、压缩空白
func NormalizeCategory(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CategoryMatch 判断规则类目与产品类目是否匹配
// 归一后互为子串，或分词集合的 Jaccard 相似度达到阈值
func CategoryMatch(ruleCategory, productCategory string) bool {
	a := NormalizeCategory(ruleCategory)
	b := NormalizeCategory(productCategory)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return jaccard(strings.Fields(a), strings.Fields(b)) >= jaccardThreshold
}

// jaccard 分词集合相似度
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ReferralFee 计算类目佣金
// 所有命中规则按各自口径贡献费用后求和，再套用最低佣金
// 无规则命中时回退到类目缓存的默认费率；仍无则 ok=false（调用方不生成记录）
func (m *Matcher) ReferralFee(category string, price float64, fallback *model.Category) (ReferralFeeResult, bool) {
	if price <= 0 {
		return ReferralFeeResult{}, false
	}

	var matched []*model.ReferralFeeRule
	for _, rule := range m.referral {
		if !CategoryMatch(rule.Category, category) {
			continue
		}
		if price < priceMin(rule) {
			continue
		}
		// portion 规则对价格超出上限的部分仍需按本段切片计费，不能过滤掉
		if rule.ApplyTo != model.ApplyToPortion && price > priceMax(rule) {
			continue
		}
		matched = append(matched, rule)
	}

	if len(matched) == 0 {
		if fallback == nil || fallback.ReferralFeePercentDefault == nil {
			return ReferralFeeResult{}, false
		}
		fee := price * *fallback.ReferralFeePercentDefault
		if fallback.ReferralMinFeeUSD != nil && fee < *fallback.ReferralMinFeeUSD {
			fee = *fallback.ReferralMinFeeUSD
		}
		return ReferralFeeResult{FeeUSD: fee, FeePercent: fee / price}, true
	}

	fee := 0.0
	minFee := 0.0
	for _, rule := range matched {
		switch rule.ApplyTo {
		case model.ApplyToPortion:
			slice := math.Min(price, priceMax(rule)) - math.Max(priceMin(rule), 0)
			if slice > 0 {
				fee += slice * rule.FeePercent
			}
		default: // total
			fee += price * rule.FeePercent
		}
		if rule.MinFeeUSD != nil && *rule.MinFeeUSD > minFee {
			minFee = *rule.MinFeeUSD
		}
	}
	if fee < minFee {
		fee = minFee
	}
	return ReferralFeeResult{FeeUSD: fee, FeePercent: fee / price}, true
}

func priceMin(r *model.ReferralFeeRule) float64 {
	if r.PriceMin == nil {
		return 0
	}
	return *r.PriceMin
}

func priceMax(r *model.ReferralFeeRule) float64 {
	if r.PriceMax == nil {
		return math.Inf(1)
	}
	return *r.PriceMax
}

// ResolveSizeTier 按规则顺序解析尺寸分级，首条全部上限满足者生效
func (m *Matcher) ResolveSizeTier(dims Dimensions, shippingWeightLb float64) (string, error) {
	for _, rule := range m.tiers {
		if tierAccommodates(rule, dims, shippingWeightLb) {
			return NormalizeTier(rule.Tier), nil
		}
	}
	return "", &NoMatchingTierError{ShippingWeightLb: shippingWeightLb}
}

// tierAccommodates 判断分级规则的所有已定义上限是否容纳该包装
func tierAccommodates(rule *model.SizeTierRule, dims Dimensions, shippingWeightLb float64) bool {
	within := func(max *float64, value float64) bool {
		if max == nil {
			return true
		}
		limit := *max
		if strings.EqualFold(rule.UnitLength, "cm") {
			limit /= cmPerInch
		}
		return limit+dimTolerance >= value
	}
	if !within(rule.LongestMax, dims.Longest) ||
		!within(rule.MedianMax, dims.Median) ||
		!within(rule.ShortestMax, dims.Shortest) ||
		!within(rule.LengthGirthMax, dims.LengthGirth) {
		return false
	}
	if rule.ShippingWeightMax != nil {
		limit := *rule.ShippingWeightMax
		if strings.EqualFold(rule.UnitWeight, "oz") {
			limit /= ozPerLb
		}
		if limit+dimTolerance < shippingWeightLb {
			return false
		}
	}
	return true
}

var (
	smallStandardRe = regexp.MustCompile(`(?i)small.*standard`)
	largeStandardRe = regexp.MustCompile(`(?i)large.*standard`)
	oversizeRe      = regexp.MustCompile(`(?i)over.*size`)
)

// NormalizeTier 规范化分级名称，无法辨识时原样返回
func NormalizeTier(name string) string {
	switch {
	case smallStandardRe.MatchString(name):
		return model.TierSmallStandard
	case largeStandardRe.MatchString(name):
		return model.TierLargeStandard
	case oversizeRe.MatchString(name):
		return model.TierOversize
	default:
		return strings.TrimSpace(name)
	}
}

// FbaFee 按尺寸分级与计费重量查找 FBA 配送费
func (m *Matcher) FbaFee(tier string, shippingWeightLb float64) (float64, error) {
	normalized := NormalizeTier(tier)

	rules := m.fbaRulesForTier(normalized)
	if len(rules) == 0 {
		// 规则表中的分级写法可能不规范，用正则兜底搜一次
		rules = m.fbaRulesByPattern(normalized)
	}

	for _, rule := range rules {
		w := shippingWeightLb
		if strings.EqualFold(rule.Unit, "oz") {
			w = shippingWeightLb * ozPerLb
		}
		low := 0.0
		if rule.WeightMin != nil {
			low = *rule.WeightMin
		}
		high := math.Inf(1)
		if rule.WeightMax != nil {
			high = *rule.WeightMax
		}
		if w < low-dimTolerance || w > high+dimTolerance {
			continue
		}
		if rule.FeeUSD != nil {
			return *rule.FeeUSD, nil
		}
		return overageFee(rule, shippingWeightLb), nil
	}

	return 0, &NoMatchingFeeBandError{Tier: tier, ShippingWeightLb: shippingWeightLb}
}

// fbaRulesForTier 精确分级匹配
func (m *Matcher) fbaRulesForTier(normalized string) []*model.FbaFeeRule {
	var rules []*model.FbaFeeRule
	for _, rule := range m.fbaFees {
		if NormalizeTier(rule.Tier) == normalized {
			rules = append(rules, rule)
		}
	}
	return rules
}

// fbaRulesByPattern 分级名正则兜底匹配
func (m *Matcher) fbaRulesByPattern(normalized string) []*model.FbaFeeRule {
	var re *regexp.Regexp
	switch normalized {
	case model.TierSmallStandard:
		re = smallStandardRe
	case model.TierLargeStandard:
		re = largeStandardRe
	case model.TierOversize:
		re = oversizeRe
	default:
		return nil
	}
	var rules []*model.FbaFeeRule
	for _, rule := range m.fbaFees {
		if re.MatchString(rule.Tier) {
			rules = append(rules, rule)
		}
	}
	return rules
}

// overageFee 基础费用加超重阶梯费用
func overageFee(rule *model.FbaFeeRule, shippingWeightLb float64) float64 {
	fee := 0.0
	if rule.BaseUSD != nil {
		fee = *rule.BaseUSD
	}
	for _, over := range rule.Overage {
		w := shippingWeightLb
		if strings.EqualFold(over.OverThresholdUnit, "oz") {
			w = shippingWeightLb * ozPerLb
		}
		excess := w - over.OverThresholdValue
		if excess <= 0 || over.StepValue <= 0 {
			continue
		}
		steps := math.Ceil(excess / over.StepValue)
		fee += steps * over.StepFeeUSD
	}
	return fee
}
