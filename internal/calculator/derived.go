package calculator

// 测算用经验常量：广告、目标利润、假定采购成本均按售价的 20% 计
const (
	defaultAdsPct          = 0.20
	defaultProfitTargetPct = 0.20
	defaultCogsPct         = 0.20
)

// ProfitInputs 利润测算输入，费用缺失时传 0
type ProfitInputs struct {
	Price       float64
	ReferralFee float64
	FbaFee      float64
}

// ProfitMetrics 利润测算结果
type ProfitMetrics struct {
	CogsCap   float64 // 成本上限：售价扣除广告、费用、目标利润后的剩余
	Profit    float64 // 按假定成本测算的利润
	MarginPct float64 // 利润率（百分点）
	ROIPct    float64 // 投资回报率（百分点）
}

// ComputeProfit 由售价与费用测算成本上限、利润、利润率、ROI
func ComputeProfit(in ProfitInputs) ProfitMetrics {
	ads := defaultAdsPct * in.Price
	profitTarget := defaultProfitTargetPct * in.Price
	cogsAssumed := defaultCogsPct * in.Price
	fee := in.ReferralFee + in.FbaFee

	out := ProfitMetrics{
		CogsCap: in.Price - (ads + fee + profitTarget),
		Profit:  in.Price - (ads + fee + cogsAssumed),
	}
	if in.Price > 0 {
		out.MarginPct = out.Profit / in.Price * 100
	}
	if cogsAssumed > 0 {
		out.ROIPct = out.Profit / cogsAssumed * 100
	}
	return out
}

// AdsChain 广告效率比值链，输入不全时对应项为 nil
type AdsChain struct {
	ROAS  *float64
	ACOS  *float64 // 0-1 小数
	TACOS *float64 // 0-1 小数
}

// ComputeAdsChain 由转化率、CPC、点击份额推导 ROAS/ACOS/TACOS
// cr 与 clickShare 为 0-1 小数；任一输入缺失时下游指标为 nil 而非报错
func ComputeAdsChain(cr, cpc, clickShare *float64, price float64) AdsChain {
	var chain AdsChain
	if cr == nil || cpc == nil || *cpc <= 0 || price <= 0 {
		return chain
	}
	roas := (*cr * price) / *cpc
	chain.ROAS = &roas
	if roas > 0 {
		acos := 1 / roas
		chain.ACOS = &acos
		if clickShare != nil {
			tacos := acos * *clickShare
			chain.TACOS = &tacos
		}
	}
	return chain
}
