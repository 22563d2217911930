package calculator

import (
	"math"
	"testing"
)

func TestComputeProfit(t *testing.T) {
	t.Parallel()

	out := ComputeProfit(ProfitInputs{Price: 100, ReferralFee: 15, FbaFee: 5})

	// 成本上限 = 100 - (广告 20 + 费用 20 + 目标利润 20) = 40
	if math.Abs(out.CogsCap-40) > 1e-9 {
		t.Fatalf("cogs_cap = %v, want 40", out.CogsCap)
	}
	// 利润 = 100 - (广告 20 + 费用 20 + 假定成本 20) = 40
	if math.Abs(out.Profit-40) > 1e-9 {
		t.Fatalf("profit = %v, want 40", out.Profit)
	}
	if math.Abs(out.MarginPct-40) > 1e-9 {
		t.Fatalf("margin = %v, want 40", out.MarginPct)
	}
	// ROI = 利润 / 假定成本 = 40/20 = 200%
	if math.Abs(out.ROIPct-200) > 1e-9 {
		t.Fatalf("roi = %v, want 200", out.ROIPct)
	}
}

func TestComputeProfit_ZeroPrice(t *testing.T) {
	t.Parallel()

	out := ComputeProfit(ProfitInputs{})
	if out.MarginPct != 0 || out.ROIPct != 0 {
		t.Fatalf("zero price must not divide: %+v", out)
	}
}

func TestComputeAdsChain(t *testing.T) {
	t.Parallel()

	cr := 0.1
	cpc := 1.25
	share := 0.4
	chain := ComputeAdsChain(&cr, &cpc, &share, 25)

	if chain.ROAS == nil || math.Abs(*chain.ROAS-2) > 1e-9 {
		t.Fatalf("roas = %v, want 2", chain.ROAS)
	}
	if chain.ACOS == nil || math.Abs(*chain.ACOS-0.5) > 1e-9 {
		t.Fatalf("acos = %v, want 0.5", chain.ACOS)
	}
	if chain.TACOS == nil || math.Abs(*chain.TACOS-0.2) > 1e-9 {
		t.Fatalf("tacos = %v, want 0.2", chain.TACOS)
	}
}

func TestComputeAdsChain_MissingInputs(t *testing.T) {
	t.Parallel()

	cr := 0.1
	cpc := 1.25

	if chain := ComputeAdsChain(nil, &cpc, nil, 25); chain.ROAS != nil {
		t.Fatalf("roas should be nil without cr")
	}
	if chain := ComputeAdsChain(&cr, nil, nil, 25); chain.ROAS != nil {
		t.Fatalf("roas should be nil without cpc")
	}
	if chain := ComputeAdsChain(&cr, &cpc, nil, 0); chain.ROAS != nil {
		t.Fatalf("roas should be nil without price")
	}

	chain := ComputeAdsChain(&cr, &cpc, nil, 25)
	if chain.ACOS == nil || chain.TACOS != nil {
		t.Fatalf("tacos requires click share: %+v", chain)
	}
}
