/*
- @Author: aztec
- @Date: 2024-01-31 10:19:32
- @Description: 分组组合回测执行器。按因子分组持仓，等权重定期调仓，计算各组净值和多空净值
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/factor/evaluate"
)

const logPrefix = "backtest"

type ExecutorConfig struct {
	// 手续费率（按成交额计）
	FeeMaker decimal.Decimal `json:"fee_maker"`
}

func ExecutorConfigDefault() ExecutorConfig {
	return ExecutorConfig{
		FeeMaker: decimal.NewFromFloat(0.0002)}
}

type Executor struct {
	cfg ExecutorConfig

	// 各组净值，组索引0为因子值最低组
	navs []decimal.Decimal

	// 多空净值（做多最高组、做空最低组，各半仓）
	lsNav decimal.Decimal

	// 各组当前持仓权重 instId->weight
	weights []map[string]decimal.Decimal

	// 调仓成交记录
	deals []deal
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	return &Executor{cfg: cfg}
}

// 用预处理结果驱动回测
// 只处理完成分组的截面，未分组的截面跳过（持仓和净值保持不变）
func (e *Executor) Run(pr *evaluate.PrepResult) (*Result, error) {
	if pr == nil || pr.Groups < 2 {
		return nil, fmt.Errorf("invalid prep result")
	}

	groups := pr.Groups
	e.navs = make([]decimal.Decimal, groups)
	for g := 0; g < groups; g++ {
		e.navs[g] = decimal.New(1, 0)
	}
	e.lsNav = decimal.New(1, 0)
	e.weights = make([]map[string]decimal.Decimal, groups)
	for g := 0; g < groups; g++ {
		e.weights[g] = map[string]decimal.Decimal{}
	}

	rst := &Result{Groups: groups}

	for _, sec := range pr.Sections {
		if !sec.Grouped {
			continue
		}

		// step 1: 计算各组目标权重（组内等权）
		targets := make([]map[string]decimal.Decimal, groups)
		counts := make([]int, groups)
		for g := 0; g < groups; g++ {
			targets[g] = map[string]decimal.Decimal{}
		}
		for _, d := range sec.Details {
			if d.Group >= 0 && d.Group < groups {
				counts[d.Group]++
			}
		}
		for _, d := range sec.Details {
			if d.Group >= 0 && d.Group < groups && counts[d.Group] > 0 {
				targets[d.Group][d.InstId] = decimal.New(1, 0).DivRound(decimal.NewFromInt(int64(counts[d.Group])), 12)
			}
		}

		// step 2: 各组调仓并结算本期收益
		rets := make([]decimal.Decimal, groups)
		for g := 0; g < groups; g++ {
			traded := e.rebalance(g, sec.Time, targets[g])
			ret := decimal.NewFromFloat(sec.GroupReturns[g])
			cost := e.cfg.FeeMaker.Mul(traded)
			e.navs[g] = e.navs[g].Mul(decimal.New(1, 0).Add(ret).Sub(cost))
			rets[g] = ret.Sub(cost)
		}

		// step 3: 多空净值。做多最高组、做空最低组，各半仓
		half := decimal.New(5, -1)
		lsRet := rets[groups-1].Sub(rets[0]).Mul(half)
		e.lsNav = e.lsNav.Mul(decimal.New(1, 0).Add(lsRet))

		rst.Times = append(rst.Times, sec.Time)
		navRow := make([]float64, groups)
		for g := 0; g < groups; g++ {
			navRow[g] = e.navs[g].InexactFloat64()
		}
		rst.GroupNavs = append(rst.GroupNavs, navRow)
		rst.LongShortNav = append(rst.LongShortNav, e.lsNav.InexactFloat64())
	}

	if len(rst.Times) == 0 {
		return nil, fmt.Errorf("no grouped section")
	}

	rst.Deals = e.deals
	common.LogNormal(logPrefix, "backtest finished, %d sections, %d deals, ls-nav=%s",
		len(rst.Times), len(rst.Deals), e.lsNav.StringFixed(4))
	return rst, nil
}

// 将某组持仓调整到目标权重，记录成交，返回成交总额（占净值比例）
func (e *Executor) rebalance(g int, t time.Time, target map[string]decimal.Decimal) decimal.Decimal {
	curr := e.weights[g]
	traded := decimal.Zero

	// 卖出：当前持有但目标权重更低（或不再持有）的部分
	for instId, w := range curr {
		tw := target[instId]
		if w.GreaterThan(tw) {
			amount := w.Sub(tw)
			traded = traded.Add(amount)
			e.deals = append(e.deals, deal{time: t, group: g, instId: instId, weight: amount, isSell: true})
		}
	}

	// 买入：目标权重高于当前的部分
	for instId, tw := range target {
		w := curr[instId]
		if tw.GreaterThan(w) {
			amount := tw.Sub(w)
			traded = traded.Add(amount)
			e.deals = append(e.deals, deal{time: t, group: g, instId: instId, weight: amount, isSell: false})
		}
	}

	e.weights[g] = target
	return traded
}
