/*
- @Author: aztec
- @Date: 2024-01-15 09:51:41
- @Description: 因子评估
- @对应alphalens的get_clean_factor_and_forward_returns + tear_sheet两步：
- @Preprocess做逐日期的内连接、分组、分组收益；Analysis做IC、换手、累计收益统计
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"fmt"
	"math"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/factor/ops"
)

// 从价格字段构造未来收益面板
// 对每个品种，按其自身观测序列取period个观测之后的价格：fwd[t] = px[t+period]/px[t] - 1
// 尾部不足period个观测的日期输出缺失
func ForwardReturns(panel *common.Panel, priceField string, period int) (*common.Panel, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	col, ok := panel.Raw(priceField)
	if !ok {
		return nil, fmt.Errorf("price field %s not found in panel", priceField)
	}

	out := panel.EmptyLike(common.ValueField)
	dst, _ := out.Raw(common.ValueField)

	common.ParallelFor(panel.NumInsts(), func(ii int) {
		var dis []int
		var vs []float64
		for di := 0; di < panel.NumDates(); di++ {
			idx := panel.Idx(di, ii)
			if panel.Present(di, ii) && !math.IsNaN(col[idx]) {
				dis = append(dis, di)
				vs = append(vs, col[idx])
			}
		}
		for k := 0; k+period < len(dis); k++ {
			if vs[k] != 0 {
				dst[panel.Idx(dis[k], ii)] = vs[k+period]/vs[k] - 1
			}
		}
	})

	return out, nil
}

// 输入因子值面板与未来收益面板，逐日期做内连接、按因子值分组、计算分组收益
// 两个面板都是单字段value。日期按因子面板遍历，未来收益面板中找不到的日期跳过
// 有效品种数少于分组数的日期不入组；没有任何日期达到2个有效对时整体失败
func Preprocess(factors, fwdReturns *common.Panel, cfg PrepConfig) (*PrepResult, error) {
	if cfg.Groups < 2 {
		return nil, fmt.Errorf("group count must be >= 2, got %d", cfg.Groups)
	}

	pr := &PrepResult{Groups: cfg.Groups}
	usable := 0

	for di := 0; di < factors.NumDates(); di++ {
		t := factors.DateAt(di)
		rdi, ok := fwdReturns.DateIndex(t)
		if !ok {
			continue
		}

		sec := PrepSection{Time: t}

		// 内连接：两边都有值的品种才参与当日分析
		var iis []int
		var fvs []float64
		for ii := 0; ii < factors.NumInsts(); ii++ {
			fv, ok1 := factors.Get(common.ValueField, di, ii)
			if !ok1 {
				continue
			}
			rii, ok2 := fwdReturns.InstIndex(factors.InstAt(ii))
			if !ok2 {
				continue
			}
			rv, ok3 := fwdReturns.Get(common.ValueField, rdi, rii)
			if !ok3 {
				continue
			}
			iis = append(iis, ii)
			fvs = append(fvs, fv)
			sec.Details = append(sec.Details, PrepDetail{
				InstId:        factors.InstAt(ii),
				FactorValue:   fv,
				ForwardReturn: rv,
				Group:         -1,
			})
		}

		if len(sec.Details) >= 2 {
			usable++
		}

		// 计算分组。并列规则与RANK一致：先比因子值，再比品种原始顺序
		if len(sec.Details) >= cfg.Groups {
			order := ops.RankOrder(iis, fvs)
			step := float64(cfg.Groups)/float64(len(order)) + 0.00001
			accGroup := 0.0
			for _, k := range order {
				sec.Details[k].Group = int(accGroup)
				accGroup += step
			}

			sec.Grouped = true
			sec.GroupReturns = make([]float64, cfg.Groups)
			counts := make([]int, cfg.Groups)
			for _, d := range sec.Details {
				sec.GroupReturns[d.Group] += d.ForwardReturn
				counts[d.Group]++
			}
			for g := range sec.GroupReturns {
				if counts[g] > 0 {
					sec.GroupReturns[g] /= float64(counts[g])
				} else {
					sec.GroupReturns[g] = math.NaN()
				}
			}
		}

		pr.Sections = append(pr.Sections, sec)
	}

	if usable == 0 {
		return nil, &AnalysisError{Msg: "no date has at least 2 valid factor/return pairs"}
	}

	return pr, nil
}

// 对预处理结果做IC、换手率、累计分组收益分析
func Analysis(pr *PrepResult) *Result {
	rst := &Result{}

	// 逐日期IC。因子值与未来收益之间的相关系数，Pearson为IC，Spearman为RankIC
	var icSamples, rankICSamples []float64
	for _, sec := range pr.Sections {
		rst.Times = append(rst.Times, sec.Time)

		ic, rankIC := math.NaN(), math.NaN()
		if len(sec.Details) >= 2 {
			fvs := make([]float64, len(sec.Details))
			rvs := make([]float64, len(sec.Details))
			for i, d := range sec.Details {
				fvs[i] = d.FactorValue
				rvs[i] = d.ForwardReturn
			}
			ic = common.PearsonCorr(fvs, rvs)
			rankIC = common.SpearmanCorr(fvs, rvs)
		}
		rst.IC = append(rst.IC, ic)
		rst.RankIC = append(rst.RankIC, rankIC)
		if !math.IsNaN(ic) {
			icSamples = append(icSamples, ic)
		}
		if !math.IsNaN(rankIC) {
			rankICSamples = append(rankICSamples, rankIC)
		}
	}

	// 入组日期的分组统计
	var prevGroups map[string]int
	var turnoverSamples []float64
	cum := make([]float64, pr.Groups)
	for g := range cum {
		cum[g] = 1
	}
	rst.CumGroupReturns = make([][]float64, pr.Groups)

	for _, sec := range pr.Sections {
		if !sec.Grouped {
			continue
		}

		rst.GroupedTimes = append(rst.GroupedTimes, sec.Time)
		rst.GroupMeanReturns = append(rst.GroupMeanReturns, sec.GroupReturns)

		// 换手率：两个相邻入组日期都在场的品种中，换组的比例
		groups := make(map[string]int, len(sec.Details))
		for _, d := range sec.Details {
			groups[d.InstId] = d.Group
		}
		if prevGroups == nil {
			rst.Turnover = append(rst.Turnover, math.NaN())
		} else {
			joint, changed := 0, 0
			for id, g := range groups {
				if pg, ok := prevGroups[id]; ok {
					joint++
					if pg != g {
						changed++
					}
				}
			}
			if joint > 0 {
				tv := float64(changed) / float64(joint)
				rst.Turnover = append(rst.Turnover, tv)
				turnoverSamples = append(turnoverSamples, tv)
			} else {
				rst.Turnover = append(rst.Turnover, math.NaN())
			}
		}
		prevGroups = groups

		// 累计分组收益
		for g := 0; g < pr.Groups; g++ {
			if !math.IsNaN(sec.GroupReturns[g]) {
				cum[g] *= 1 + sec.GroupReturns[g]
			}
			rst.CumGroupReturns[g] = append(rst.CumGroupReturns[g], cum[g]-1)
		}
	}

	// 汇总
	rst.MeanIC = common.Mean(icSamples)
	rst.ICStd = common.SampleStd(icSamples)
	if rst.ICStd > 0 {
		rst.ICIR = rst.MeanIC / rst.ICStd
	} else {
		rst.ICIR = math.NaN()
	}
	rst.MeanRankIC = common.Mean(rankICSamples)
	if sd := common.SampleStd(rankICSamples); sd > 0 {
		rst.RankICIR = rst.MeanRankIC / sd
	} else {
		rst.RankICIR = math.NaN()
	}
	rst.MeanTurnover = common.Mean(turnoverSamples)

	return rst
}
