/*
- @Author: aztec
- @Date: 2024-02-20 11:27:46
- @Description: 截面算子。对每个日期独立计算，只使用当日有值的品种，按日期并行
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package ops

import (
	"math"
	"slices"

	"github.com/aztecqt/qfactor/common"
)

func init() {
	// RANK(x)：截面百分位名次，取值(0,1]
	// 并列按品种原始顺序打破，保证确定性
	register(&Descriptor{
		Name:     "RANK",
		Args:     []ArgKind{ArgPanel},
		Kind:     KindCross,
		Lookback: zeroLookback,
		Eval: func(args []Value) (*common.Panel, error) {
			return crossEval(args[0].Panel, evalRankSection), nil
		},
	})

	// SCALE(x)：截面z-score。当日有效品种不足2个时整个截面输出缺失
	register(&Descriptor{
		Name:     "SCALE",
		Args:     []ArgKind{ArgPanel},
		Kind:     KindCross,
		Lookback: zeroLookback,
		Eval: func(args []Value) (*common.Panel, error) {
			return crossEval(args[0].Panel, evalScaleSection), nil
		},
	})
}

// 截面求值框架。日期之间相互独立，按日期并行
// iis/vs为当日有值品种的索引与取值，按品种原始顺序排列
func crossEval(src *common.Panel, fn func(iis []int, vs []float64, dst []float64, shape *common.Panel, di int)) *common.Panel {
	out := src.EmptyLike(common.ValueField)
	dst, _ := out.Raw(common.ValueField)
	col, _ := src.Raw(common.ValueField)

	common.ParallelFor(src.NumDates(), func(di int) {
		var iis []int
		var vs []float64
		ni := src.NumInsts()
		for ii := 0; ii < ni; ii++ {
			idx := src.Idx(di, ii)
			if src.Present(di, ii) && validValue(col[idx]) {
				iis = append(iis, ii)
				vs = append(vs, col[idx])
			}
		}
		if len(iis) > 0 {
			fn(iis, vs, dst, src, di)
		}
	})
	return out
}

// RANK的并列规则：先比值，再比品种索引。稳定排序保证同一输入集合下结果唯一
func RankOrder(iis []int, vs []float64) []int {
	order := make([]int, len(iis))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if vs[a] < vs[b] {
			return -1
		} else if vs[a] > vs[b] {
			return 1
		}
		return iis[a] - iis[b]
	})
	return order
}

func evalRankSection(iis []int, vs []float64, dst []float64, shape *common.Panel, di int) {
	order := RankOrder(iis, vs)
	n := float64(len(order))
	for r, k := range order {
		dst[shape.Idx(di, iis[k])] = float64(r+1) / n
	}
}

func evalScaleSection(iis []int, vs []float64, dst []float64, shape *common.Panel, di int) {
	if len(vs) < 2 {
		return
	}
	m := common.Mean(vs)
	sd := common.SampleStd(vs)
	if sd == 0 || math.IsNaN(sd) {
		return
	}
	for k, ii := range iis {
		dst[shape.Idx(di, ii)] = (vs[k] - m) / sd
	}
}
