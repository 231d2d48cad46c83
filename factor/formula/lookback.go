/*
- @Author: aztec
- @Date: 2024-02-21 15:02:40
- @Description: 公式的最大回看量。滚动算子嵌套时回看沿路径累加，驱动增量计算的最小重算窗口
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package formula

import (
	"github.com/aztecqt/qfactor/factor/ops"
)

// 公式在任一日期产出有效值所需的最大历史观测数
// DELAY(x,n)贡献n，窗口算子(SUM/STDDEV等)贡献n-1，嵌套时逐层累加
func (p *Program) MaxLookback() int {
	memo := map[string]int{}
	bindings := map[string]Node{}
	for _, b := range p.Bindings {
		bindings[b.Name] = b.Expr
	}

	var walk func(n Node) int
	walk = func(n Node) int {
		switch v := n.(type) {
		case *Literal, *FieldRef:
			return 0

		case *VarRef:
			if lb, ok := memo[v.Name]; ok {
				return lb
			}
			expr, ok := bindings[v.Name]
			if !ok {
				return 0
			}
			lb := walk(expr)
			memo[v.Name] = lb
			return lb

		case *Call:
			d, ok := ops.Lookup(v.Op)
			if !ok {
				return 0
			}
			scalars := make([]float64, len(v.Args))
			childMax := 0
			for i, a := range v.Args {
				sv, isScalar := scalarConst(a, bindings)
				if isScalar {
					scalars[i] = sv
					continue
				}
				scalars[i] = nan
				if lb := walk(a); lb > childMax {
					childMax = lb
				}
			}
			return d.Lookback(scalars) + childMax

		default:
			return 0
		}
	}

	return walk(p.Output)
}
