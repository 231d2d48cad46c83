/*
- @Author: aztec
- @Date: 2024-02-20 10:40:19
- @Description: 滚动算子。按品种独立计算，窗口按该品种自身有观测的日期计数，不按日历天数
- @窗口不满时输出缺失，不做部分窗口近似。SUM/STDDEV/CORRELATION采用滑动累加，总代价与观测数线性
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package ops

import (
	"fmt"
	"math"

	"github.com/aztecqt/qfactor/common"
)

func init() {
	// DELAY(x, n)：该品种第n个观测之前的值。DELAY(x,0)即x本身
	register(&Descriptor{
		Name: "DELAY",
		Args: []ArgKind{ArgPanel, ArgScalar},
		Kind: KindRolling,
		Lookback: func(scalars []float64) int {
			return int(scalars[1])
		},
		Validate: func(scalars []float64) error {
			n := int(scalars[1])
			if float64(n) != scalars[1] || n < 0 {
				return fmt.Errorf("delay periods must be a non-negative integer, got %v", scalars[1])
			}
			return nil
		},
		Eval: func(args []Value) (*common.Panel, error) {
			n := int(args[1].Scalar)
			return rollingEval(args[0].Panel, func(dis []int, vs []float64, dst []float64, shape *common.Panel, ii int) {
				for k := n; k < len(dis); k++ {
					dst[shape.Idx(dis[k], ii)] = vs[k-n]
				}
			}), nil
		},
	})

	// DELTA(x, n)：x与n个观测之前的差
	register(&Descriptor{
		Name:     "DELTA",
		Args:     []ArgKind{ArgPanel, ArgScalar},
		Kind:     KindRolling,
		Lookback: func(scalars []float64) int { return int(scalars[1]) },
		Validate: windowValidator(1),
		Eval: func(args []Value) (*common.Panel, error) {
			n := int(args[1].Scalar)
			return rollingEval(args[0].Panel, func(dis []int, vs []float64, dst []float64, shape *common.Panel, ii int) {
				for k := n; k < len(dis); k++ {
					dst[shape.Idx(dis[k], ii)] = vs[k] - vs[k-n]
				}
			}), nil
		},
	})

	// RETURNS(x)：相邻两个观测之间的收益率。首个观测无定义
	register(&Descriptor{
		Name:     "RETURNS",
		Args:     []ArgKind{ArgPanel},
		Kind:     KindRolling,
		Lookback: func([]float64) int { return 1 },
		Eval: func(args []Value) (*common.Panel, error) {
			return rollingEval(args[0].Panel, func(dis []int, vs []float64, dst []float64, shape *common.Panel, ii int) {
				for k := 1; k < len(dis); k++ {
					if vs[k-1] != 0 {
						dst[shape.Idx(dis[k], ii)] = (vs[k] - vs[k-1]) / vs[k-1]
					}
				}
			}), nil
		},
	})

	// SUM(x, n)：最近n个观测之和（含当前）
	register(windowOp("SUM", 1, func(dis []int, vs []float64, n int, dst []float64, shape *common.Panel, ii int) {
		sum := 0.0
		for k := 0; k < len(dis); k++ {
			sum += vs[k]
			if k >= n {
				sum -= vs[k-n]
			}
			if k >= n-1 {
				dst[shape.Idx(dis[k], ii)] = sum
			}
		}
	}))

	// MEAN(x, n)：最近n个观测的均值
	register(windowOp("MEAN", 1, func(dis []int, vs []float64, n int, dst []float64, shape *common.Panel, ii int) {
		sum := 0.0
		for k := 0; k < len(dis); k++ {
			sum += vs[k]
			if k >= n {
				sum -= vs[k-n]
			}
			if k >= n-1 {
				dst[shape.Idx(dis[k], ii)] = sum / float64(n)
			}
		}
	}))

	// STDDEV(x, n)：最近n个观测的样本标准差
	register(windowOp("STDDEV", 2, func(dis []int, vs []float64, n int, dst []float64, shape *common.Panel, ii int) {
		sum, sumsq := 0.0, 0.0
		for k := 0; k < len(dis); k++ {
			sum += vs[k]
			sumsq += vs[k] * vs[k]
			if k >= n {
				sum -= vs[k-n]
				sumsq -= vs[k-n] * vs[k-n]
			}
			if k >= n-1 {
				v := (sumsq - sum*sum/float64(n)) / float64(n-1)
				if v < 0 {
					v = 0
				}
				dst[shape.Idx(dis[k], ii)] = math.Sqrt(v)
			}
		}
	}))

	// TSMAX/TSMIN(x, n)：最近n个观测的最大/最小值。单调队列，均摊O(1)
	register(windowOp("TSMAX", 1, extremeOp(func(a, b float64) bool { return a >= b })))
	register(windowOp("TSMIN", 1, extremeOp(func(a, b float64) bool { return a <= b })))

	// CORRELATION(x, y, n)：两序列最近n个共同观测的相关系数
	register(&Descriptor{
		Name:     "CORRELATION",
		Args:     []ArgKind{ArgPanel, ArgPanel, ArgScalar},
		Kind:     KindRolling,
		Lookback: func(scalars []float64) int { return int(scalars[2]) - 1 },
		Validate: func(scalars []float64) error {
			n, err := intWindow(scalars[2])
			if err != nil {
				return err
			}
			if n < 2 {
				return fmt.Errorf("correlation window must be >= 2, got %d", n)
			}
			return nil
		},
		Eval: evalCorrelation,
	})
}

func windowValidator(min int) func([]float64) error {
	return func(scalars []float64) error {
		n, err := intWindow(scalars[len(scalars)-1])
		if err != nil {
			return err
		}
		if n < min {
			return fmt.Errorf("window must be >= %d, got %d", min, n)
		}
		return nil
	}
}

type windowFn func(dis []int, vs []float64, n int, dst []float64, shape *common.Panel, ii int)

func windowOp(name string, minWindow int, fn windowFn) *Descriptor {
	return &Descriptor{
		Name:     name,
		Args:     []ArgKind{ArgPanel, ArgScalar},
		Kind:     KindRolling,
		Lookback: func(scalars []float64) int { return int(scalars[1]) - 1 },
		Validate: windowValidator(minWindow),
		Eval: func(args []Value) (*common.Panel, error) {
			n := int(args[1].Scalar)
			return rollingEval(args[0].Panel, func(dis []int, vs []float64, dst []float64, shape *common.Panel, ii int) {
				fn(dis, vs, n, dst, shape, ii)
			}), nil
		},
	}
}

// 单品种观测序列：该品种在场且输入有值的日期索引与取值
func observations(p *common.Panel, col []float64, ii int) (dis []int, vs []float64) {
	nd := p.NumDates()
	for di := 0; di < nd; di++ {
		idx := p.Idx(di, ii)
		if p.Present(di, ii) && validValue(col[idx]) {
			dis = append(dis, di)
			vs = append(vs, col[idx])
		}
	}
	return
}

// 滚动求值框架。品种之间相互独立，按品种并行
func rollingEval(src *common.Panel, fn func(dis []int, vs []float64, dst []float64, shape *common.Panel, ii int)) *common.Panel {
	out := src.EmptyLike(common.ValueField)
	dst, _ := out.Raw(common.ValueField)
	col, _ := src.Raw(common.ValueField)

	common.ParallelFor(src.NumInsts(), func(ii int) {
		dis, vs := observations(src, col, ii)
		fn(dis, vs, dst, src, ii)
	})
	return out
}

func extremeOp(better func(a, b float64) bool) windowFn {
	return func(dis []int, vs []float64, n int, dst []float64, shape *common.Panel, ii int) {
		// 队列中保存窗口内可能成为极值的观测下标，队首为当前极值
		deque := make([]int, 0, n)
		for k := 0; k < len(dis); k++ {
			for len(deque) > 0 && better(vs[k], vs[deque[len(deque)-1]]) {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, k)
			if deque[0] <= k-n {
				deque = deque[1:]
			}
			if k >= n-1 {
				dst[shape.Idx(dis[k], ii)] = vs[deque[0]]
			}
		}
	}
}

func evalCorrelation(args []Value) (*common.Panel, error) {
	px, py := args[0].Panel, args[1].Panel
	n := int(args[2].Scalar)

	out := px.EmptyLike(common.ValueField)
	dst, _ := out.Raw(common.ValueField)
	colx, _ := px.Raw(common.ValueField)
	coly, _ := py.Raw(common.ValueField)

	common.ParallelFor(px.NumInsts(), func(ii int) {
		// 共同观测：两个输入都有值的日期
		var dis []int
		var xs, ys []float64
		nd := px.NumDates()
		for di := 0; di < nd; di++ {
			idx := px.Idx(di, ii)
			if px.Present(di, ii) && validValue(colx[idx]) && validValue(coly[idx]) {
				dis = append(dis, di)
				xs = append(xs, colx[idx])
				ys = append(ys, coly[idx])
			}
		}

		var sx, sy, sxy, sxx, syy float64
		for k := 0; k < len(dis); k++ {
			sx += xs[k]
			sy += ys[k]
			sxy += xs[k] * ys[k]
			sxx += xs[k] * xs[k]
			syy += ys[k] * ys[k]
			if k >= n {
				sx -= xs[k-n]
				sy -= ys[k-n]
				sxy -= xs[k-n] * ys[k-n]
				sxx -= xs[k-n] * xs[k-n]
				syy -= ys[k-n] * ys[k-n]
			}
			if k >= n-1 {
				fn := float64(n)
				cov := sxy - sx*sy/fn
				vx := sxx - sx*sx/fn
				vy := syy - sy*sy/fn
				if vx > 0 && vy > 0 {
					dst[px.Idx(dis[k], ii)] = cov / math.Sqrt(vx*vy)
				}
			}
		}
	})

	return out, nil
}
