/*
- @Author: aztec
- @Date: 2024-02-20 09:48:31
- @Description: 逐元素算子。输出仅在所有面板参数都有值的(日期,品种)上有定义，缺失传播不抛错
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package ops

import (
	"math"

	"github.com/aztecqt/qfactor/common"
)

func init() {
	register(binary("+", func(a, b float64) float64 { return a + b }))
	register(binary("-", func(a, b float64) float64 { return a - b }))
	register(binary("*", func(a, b float64) float64 { return a * b }))
	register(binary("/", func(a, b float64) float64 {
		if b == 0 {
			return math.NaN()
		}
		return a / b
	}))

	register(binary(">", cmp(func(a, b float64) bool { return a > b })))
	register(binary("<", cmp(func(a, b float64) bool { return a < b })))
	register(binary(">=", cmp(func(a, b float64) bool { return a >= b })))
	register(binary("<=", cmp(func(a, b float64) bool { return a <= b })))
	register(binary("==", cmp(func(a, b float64) bool { return a == b })))
	register(binary("!=", cmp(func(a, b float64) bool { return a != b })))

	register(unary("ABS", math.Abs))
	register(unary("SIGN", func(v float64) float64 {
		if v > 0 {
			return 1
		} else if v < 0 {
			return -1
		}
		return 0
	}))
	register(unary("LOG", func(v float64) float64 {
		if v <= 0 {
			return math.NaN()
		}
		return math.Log(v)
	}))

	register(&Descriptor{
		Name:     "IF",
		Args:     []ArgKind{ArgPanel, ArgAny, ArgAny},
		Kind:     KindElementwise,
		Lookback: zeroLookback,
		Eval:     evalIf,
	})
}

func cmp(fn func(a, b float64) bool) func(a, b float64) float64 {
	return func(a, b float64) float64 {
		if fn(a, b) {
			return 1
		}
		return 0
	}
}

// 操作数读取器。面板读底层存储，标量广播
type operand struct {
	col    []float64
	scalar float64
}

func makeOperand(v Value) operand {
	if v.IsPanel() {
		col, _ := v.Panel.Raw(common.ValueField)
		return operand{col: col}
	}
	return operand{scalar: v.Scalar}
}

func (o operand) at(idx int) float64 {
	if o.col != nil {
		return o.col[idx]
	}
	return o.scalar
}

func binary(name string, fn func(a, b float64) float64) *Descriptor {
	return &Descriptor{
		Name:     name,
		Args:     []ArgKind{ArgAny, ArgAny},
		Kind:     KindElementwise,
		Lookback: zeroLookback,
		Fold:     func(s []float64) float64 { return fn(s[0], s[1]) },
		Eval: func(args []Value) (*common.Panel, error) {
			shape, err := firstPanel(args)
			if err != nil {
				return nil, err
			}
			out := shape.EmptyLike(common.ValueField)
			dst, _ := out.Raw(common.ValueField)
			a := makeOperand(args[0])
			b := makeOperand(args[1])
			for idx := range dst {
				va, vb := a.at(idx), b.at(idx)
				if validValue(va) && validValue(vb) {
					dst[idx] = fn(va, vb)
				}
			}
			return out, nil
		},
	}
}

func unary(name string, fn func(v float64) float64) *Descriptor {
	return &Descriptor{
		Name:     name,
		Args:     []ArgKind{ArgPanel},
		Kind:     KindElementwise,
		Lookback: zeroLookback,
		Eval: func(args []Value) (*common.Panel, error) {
			src := args[0].Panel
			out := src.EmptyLike(common.ValueField)
			dst, _ := out.Raw(common.ValueField)
			col, _ := src.Raw(common.ValueField)
			for idx := range dst {
				if validValue(col[idx]) {
					dst[idx] = fn(col[idx])
				}
			}
			return out, nil
		},
	}
}

// IF(cond, a, b)：条件缺失则结果缺失，不取默认分支。被选中分支缺失同样输出缺失
func evalIf(args []Value) (*common.Panel, error) {
	condPanel := args[0].Panel
	out := condPanel.EmptyLike(common.ValueField)
	dst, _ := out.Raw(common.ValueField)
	cond, _ := condPanel.Raw(common.ValueField)
	a := makeOperand(args[1])
	b := makeOperand(args[2])
	for idx := range dst {
		if !validValue(cond[idx]) {
			continue
		}
		var v float64
		if cond[idx] != 0 {
			v = a.at(idx)
		} else {
			v = b.at(idx)
		}
		if validValue(v) {
			dst[idx] = v
		}
	}
	return out, nil
}
