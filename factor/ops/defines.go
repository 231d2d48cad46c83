/*
- @Author: aztec
- @Date: 2024-02-20 09:14:55
- @Description: 算子库的数据定义与注册表
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package ops

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aztecqt/qfactor/common"
)

// 参数类型
type ArgKind int

const (
	ArgAny    ArgKind = iota // 面板或标量均可
	ArgPanel                 // 必须为面板
	ArgScalar                // 必须为标量（公式中要求字面量，窗口参数需要在解析期确定）
)

// 算子的求值类型。决定对齐方式与增量计算的回看量
type Kind int

const (
	KindElementwise Kind = iota // 逐元素
	KindRolling                 // 单品种滚动窗口
	KindCross                   // 截面
)

// 求值过程中的值。Panel非nil时为面板值（单字段value），否则为标量
type Value struct {
	Panel  *common.Panel
	Scalar float64
}

func PanelValue(p *common.Panel) Value { return Value{Panel: p} }
func ScalarValue(v float64) Value      { return Value{Scalar: v} }

func (v Value) IsPanel() bool { return v.Panel != nil }

// 算子描述
type Descriptor struct {
	Name string
	Args []ArgKind
	Kind Kind

	// 额外回看观测数。scalars按参数顺序排列，面板参数位置为NaN
	Lookback func(scalars []float64) int

	// 解析期参数校验（可选）。window非法等问题在解析期报出，不推迟到求值
	Validate func(scalars []float64) error

	// 参数全为标量常量时的解析期折叠（可选）。close*(2+3)这类纯标量子表达式
	// 在解析期折叠为字面量，不会带着标量调用进入求值
	Fold func(scalars []float64) float64

	Eval func(args []Value) (*common.Panel, error)
}

func (d *Descriptor) Arity() int { return len(d.Args) }

var registry = map[string]*Descriptor{}

func register(d *Descriptor) {
	registry[strings.ToUpper(d.Name)] = d
}

// 按名称查找算子。大小写不敏感
func Lookup(name string) (*Descriptor, bool) {
	d, ok := registry[strings.ToUpper(name)]
	return d, ok
}

// 全部算子名，字典序
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func zeroLookback([]float64) int { return 0 }

// 窗口参数必须为正整数
func intWindow(v float64) (int, error) {
	n := int(v)
	if float64(n) != v || n <= 0 {
		return 0, fmt.Errorf("window must be a positive integer, got %v", v)
	}
	return n, nil
}

func validValue(v float64) bool {
	return !math.IsNaN(v)
}

// 从参数中取出第一个面板，作为输出形状的来源
func firstPanel(args []Value) (*common.Panel, error) {
	for _, a := range args {
		if a.IsPanel() {
			return a.Panel, nil
		}
	}
	return nil, fmt.Errorf("operator needs at least one panel operand")
}
