/*
- @Author: aztec
- @Date: 2024-02-21 14:10:28
- @Description: 求值引擎。树遍历求值+公共子表达式缓存
- @缓存作用域为一次求值，键为结构键，同构子树只计算一次。缓存对结果透明，仅影响性能
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package formula

import (
	"fmt"
	"math"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/factor/ops"
)

var nan = math.NaN()

// 对面板求值，返回单字段（value）结果面板
// 输入面板只读。任何错误都不产生部分结果
func Evaluate(prog *Program, panel *common.Panel) (*common.Panel, error) {
	ev := &evaluator{
		prog:  prog,
		panel: panel,
		env:   map[string]ops.Value{},
		cache: map[string]ops.Value{},
	}
	v, err := ev.eval(prog.Output)
	if err != nil {
		return nil, err
	}
	if !v.IsPanel() {
		return nil, &EvalError{Msg: "formula result is a scalar, not a panel"}
	}
	return v.Panel, nil
}

type evaluator struct {
	prog  *Program
	panel *common.Panel
	env   map[string]ops.Value // 绑定名 -> 求值结果
	cache map[string]ops.Value // 结构键 -> 求值结果
}

func (ev *evaluator) eval(n Node) (ops.Value, error) {
	switch v := n.(type) {
	case *Literal:
		return ops.ScalarValue(v.Value), nil

	case *FieldRef:
		return ev.evalField(v.Name)

	case *VarRef:
		if cached, ok := ev.env[v.Name]; ok {
			return cached, nil
		}
		expr, ok := ev.prog.binding(v.Name)
		if !ok {
			return ops.Value{}, &EvalError{Msg: fmt.Sprintf("unknown binding %s", v.Name)}
		}
		rst, err := ev.eval(expr)
		if err != nil {
			return ops.Value{}, err
		}
		ev.env[v.Name] = rst
		return rst, nil

	case *Call:
		return ev.evalCall(v)

	default:
		return ops.Value{}, &EvalError{Msg: fmt.Sprintf("unknown node type %T", n)}
	}
}

func (ev *evaluator) evalField(name string) (ops.Value, error) {
	key := "f:" + name
	if cached, ok := ev.cache[key]; ok {
		return cached, nil
	}

	src, ok := ev.panel.Raw(name)
	if !ok {
		return ops.Value{}, &EvalError{Msg: fmt.Sprintf("field %s not found in panel", name)}
	}

	out := ev.panel.EmptyLike(common.ValueField)
	dst, _ := out.Raw(common.ValueField)
	copy(dst, src)

	v := ops.PanelValue(out)
	ev.cache[key] = v
	return v, nil
}

func (ev *evaluator) evalCall(c *Call) (ops.Value, error) {
	key := c.Key()
	if cached, ok := ev.cache[key]; ok {
		return cached, nil
	}

	d, ok := ops.Lookup(c.Op)
	if !ok {
		return ops.Value{}, &EvalError{Msg: fmt.Sprintf("unknown operator %s", c.Op)}
	}

	args := make([]ops.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.eval(a)
		if err != nil {
			return ops.Value{}, err
		}
		args[i] = v
	}

	rst, err := d.Eval(args)
	if err != nil {
		return ops.Value{}, &EvalError{Msg: fmt.Sprintf("operator %s failed", c.Op), Cause: err}
	}

	v := ops.PanelValue(rst)
	ev.cache[key] = v
	return v, nil
}
