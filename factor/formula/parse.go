/*
- @Author: aztec
- @Date: 2024-02-21 10:44:02
- @Description: 公式解析。多行公式，除最后一行外均为name=expr的中间绑定，最后一行为输出表达式
- @未知算子、参数不匹配、引用未定义名称、嵌套过深都在解析期报错，不推迟到求值
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package formula

import (
	"strconv"
	"strings"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/factor/ops"
)

// 默认最大嵌套深度。防止病态公式在求值时耗尽栈
const DefaultMaxDepth = 64

func Parse(text string) (*Program, error) {
	return ParseWithDepth(text, DefaultMaxDepth)
}

func ParseWithDepth(text string, maxDepth int) (*Program, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, &ParseError{Line: 1, Pos: 1, Msg: "empty formula"}
	}

	prog := &Program{Text: text}
	bindings := map[string]Node{}

	// 字段引用记录，用于事后检查前向引用
	type fieldUse struct {
		name string
		tok  token
	}
	var fieldUses []fieldUse

	for li, line := range lines {
		toks, perr := lexLine(line.text, line.no)
		if perr != nil {
			return nil, perr
		}

		p := &parser{toks: toks, bindings: bindings, maxDepth: maxDepth}
		p.onFieldRef = func(name string, tok token) {
			fieldUses = append(fieldUses, fieldUse{name: name, tok: tok})
		}

		isLast := li == len(lines)-1
		isAssign := len(toks) >= 2 && toks[0].typ == tokIdent && toks[1].typ == tokAssign

		if isLast {
			if isAssign {
				return nil, parseErrorf(toks[1], "last line must be a bare expression, not an assignment")
			}
			expr, err := p.parseFull()
			if err != nil {
				return nil, err
			}
			prog.Output = expr
		} else {
			if !isAssign {
				return nil, parseErrorf(toks[0], "intermediate lines must be of the form name = expression")
			}
			name := strings.ToLower(toks[0].text)
			if _, exists := ops.Lookup(name); exists {
				return nil, parseErrorf(toks[0], "binding name conflicts with operator %s", strings.ToUpper(name))
			}
			if _, dup := bindings[name]; dup {
				return nil, parseErrorf(toks[0], "duplicate binding name %s", name)
			}

			p.i = 2
			expr, err := p.parseFull()
			if err != nil {
				return nil, err
			}
			bindings[name] = expr
			prog.Bindings = append(prog.Bindings, Binding{Name: name, Expr: expr})
		}
	}

	// 前向引用检查：一个名字被解析为字段引用，之后又作为绑定出现，说明使用在定义之前
	for _, fu := range fieldUses {
		if _, ok := bindings[fu.name]; ok {
			return nil, parseErrorf(fu.tok, "name %s used before its definition", fu.name)
		}
	}

	return prog, nil
}

type parser struct {
	toks       []token
	i          int
	depth      int
	maxDepth   int
	bindings   map[string]Node
	onFieldRef func(name string, tok token)
}

func (p *parser) cur() token {
	return p.toks[p.i]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

// 从当前位置解析完整表达式，要求消耗到行尾
func (p *parser) parseFull() (Node, error) {
	expr, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	if p.cur().typ != tokEOF {
		return nil, parseErrorf(p.cur(), "unexpected trailing token")
	}
	return expr, nil
}

// 优先级：比较 < 加减 < 乘除 < 一元 < 原子
func (p *parser) parseCompare() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, parseErrorf(p.cur(), "expression nesting exceeds max depth %d", p.maxDepth)
	}

	lhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.cur().typ == tokOperator && isCmpOp(p.cur().text) {
		op := p.advance()
		rhs, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		lhs, err = p.makeCall(op, []Node{lhs, rhs})
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (p *parser) parseAdd() (Node, error) {
	lhs, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.cur().typ == tokOperator && (p.cur().text == "+" || p.cur().text == "-") {
		op := p.advance()
		rhs, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		lhs, err = p.makeCall(op, []Node{lhs, rhs})
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (p *parser) parseMul() (Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().typ == tokOperator && (p.cur().text == "*" || p.cur().text == "/") {
		op := p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs, err = p.makeCall(op, []Node{lhs, rhs})
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.cur().typ == tokOperator && (p.cur().text == "-" || p.cur().text == "+") {
		// 连续符号串同样计入嵌套深度，长符号串在这里截断
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > p.maxDepth {
			return nil, parseErrorf(p.cur(), "expression nesting exceeds max depth %d", p.maxDepth)
		}

		op := p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.text == "+" {
			return expr, nil
		}
		// 负号：字面量直接折叠，其他情况改写为0-expr
		if lit, ok := expr.(*Literal); ok {
			return &Literal{Value: -lit.Value}, nil
		}
		return p.makeCall(op, []Node{&Literal{Value: 0}, expr})
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.cur()
	switch t.typ {
	case tokNumber:
		p.advance()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, parseErrorf(t, "bad number literal")
		}
		return &Literal{Value: v}, nil

	case tokLParen:
		p.advance()
		expr, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		if p.cur().typ != tokRParen {
			return nil, parseErrorf(p.cur(), "expecting )")
		}
		p.advance()
		return expr, nil

	case tokIdent:
		p.advance()
		if p.cur().typ == tokLParen {
			return p.parseCall(t)
		}
		name := common.FieldName(t.text)
		if _, ok := p.bindings[name]; ok {
			return &VarRef{Name: name}, nil
		}
		// 非绑定名按字段引用处理。字段是否存在于面板，留到求值期检查
		if p.onFieldRef != nil {
			p.onFieldRef(name, t)
		}
		return &FieldRef{Name: name}, nil

	default:
		return nil, parseErrorf(t, "expecting expression")
	}
}

func (p *parser) parseCall(nameTok token) (Node, error) {
	p.advance() // (
	args := []Node{}
	if p.cur().typ != tokRParen {
		for {
			arg, err := p.parseCompare()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().typ == tokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.cur().typ != tokRParen {
		return nil, parseErrorf(p.cur(), "expecting ) to close call to %s", nameTok.text)
	}
	p.advance()
	return p.makeCall(nameTok, args)
}

// 构造调用节点并做解析期检查：算子存在、参数数量、参数类型、窗口合法
func (p *parser) makeCall(nameTok token, args []Node) (Node, error) {
	opName := strings.ToUpper(nameTok.text)
	d, ok := ops.Lookup(opName)
	if !ok {
		return nil, parseErrorf(nameTok, "unknown operator %s", opName)
	}
	if len(args) != d.Arity() {
		return nil, parseErrorf(nameTok, "operator %s expects %d arguments, got %d", opName, d.Arity(), len(args))
	}

	scalars := make([]float64, len(args))
	allScalar := true
	for i, arg := range args {
		v, isScalar := scalarConst(arg, p.bindings)
		scalars[i] = v
		if !isScalar {
			allScalar = false
		}
		switch d.Args[i] {
		case ops.ArgScalar:
			if !isScalar {
				return nil, parseErrorf(nameTok, "argument %d of %s must be a numeric literal", i+1, opName)
			}
		case ops.ArgPanel:
			if isScalar {
				return nil, parseErrorf(nameTok, "argument %d of %s must be panel-valued", i+1, opName)
			}
		}
	}

	if d.Validate != nil {
		if err := d.Validate(scalars); err != nil {
			return nil, parseErrorf(nameTok, "%s: %v", opName, err)
		}
	}

	// 纯标量子表达式在解析期折叠为字面量
	if allScalar && d.Fold != nil {
		return &Literal{Value: d.Fold(scalars)}, nil
	}

	return &Call{Op: opName, Args: args}, nil
}

func isCmpOp(s string) bool {
	switch s {
	case ">", "<", ">=", "<=", "==", "!=":
		return true
	}
	return false
}

// 在解析期求出节点的标量常量值。字面量、或绑定到标量常量的名字
func scalarConst(n Node, bindings map[string]Node) (float64, bool) {
	switch v := n.(type) {
	case *Literal:
		return v.Value, true
	case *VarRef:
		if expr, ok := bindings[v.Name]; ok {
			return scalarConst(expr, bindings)
		}
	}
	return nan, false
}
