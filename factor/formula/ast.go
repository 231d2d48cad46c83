/*
- @Author: aztec
- @Date: 2024-02-21 10:03:37
- @Description: 公式的抽象语法树。节点为字面量/字段引用/中间变量引用/算子调用
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package formula

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

type Node interface {
	// 结构键。同构子树的键相同，用于公共子表达式缓存
	Key() string
}

type Literal struct {
	Value float64
}

func (n *Literal) Key() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// 基础面板字段引用。名称统一小写
type FieldRef struct {
	Name string
}

func (n *FieldRef) Key() string {
	return "f:" + n.Name
}

// 公式内部绑定名引用
type VarRef struct {
	Name string
}

func (n *VarRef) Key() string {
	return "v:" + n.Name
}

// 算子调用。名称统一大写
type Call struct {
	Op   string
	Args []Node
}

func (n *Call) Key() string {
	sb := strings.Builder{}
	sb.WriteByte('(')
	sb.WriteString(n.Op)
	for _, a := range n.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.Key())
	}
	sb.WriteByte(')')
	return sb.String()
}

// 中间绑定：name = expr
type Binding struct {
	Name string
	Expr Node
}

// 解析后的公式。最后一行的表达式为输出
type Program struct {
	Text     string
	Bindings []Binding
	Output   Node
}

func (p *Program) binding(name string) (Node, bool) {
	for _, b := range p.Bindings {
		if b.Name == name {
			return b.Expr, true
		}
	}
	return nil, false
}

// 规范键：把绑定名展开后的输出结构键。绑定名不同但展开后同构的公式，规范键相同
func (p *Program) CanonKey() string {
	var expand func(n Node) string
	expand = func(n Node) string {
		switch v := n.(type) {
		case *VarRef:
			expr, _ := p.binding(v.Name)
			return expand(expr)
		case *Call:
			sb := strings.Builder{}
			sb.WriteByte('(')
			sb.WriteString(v.Op)
			for _, a := range v.Args {
				sb.WriteByte(' ')
				sb.WriteString(expand(a))
			}
			sb.WriteByte(')')
			return sb.String()
		default:
			return n.Key()
		}
	}
	return expand(p.Output)
}

// 公式引用的全部基础字段名，按首次出现顺序去重。绑定内的引用同样计入
func (p *Program) Fields() []string {
	seen := map[string]bool{}
	fields := []string{}
	var walk func(n Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *FieldRef:
			if !seen[v.Name] {
				seen[v.Name] = true
				fields = append(fields, v.Name)
			}
		case *VarRef:
			if expr, ok := p.binding(v.Name); ok {
				walk(expr)
			}
		case *Call:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(p.Output)
	return fields
}

// 公式标识。相同语义的公式标识相同，用于增量计算时判断是否可以复用历史结果
func (p *Program) Hash() string {
	h := sha256.Sum256([]byte(p.CanonKey()))
	return hex.EncodeToString(h[:])
}
