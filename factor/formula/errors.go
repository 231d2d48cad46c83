/*
- @Author: aztec
- @Date: 2024-02-21 09:05:13
- @Description: 公式引擎的错误定义。解析错误在求值之前全部报出，求值错误中止整次计算
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package formula

import "fmt"

// 解析错误：语法非法、未知算子、参数数量/类型不匹配、引用未定义名称、嵌套过深
type ParseError struct {
	Line  int    // 行号，从1开始
	Pos   int    // 列号，从1开始
	Token string // 出错的token，可为空
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse error at line %d:%d near %q: %s", e.Line, e.Pos, e.Token, e.Msg)
	}
	return fmt.Sprintf("parse error at line %d:%d: %s", e.Line, e.Pos, e.Msg)
}

func parseErrorf(t token, format string, args ...interface{}) *ParseError {
	return &ParseError{Line: t.line, Pos: t.pos, Token: t.text, Msg: fmt.Sprintf(format, args...)}
}

// 求值错误：基础字段不存在、算子执行失败
type EvalError struct {
	Msg   string
	Cause error
}

func (e *EvalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluate error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("evaluate error: %s", e.Msg)
}

func (e *EvalError) Unwrap() error { return e.Cause }
