/*
- @Author: aztec
- @Date: 2024-02-21 09:21:50
- @Description: 公式文本的词法分析
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package formula

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tokIdent tokenType = iota
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokOperator // + - * / 以及比较运算符
	tokAssign   // =
	tokEOF
)

type token struct {
	typ  tokenType
	text string
	line int // 从1开始
	pos  int // 从1开始
}

// 对一行文本做词法分析
func lexLine(line string, lineNo int) ([]token, *ParseError) {
	toks := []token{}
	rs := []rune(line)
	i := 0

	emit := func(typ tokenType, start, end int) {
		toks = append(toks, token{typ: typ, text: string(rs[start:end]), line: lineNo, pos: start + 1})
	}

	for i < len(rs) {
		c := rs[i]
		switch {
		case unicode.IsSpace(c):
			i++

		case c == '(':
			emit(tokLParen, i, i+1)
			i++

		case c == ')':
			emit(tokRParen, i, i+1)
			i++

		case c == ',':
			emit(tokComma, i, i+1)
			i++

		case c == '+' || c == '-' || c == '*' || c == '/':
			emit(tokOperator, i, i+1)
			i++

		case c == '>' || c == '<':
			if i+1 < len(rs) && rs[i+1] == '=' {
				emit(tokOperator, i, i+2)
				i += 2
			} else {
				emit(tokOperator, i, i+1)
				i++
			}

		case c == '=':
			if i+1 < len(rs) && rs[i+1] == '=' {
				emit(tokOperator, i, i+2)
				i += 2
			} else {
				emit(tokAssign, i, i+1)
				i++
			}

		case c == '!':
			if i+1 < len(rs) && rs[i+1] == '=' {
				emit(tokOperator, i, i+2)
				i += 2
			} else {
				return nil, &ParseError{Line: lineNo, Pos: i + 1, Token: "!", Msg: "unexpected character"}
			}

		case unicode.IsDigit(c) || c == '.':
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			// 科学计数法
			if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
				j := i + 1
				if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
					j++
				}
				if j < len(rs) && unicode.IsDigit(rs[j]) {
					i = j
					for i < len(rs) && unicode.IsDigit(rs[i]) {
						i++
					}
				}
			}
			emit(tokNumber, start, i)

		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			emit(tokIdent, start, i)

		default:
			return nil, &ParseError{Line: lineNo, Pos: i + 1, Token: string(c), Msg: "unexpected character"}
		}
	}

	toks = append(toks, token{typ: tokEOF, text: "", line: lineNo, pos: len(rs) + 1})
	return toks, nil
}

type rawLine struct {
	text string
	no   int
}

// 公式文本按行拆分，跳过空行
func splitLines(text string) []rawLine {
	var out []rawLine
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, rawLine{text: line, no: i + 1})
	}
	return out
}
