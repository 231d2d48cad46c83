/*
- @Author: aztec
- @Date: 2024-02-19 11:05:26
- @Description: 面板数据的表格展示
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"fmt"
	"math"
	"time"

	"github.com/jedib0t/go-pretty/table"
)

// 单个日期的截面展示
func (p *Panel) SectionTable(field string, di int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)
	t.SetTitle(p.dates[di].Format(time.DateOnly))
	t.AppendHeader(table.Row{"InstId", field})
	for ii, id := range p.instIds {
		if v, ok := p.Get(field, di, ii); ok {
			t.AppendRow(table.Row{id, v})
		} else {
			t.AppendRow(table.Row{id, "-"})
		}
	}
	return t
}

// 整个字段的展示。单行品种太多时，最多显示n列
func (p *Panel) ToTable(field string, n int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)

	l := len(p.instIds)
	overlen := l > n
	header := table.Row{"date"}
	for i := 0; i < l && i < n; i++ {
		header = append(header, p.instIds[i])
	}
	if overlen {
		header = append(header, fmt.Sprintf("%d more...", l-n))
	}
	t.AppendHeader(header)

	for di, d := range p.dates {
		row := table.Row{d.Format(time.DateOnly)}
		for ii := 0; ii < l && ii < n; ii++ {
			if v, ok := p.Get(field, di, ii); ok {
				row = append(row, formatValue(v))
			} else {
				row = append(row, "-")
			}
		}
		t.AppendRow(row)
	}

	return t
}

func formatValue(v float64) string {
	if math.Abs(v) >= 1000 || v == math.Trunc(v) {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.6f", v)
}
