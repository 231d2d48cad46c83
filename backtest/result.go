/*
- @Author: aztec
- @Date: 2024-02-02 09:41:15
- @Description: 回测结果。各组净值序列、多空净值序列
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/table"
)

type Result struct {
	Groups int

	// 调仓时间点
	Times []time.Time

	// 各组净值，GroupNavs[i][g]为第i个时间点、第g组的净值
	GroupNavs [][]float64

	// 多空净值
	LongShortNav []float64

	// 调仓成交记录
	Deals []deal
}

// 最终净值表
func (r *Result) NavTable() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := table.Row{"time"}
	for g := 0; g < r.Groups; g++ {
		header = append(header, fmt.Sprintf("g%d", g))
	}
	header = append(header, "long-short")
	t.AppendHeader(header)

	for i, tm := range r.Times {
		row := table.Row{tm.Format(time.DateOnly)}
		for g := 0; g < r.Groups; g++ {
			row = append(row, fmt.Sprintf("%.4f", r.GroupNavs[i][g]))
		}
		row = append(row, fmt.Sprintf("%.4f", r.LongShortNav[i]))
		t.AppendRow(row)
	}

	return t.Render()
}
