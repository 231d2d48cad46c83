/*
- @Author: aztec
- @Date: 2024-02-23 09:40:11
- @Description: 分析结果的表格展示
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/table"
)

// 汇总表
func (r *Result) SummaryTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("factor analysis summary")
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRow(table.Row{"mean IC", fmt.Sprintf("%.4f", r.MeanIC)})
	t.AppendRow(table.Row{"IC std", fmt.Sprintf("%.4f", r.ICStd)})
	t.AppendRow(table.Row{"ICIR", fmt.Sprintf("%.4f", r.ICIR)})
	t.AppendRow(table.Row{"mean RankIC", fmt.Sprintf("%.4f", r.MeanRankIC)})
	t.AppendRow(table.Row{"RankICIR", fmt.Sprintf("%.4f", r.RankICIR)})
	t.AppendRow(table.Row{"mean turnover", fmt.Sprintf("%.4f", r.MeanTurnover)})
	if n := len(r.CumGroupReturns); n > 0 && len(r.GroupedTimes) > 0 {
		last := len(r.GroupedTimes) - 1
		for g := 0; g < n; g++ {
			t.AppendRow(table.Row{fmt.Sprintf("group %d cum return", g),
				fmt.Sprintf("%.4f", r.CumGroupReturns[g][last])})
		}
	}
	return t
}

// 逐日期IC表
func (r *Result) ICTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)
	t.AppendHeader(table.Row{"date", "IC", "RankIC"})
	for i, tm := range r.Times {
		t.AppendRow(table.Row{tm.Format(time.DateOnly),
			fmt.Sprintf("%.4f", r.IC[i]), fmt.Sprintf("%.4f", r.RankIC[i])})
	}
	return t
}

// 分组平均收益表
func (r *Result) GroupTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(true)
	if len(r.GroupMeanReturns) == 0 {
		return t
	}

	header := table.Row{"date"}
	for g := range r.GroupMeanReturns[0] {
		header = append(header, fmt.Sprintf("group %d", g))
	}
	header = append(header, "turnover")
	t.AppendHeader(header)

	for i, tm := range r.GroupedTimes {
		row := table.Row{tm.Format(time.DateOnly)}
		for _, v := range r.GroupMeanReturns[i] {
			row = append(row, fmt.Sprintf("%.4f", v))
		}
		row = append(row, fmt.Sprintf("%.4f", r.Turnover[i]))
		t.AppendRow(row)
	}
	return t
}
