/*
- @Author: aztec
- @Date: 2024-02-21 10:05:33
- @Description: 面板数据与csv文件的互转。长表格式：time/inst列+各字段列
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package data

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aztecqt/qfactor/common"
)

// 面板转DataFrame
// 只输出在场的(时间,品种)行，不在场的行省略，读回时还原为absent
func PanelToDataFrame(pn *common.Panel) *dataframe.DataFrame {
	fields := pn.Fields()

	times := series.New([]int{}, series.Int, "time")
	insts := series.New([]string{}, series.String, "inst")
	cols := make([]series.Series, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, series.New([]float64{}, series.Float, f))
	}

	for di := 0; di < pn.NumDates(); di++ {
		for ii := 0; ii < pn.NumInsts(); ii++ {
			if !pn.Present(di, ii) {
				continue
			}
			times.Append(int(pn.DateAt(di).UnixMilli()))
			insts.Append(pn.InstAt(ii))
			for fi, f := range fields {
				col, _ := pn.Raw(f)
				cols[fi].Append(col[pn.Idx(di, ii)])
			}
		}
	}

	all := append([]series.Series{times, insts}, cols...)
	df := dataframe.New(all...)
	return &df
}

// DataFrame转面板
func PanelFromDataFrame(df *dataframe.DataFrame) (*common.Panel, error) {
	names := df.Names()
	if len(names) < 3 || names[0] != "time" || names[1] != "inst" {
		return nil, fmt.Errorf("bad columns: %v", names)
	}
	fields := names[2:]

	nrow := df.Nrow()
	tmCol := df.Col("time")
	instCol := df.Col("inst")

	// step 1: 收集时间点和品种
	tmSet := map[int64]bool{}
	instSet := map[string]bool{}
	instIds := []string{}
	for i := 0; i < nrow; i++ {
		tm, err := tmCol.Elem(i).Int()
		if err != nil {
			return nil, fmt.Errorf("bad time at row %d: %w", i, err)
		}
		tmSet[int64(tm)] = true
		inst := instCol.Elem(i).String()
		if !instSet[inst] {
			instSet[inst] = true
			instIds = append(instIds, inst)
		}
	}

	tms := make([]int64, 0, len(tmSet))
	for tm := range tmSet {
		tms = append(tms, tm)
	}
	sort.Slice(tms, func(i, j int) bool { return tms[i] < tms[j] })
	dates := make([]time.Time, 0, len(tms))
	for _, tm := range tms {
		dates = append(dates, time.UnixMilli(tm))
	}

	pn, err := common.NewPanel(dates, instIds)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		pn.AddField(f)
	}

	// step 2: 先全部置为不在场，再按行回填
	for di := range dates {
		for ii := range instIds {
			pn.SetAbsent(di, ii)
		}
	}

	fieldCols := make([]series.Series, 0, len(fields))
	for _, f := range fields {
		fieldCols = append(fieldCols, df.Col(f))
	}
	for i := 0; i < nrow; i++ {
		tm, _ := tmCol.Elem(i).Int()
		di, _ := pn.DateIndex(time.UnixMilli(int64(tm)))
		ii, _ := pn.InstIndex(instCol.Elem(i).String())
		pn.SetPresent(di, ii)
		for fi, f := range fields {
			pn.Set(f, di, ii, fieldCols[fi].Elem(i).Float())
		}
	}

	return pn, nil
}

// 保存面板到csv文件
func SavePanelCSV(pn *common.Panel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	df := PanelToDataFrame(pn)
	return df.WriteCSV(f)
}

// 从csv文件加载面板
func LoadPanelCSV(path string) (*common.Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, df.Err
	}
	return PanelFromDataFrame(&df)
}
