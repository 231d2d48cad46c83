/*
- @Author: aztec
- @Date: 2024-01-16 15:45:41
- @Description: 获取一组品种在一段时间内的面板数据
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/data/local"
)

// 面板字段名
const (
	FieldOpen   = "open"
	FieldHigh   = "high"
	FieldLow    = "low"
	FieldClose  = "close"
	FieldVolume = "volume"
)

// 面板数据源
type Provider interface {
	GetPanel(instIds []string, t0, t1 time.Time) (*common.Panel, error)
}

// 基于本地k线的面板数据源
type LocalProvider struct {
	Source      string
	IntervalSec int
}

func NewLocalProvider(source string, intervalSec int) *LocalProvider {
	return &LocalProvider{Source: source, IntervalSec: intervalSec}
}

func (p *LocalProvider) GetPanel(instIds []string, t0, t1 time.Time) (*common.Panel, error) {
	logPrefix := "LocalProvider"

	klines := []*common.KLine{}
	for _, instId := range instIds {
		// 检查本地数据是否覆盖所需范围
		validRange := local.GetValidKlineBarsAndTimeRange(p.Source, instId)
		selectedInterval := 0
		for itvl, tms := range validRange {
			if p.IntervalSec%itvl == 0 && tms[0].Unix() <= t0.Unix() && tms[len(tms)-1].Unix() >= t1.Unix() {
				if itvl > selectedInterval {
					selectedInterval = itvl
				}
			}
		}

		if selectedInterval == 0 {
			common.LogNormal(logPrefix, "no usable local data for %s(%s)", instId, p.Source)
			continue
		}

		kl := local.LoadKLine(t0, t1, p.Source, instId, selectedInterval)
		if kl == nil || len(kl.Units) == 0 {
			common.LogNormal(logPrefix, "load %s(%s) local data failed", instId, p.Source)
			continue
		}
		common.LogNormal(logPrefix, "load %s(%s) local data successed, %d loaded", instId, p.Source, len(kl.Units))

		// 按需降采样
		if selectedInterval != p.IntervalSec {
			n := p.IntervalSec / selectedInterval
			units := []common.KlineUnit{}
			for i := 0; i+n <= len(kl.Units); i += n {
				u := kl.Units[i]
				u.ClosePrice = kl.Units[i+n-1].ClosePrice
				for j := i; j < i+n; j++ {
					if kl.Units[j].HighPrice > u.HighPrice {
						u.HighPrice = kl.Units[j].HighPrice
					}
					if kl.Units[j].LowPrice < u.LowPrice {
						u.LowPrice = kl.Units[j].LowPrice
					}
					if j > i {
						u.Volume += kl.Units[j].Volume
					}
				}
				units = append(units, u)
			}
			kl.Units = units
		}

		klines = append(klines, kl)
	}

	if len(klines) == 0 {
		return nil, fmt.Errorf("no kline loaded from %s", p.Source)
	}

	return PanelFromKLines(klines)
}

// 将若干k线序列合并为一个面板
// 日期取并集，品种缺失的日期标记为absent
func PanelFromKLines(klines []*common.KLine) (*common.Panel, error) {
	if len(klines) == 0 {
		return nil, fmt.Errorf("no kline")
	}

	// step 1: 收集所有时间点和品种
	tmSet := map[int64]bool{}
	instIds := []string{}
	for _, kl := range klines {
		if kl.InstId == "" {
			return nil, fmt.Errorf("kline without instId")
		}
		instIds = append(instIds, kl.InstId)
		for _, u := range kl.Units {
			tmSet[u.Time.UnixMilli()] = true
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

	for _, f := range []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume} {
		pn.AddField(f)
	}

	// step 2: 逐品种写入，未覆盖的时间点标记absent
	for ii, kl := range klines {
		covered := map[int64]bool{}
		for _, u := range kl.Units {
			di, ok := pn.DateIndex(u.Time)
			if !ok {
				continue
			}
			covered[u.Time.UnixMilli()] = true
			pn.Set(FieldOpen, di, ii, u.OpenPrice)
			pn.Set(FieldHigh, di, ii, u.HighPrice)
			pn.Set(FieldLow, di, ii, u.LowPrice)
			pn.Set(FieldClose, di, ii, u.ClosePrice)
			pn.Set(FieldVolume, di, ii, u.Volume)
		}

		for di, tm := range tms {
			if !covered[tm] {
				pn.SetAbsent(di, ii)
			}
		}
	}

	return pn, nil
}
