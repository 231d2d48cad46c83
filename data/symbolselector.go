/*
- @Author: aztec
- @Date: 2024-01-15 17:58:57
- @Description: 品种选取器。根据一些列条件，从面板数据中选取一组品种作为后续处理的目标
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package data

import (
	"math"
	"slices"

	"github.com/aztecqt/qfactor/common"
)

// 根据成交量选取InstId
// 对每个品种求在场日期的平均成交量，按平均值排序后取前limit个
func SelectInstIdsByVolume(pn *common.Panel, desc bool, limit int) []string {
	logPrefix := "SelectInstIdsByVolume"
	common.LogNormal(logPrefix, "selecting inst id by volume, desc=%v, limit=%d", desc, limit)

	col, ok := pn.Raw(FieldVolume)
	if !ok {
		common.LogError(logPrefix, "panel has no volume field")
		return []string{}
	}

	type instVol struct {
		instId string
		vol    float64
	}

	ivs := []instVol{}
	for ii := 0; ii < pn.NumInsts(); ii++ {
		sum := 0.0
		n := 0
		for di := 0; di < pn.NumDates(); di++ {
			if !pn.Present(di, ii) {
				continue
			}
			v := col[pn.Idx(di, ii)]
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			ivs = append(ivs, instVol{instId: pn.InstAt(ii), vol: sum / float64(n)})
		}
	}

	slices.SortStableFunc(ivs, func(a, b instVol) int {
		if a.vol < b.vol {
			if desc {
				return 1
			}
			return -1
		} else if a.vol > b.vol {
			if desc {
				return -1
			}
			return 1
		} else {
			return 0
		}
	})

	if len(ivs) > limit {
		ivs = ivs[:limit]
	}

	instIds := []string{}
	for _, iv := range ivs {
		instIds = append(instIds, iv.instId)
	}

	common.LogNormal(logPrefix, "%d sorted", len(instIds))
	return instIds
}
