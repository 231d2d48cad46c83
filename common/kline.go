/*
- @Author: aztec
- @Date: 2024-02-19 11:22:40
- @Description: k线数据定义（跟MarketCollector保持一致）
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"encoding/binary"
	"io"
	"time"
)

// k线单位
type KlineUnit struct {
	Time       time.Time
	OpenPrice  float64
	ClosePrice float64
	HighPrice  float64
	LowPrice   float64
	Volume     float64
}

func (k *KlineUnit) Deserialize(r io.Reader) bool {
	ts := int64(0)
	if e := binary.Read(r, binary.LittleEndian, &ts); e != nil {
		return false
	}
	k.Time = time.UnixMilli(ts)

	if e := binary.Read(r, binary.LittleEndian, &k.OpenPrice); e != nil {
		return false
	}

	if e := binary.Read(r, binary.LittleEndian, &k.ClosePrice); e != nil {
		return false
	}

	if e := binary.Read(r, binary.LittleEndian, &k.LowPrice); e != nil {
		return false
	}

	if e := binary.Read(r, binary.LittleEndian, &k.HighPrice); e != nil {
		return false
	}

	if e := binary.Read(r, binary.LittleEndian, &k.Volume); e != nil {
		return false
	}

	return true
}

// k线
type KLine struct {
	InstId string
	Units  []KlineUnit
}

type Bar string

const (
	Bar_1m  Bar = "1m"
	Bar_5m  Bar = "5m"
	Bar_15m Bar = "15m"
	Bar_1h  Bar = "1h"
	Bar_4h  Bar = "4h"
	Bar_1d  Bar = "1d"
)

var bar2Interval = map[Bar]int{
	Bar_1m:  60,
	Bar_5m:  300,
	Bar_15m: 900,
	Bar_1h:  3600,
	Bar_4h:  14400,
	Bar_1d:  86400,
}

func Bar2Interval(bar Bar) (int, bool) {
	v, ok := bar2Interval[bar]
	return v, ok
}

func Interval2Bar(interval int) (Bar, bool) {
	for b, i := range bar2Interval {
		if i == interval {
			return b, true
		}
	}
	return "", false
}
