/*
- @Author: aztec
- @Date: 2024-01-16 16:18:51
- @Description: 本地k线数据加载
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package local

import (
	"fmt"
	"os"
	"time"

	"github.com/aztecqt/qfactor/common"
)

// 查询本地kline的可用InstIds
// 返回格式：interval-[]string
func GetValidKlineInstIds(source string) map[int][]string {
	result := map[int][]string{}

	// 数据源目录
	srcRoot := fmt.Sprintf("%s/klines/%s", LocalDataPath, source)

	// 数据源目录下为所有可用bar
	if des, err := os.ReadDir(srcRoot); err == nil {
		for _, de := range des {
			if de.IsDir() {
				bar := common.Bar(de.Name())
				if interval, ok := common.Bar2Interval(bar); ok {
					barPath := fmt.Sprintf("%s/%s", srcRoot, bar)

					// barPath下为所有instId文件夹
					instIds := GetInstIdsOfDir(barPath)
					result[interval] = instIds
				}
			}
		}
	}

	return result
}

// 查询本地kline数据可选interval和时间范围
// 返回格式：interval-[t0, t1]
func GetValidKlineBarsAndTimeRange(source, instId string) map[int][]time.Time {
	result := map[int][]time.Time{}

	// 数据源目录
	srcRoot := fmt.Sprintf("%s/klines/%s", LocalDataPath, source)

	// 数据源目录下为所有可用bar
	if des, err := os.ReadDir(srcRoot); err == nil {
		for _, de := range des {
			if de.IsDir() {
				bar := common.Bar(de.Name())
				if interval, ok := common.Bar2Interval(bar); ok {
					barPath := fmt.Sprintf("%s/%s/%s", srcRoot, bar, instId)
					// barPath下为所有kline文件
					if t0, t1, ok := GetTimeRangeOfDir(barPath); ok {
						result[interval] = []time.Time{t0, t1}
					}
				}
			}
		}
	}

	return result
}

// 加载k线
func LoadKLine(t0, t1 time.Time, source, instId string, interval int) *common.KLine {
	if bar, ok := common.Interval2Bar(interval); ok {
		dt0 := dateOfTime(t0)
		dt1 := dateOfTime(t1)
		kline := &common.KLine{InstId: instId}
		for d := dt0; d.Unix() <= dt1.Unix(); d = d.AddDate(0, 0, 1) {
			path := fmt.Sprintf("%s/klines/%s/%s/%s/%s.kline", LocalDataPath, source, bar, instId, d.Format(time.DateOnly))
			if bf, err := LoadZipOrRawFile(path); err == nil {
				for {
					ku := common.KlineUnit{}
					if !ku.Deserialize(bf) {
						break
					}
					if ku.Time.Unix() >= t0.Unix() && ku.Time.Unix() <= t1.Unix() {
						kline.Units = append(kline.Units, ku)
					}
					if ku.Time.Unix() >= t1.Unix() {
						break
					}
				}
			}
		}
		return kline
	} else {
		return nil
	}
}

func dateOfTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
