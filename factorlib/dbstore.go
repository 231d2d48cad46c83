/*
- @Author: aztec
- @Date: 2024-02-24 10:08:33
- @Description: 数据库存储。redis存因子metadata，influx以时间、品种名、因子名为key存因子value
- @influx按时间+tag写入天然幂等，追加新日期不影响历史数据
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/factor"
	client "github.com/influxdata/influxdb/client/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const measurement = "factor_value"

type factorMeta struct {
	Source   string   `json:"source"`
	Hash     string   `json:"hash"`
	Lookback int      `json:"lookback"`
	Dates    []int64  `json:"dates"` // unix秒
	InstIds  []string `json:"inst_ids"`

	// 缺席单元的(日期,品种)索引对。influx只存有值的点，在场性单独记在meta里，
	// 否则重建的面板会把历史缺席日期全标成在场
	Absent [][2]int `json:"absent,omitempty"`
}

// 收集面板中的缺席单元，用于meta持久化
func absentCells(p *common.Panel) [][2]int {
	cells := [][2]int{}
	for di := 0; di < p.NumDates(); di++ {
		for ii := 0; ii < p.NumInsts(); ii++ {
			if !p.Present(di, ii) {
				cells = append(cells, [2]int{di, ii})
			}
		}
	}
	return cells
}

// 把meta里的缺席单元标回面板。越界的索引对忽略
func markAbsentCells(p *common.Panel, cells [][2]int) {
	for _, c := range cells {
		if c[0] >= 0 && c[0] < p.NumDates() && c[1] >= 0 && c[1] < p.NumInsts() {
			p.SetAbsent(c[0], c[1])
		}
	}
}

type DBStore struct {
	name string
	rc   *redis.Client
	ic   client.Client
	db   string
}

func NewDBStore(lc *LaunchConfig) (*DBStore, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     lc.RedisCfg.Addr,
		Password: lc.RedisCfg.Password,
		DB:       lc.RedisCfg.DB,
	})

	ic, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     lc.InfluxCfg.Addr,
		Username: lc.InfluxCfg.UserName,
		Password: lc.InfluxCfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create influx client: %w", err)
	}

	return &DBStore{name: lc.Name, rc: rc, ic: ic, db: lc.InfluxCfg.Database}, nil
}

func (s *DBStore) metaKey(factorId string) string {
	return fmt.Sprintf("qfactor:%s:meta:%s", s.name, factorId)
}

func (s *DBStore) Load(factorId string) (*factor.Computed, bool, error) {
	ctx := context.Background()

	b, err := s.rc.Get(ctx, s.metaKey(factorId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("load factor meta: %w", err)
	}

	meta := factorMeta{}
	if err := jsoniter.Unmarshal(b, &meta); err != nil {
		return nil, false, fmt.Errorf("decode factor meta: %w", err)
	}

	dates := make([]time.Time, len(meta.Dates))
	for i, ts := range meta.Dates {
		dates[i] = time.Unix(ts, 0).UTC()
	}
	panel, err := common.NewPanel(dates, meta.InstIds)
	if err != nil {
		return nil, false, fmt.Errorf("rebuild factor panel: %w", err)
	}
	panel.AddField(common.ValueField)
	markAbsentCells(panel, meta.Absent)

	// 按品种分组查询因子值
	cmd := fmt.Sprintf(`SELECT "value" FROM "%s" WHERE "factor"='%s' GROUP BY "inst"`, measurement, factorId)
	resp, err := s.ic.Query(client.NewQuery(cmd, s.db, "s"))
	if err != nil {
		return nil, false, fmt.Errorf("query influx: %w", err)
	}
	if resp.Error() != nil {
		return nil, false, fmt.Errorf("query influx: %w", resp.Error())
	}

	for _, r := range resp.Results {
		for _, series := range r.Series {
			instId := series.Tags["inst"]
			ii, ok := panel.InstIndex(instId)
			if !ok {
				continue
			}
			for _, row := range series.Values {
				ts, ok1 := row[0].(json.Number)
				v, ok2 := row[1].(json.Number)
				if !ok1 || !ok2 {
					continue
				}
				sec, _ := ts.Int64()
				fv, _ := v.Float64()
				if di, ok := panel.DateIndex(time.Unix(sec, 0).UTC()); ok {
					panel.Set(common.ValueField, di, ii, fv)
				}
			}
		}
	}

	return &factor.Computed{
		Values:   panel,
		Source:   meta.Source,
		Hash:     meta.Hash,
		Lookback: meta.Lookback,
	}, true, nil
}

func (s *DBStore) Save(factorId string, c *factor.Computed) error {
	ctx := context.Background()
	panel := c.Values

	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: s.db, Precision: "s"})
	if err != nil {
		return fmt.Errorf("create batch points: %w", err)
	}

	col, ok := panel.Raw(common.ValueField)
	if !ok {
		return fmt.Errorf("factor %s has no value field", factorId)
	}

	for di := 0; di < panel.NumDates(); di++ {
		for ii := 0; ii < panel.NumInsts(); ii++ {
			v := col[panel.Idx(di, ii)]
			if !panel.Present(di, ii) || math.IsNaN(v) {
				continue
			}
			pt, err := client.NewPoint(
				measurement,
				map[string]string{"factor": factorId, "inst": panel.InstAt(ii)},
				map[string]interface{}{"value": v},
				panel.DateAt(di))
			if err != nil {
				return fmt.Errorf("create point: %w", err)
			}
			bp.AddPoint(pt)
		}
	}

	if err := s.ic.Write(bp); err != nil {
		return fmt.Errorf("write influx: %w", err)
	}

	// 先写value再写meta。meta写入成功后新范围才对读者可见
	meta := factorMeta{
		Source:   c.Source,
		Hash:     c.Hash,
		Lookback: c.Lookback,
		InstIds:  panel.InstIds(),
		Absent:   absentCells(panel),
	}
	for _, d := range panel.Dates() {
		meta.Dates = append(meta.Dates, d.Unix())
	}
	b, err := jsoniter.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode factor meta: %w", err)
	}
	if err := s.rc.Set(ctx, s.metaKey(factorId), b, 0).Err(); err != nil {
		return fmt.Errorf("save factor meta: %w", err)
	}

	return nil
}
