/*
- @Author: aztec
- @Date: 2024-02-19 09:37:12
- @Description: 面板数据。以（日期、品种）为键、包含多个命名数值字段的二维对齐数据
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package common

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// 因子结果面板的固定字段名
const ValueField = "value"

// 面板数据
// 日期严格递增且唯一。品种集合全局有序，每个日期上可以只有部分品种在场（present）
// 缺失值用NaN表示，绝不用0代替
// 字段名大小写不敏感，内部统一为小写
type Panel struct {
	dates   []time.Time
	instIds []string

	dateIdx map[int64]int  // unixMilli -> 日期索引
	instIdx map[string]int // instId -> 品种索引

	// 品种在某日期是否在场。布局为[di*ni+ii]
	present []bool

	// 字段数据。布局同present
	fields     map[string][]float64
	fieldOrder []string
}

// 创建面板。所有(日期,品种)默认在场，所有字段值默认缺失
func NewPanel(dates []time.Time, instIds []string) (*Panel, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("panel dates not strictly increasing at index %d", i)
		}
	}

	p := &Panel{
		dates:   slices.Clone(dates),
		instIds: slices.Clone(instIds),
		dateIdx: make(map[int64]int, len(dates)),
		instIdx: make(map[string]int, len(instIds)),
		fields:  map[string][]float64{},
	}

	for i, t := range p.dates {
		p.dateIdx[t.UnixMilli()] = i
	}

	for i, id := range p.instIds {
		if _, ok := p.instIdx[id]; ok {
			return nil, fmt.Errorf("duplicate instId %s", id)
		}
		p.instIdx[id] = i
	}

	p.present = make([]bool, len(dates)*len(instIds))
	for i := range p.present {
		p.present[i] = true
	}

	return p, nil
}

func (p *Panel) NumDates() int { return len(p.dates) }
func (p *Panel) NumInsts() int { return len(p.instIds) }

func (p *Panel) Dates() []time.Time { return slices.Clone(p.dates) }
func (p *Panel) InstIds() []string  { return slices.Clone(p.instIds) }

func (p *Panel) DateAt(i int) time.Time { return p.dates[i] }
func (p *Panel) InstAt(i int) string    { return p.instIds[i] }

func (p *Panel) DateIndex(t time.Time) (int, bool) {
	i, ok := p.dateIdx[t.UnixMilli()]
	return i, ok
}

func (p *Panel) InstIndex(instId string) (int, bool) {
	i, ok := p.instIdx[instId]
	return i, ok
}

// (di,ii)在底层存储中的下标
func (p *Panel) Idx(di, ii int) int {
	return di*len(p.instIds) + ii
}

func (p *Panel) Present(di, ii int) bool {
	return p.present[p.Idx(di, ii)]
}

func (p *Panel) SetAbsent(di, ii int) {
	p.present[p.Idx(di, ii)] = false
}

func (p *Panel) SetPresent(di, ii int) {
	p.present[p.Idx(di, ii)] = true
}

// 字段名统一小写
func FieldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (p *Panel) AddField(name string) error {
	name = FieldName(name)
	if _, ok := p.fields[name]; ok {
		return fmt.Errorf("field %s already exists", name)
	}
	col := make([]float64, len(p.dates)*len(p.instIds))
	for i := range col {
		col[i] = math.NaN()
	}
	p.fields[name] = col
	p.fieldOrder = append(p.fieldOrder, name)
	return nil
}

func (p *Panel) HasField(name string) bool {
	_, ok := p.fields[FieldName(name)]
	return ok
}

// 字段名，按加入顺序
func (p *Panel) Fields() []string {
	return slices.Clone(p.fieldOrder)
}

// 字段的底层存储。布局为[di*ni+ii]，供算子批量读写
func (p *Panel) Raw(name string) ([]float64, bool) {
	col, ok := p.fields[FieldName(name)]
	return col, ok
}

// 取值。品种不在场、字段不存在或值缺失时ok=false
func (p *Panel) Get(name string, di, ii int) (float64, bool) {
	col, ok := p.fields[FieldName(name)]
	if !ok {
		return math.NaN(), false
	}
	idx := p.Idx(di, ii)
	if !p.present[idx] {
		return math.NaN(), false
	}
	v := col[idx]
	return v, !math.IsNaN(v)
}

func (p *Panel) Set(name string, di, ii int, v float64) {
	if col, ok := p.fields[FieldName(name)]; ok {
		col[p.Idx(di, ii)] = v
	}
}

// 以相同形状（日期、品种、在场状态）创建新面板，携带指定的空字段
func (p *Panel) EmptyLike(fields ...string) *Panel {
	np := &Panel{
		dates:   p.dates,
		instIds: p.instIds,
		dateIdx: p.dateIdx,
		instIdx: p.instIdx,
		present: p.present,
		fields:  map[string][]float64{},
	}
	for _, f := range fields {
		np.AddField(f)
	}
	return np
}

func (p *Panel) Clone() *Panel {
	np := &Panel{
		dates:      slices.Clone(p.dates),
		instIds:    slices.Clone(p.instIds),
		dateIdx:    make(map[int64]int, len(p.dates)),
		instIdx:    make(map[string]int, len(p.instIds)),
		present:    slices.Clone(p.present),
		fields:     make(map[string][]float64, len(p.fields)),
		fieldOrder: slices.Clone(p.fieldOrder),
	}
	for k, v := range p.dateIdx {
		np.dateIdx[k] = v
	}
	for k, v := range p.instIdx {
		np.instIdx[k] = v
	}
	for k, col := range p.fields {
		np.fields[k] = slices.Clone(col)
	}
	return np
}

// 截取日期区间[d0,d1)，深拷贝
func (p *Panel) SubRange(d0, d1 int) *Panel {
	if d0 < 0 {
		d0 = 0
	}
	if d1 > len(p.dates) {
		d1 = len(p.dates)
	}
	if d0 > d1 {
		d0 = d1
	}

	np, _ := NewPanel(p.dates[d0:d1], p.instIds)
	ni := len(p.instIds)
	copy(np.present, p.present[d0*ni:d1*ni])
	for _, f := range p.fieldOrder {
		np.AddField(f)
		dst, _ := np.Raw(f)
		copy(dst, p.fields[f][d0*ni:d1*ni])
	}
	return np
}

// 在尾部拼接扩展面板，返回新面板，原面板不变
// 扩展面板的日期必须严格晚于原面板最后一个日期，字段集合必须一致
// 品种集合取并集，未覆盖的(日期,品种)标记为不在场
func (p *Panel) AppendPanel(ext *Panel) (*Panel, error) {
	if ext.NumDates() == 0 {
		return p.Clone(), nil
	}
	if p.NumDates() > 0 && !ext.dates[0].After(p.dates[len(p.dates)-1]) {
		return nil, fmt.Errorf("extension starts at %s, not after %s",
			ext.dates[0].Format(time.DateOnly), p.dates[len(p.dates)-1].Format(time.DateOnly))
	}
	if !slices.Equal(p.fieldOrder, ext.fieldOrder) {
		return nil, fmt.Errorf("field set mismatch: %v vs %v", p.fieldOrder, ext.fieldOrder)
	}

	instIds := slices.Clone(p.instIds)
	for _, id := range ext.instIds {
		if _, ok := p.instIdx[id]; !ok {
			instIds = append(instIds, id)
		}
	}

	dates := append(slices.Clone(p.dates), ext.dates...)
	np, err := NewPanel(dates, instIds)
	if err != nil {
		return nil, err
	}

	// 新面板先全部置为不在场，再从两个来源回填
	for i := range np.present {
		np.present[i] = false
	}
	for _, f := range p.fieldOrder {
		np.AddField(f)
	}

	fill := func(src *Panel, dateOffset int) {
		for di := 0; di < src.NumDates(); di++ {
			for ii, id := range src.instIds {
				nii, _ := np.instIdx[id]
				if !src.Present(di, ii) {
					continue
				}
				np.present[np.Idx(dateOffset+di, nii)] = true
				for _, f := range src.fieldOrder {
					col := src.fields[f]
					np.fields[f][np.Idx(dateOffset+di, nii)] = col[src.Idx(di, ii)]
				}
			}
		}
	}
	fill(p, 0)
	fill(ext, p.NumDates())

	return np, nil
}

// 判断两个面板在重叠语义下是否一致（形状相同、字段相同、数值差不超过tol，缺失状态相同）
// 用于增量计算与全量计算的等价性校验
func PanelEqual(a, b *Panel, tol float64) bool {
	if a.NumDates() != b.NumDates() || a.NumInsts() != b.NumInsts() {
		return false
	}
	for i := range a.dates {
		if !a.dates[i].Equal(b.dates[i]) {
			return false
		}
	}
	if !slices.Equal(a.instIds, b.instIds) || !slices.Equal(a.fieldOrder, b.fieldOrder) {
		return false
	}
	for _, f := range a.fieldOrder {
		ca := a.fields[f]
		cb := b.fields[f]
		for i := range ca {
			if a.present[i] != b.present[i] {
				return false
			}
			if math.IsNaN(ca[i]) != math.IsNaN(cb[i]) {
				return false
			}
			if !math.IsNaN(ca[i]) && math.Abs(ca[i]-cb[i]) > tol {
				return false
			}
		}
	}
	return true
}
