/*
- @Author: aztec
- @Date: 2024-01-18 16:30:45
- @Description:
- @因子库。负责因子计算与结果读写的苦力：解析公式、决定最小重算窗口、增量扩展已有结果
- @同一因子同时最多一个写入者；计算失败时已存储的结果保持不变，不做部分提交
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"fmt"
	"math"
	"sync"

	"github.com/aztecqt/qfactor/common"
	"github.com/aztecqt/qfactor/factor"
	"github.com/aztecqt/qfactor/factor/formula"
)

type Lib struct {
	store Store

	// 因子级别的互斥。同一factorId的读改写串行化
	mu      sync.Mutex
	factors map[string]*sync.Mutex
}

func NewLib(store Store) *Lib {
	return &Lib{store: store, factors: map[string]*sync.Mutex{}}
}

func (l *Lib) lockFactor(factorId string) func() {
	l.mu.Lock()
	m, ok := l.factors[factorId]
	if !ok {
		m = &sync.Mutex{}
		l.factors[factorId] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// 计算公式因子
// 已有结果且公式标识一致时增量计算：从尾部回退maxLookback个观测重算，丢弃重叠前缀，只追加新日期
// 公式变化或历史对不上时全量重算。增量与全量的输出等价
func (l *Lib) ComputeFormula(factorId, text string, panel *common.Panel) (*factor.Computed, error) {
	prog, err := formula.Parse(text)
	if err != nil {
		return nil, err
	}
	hash := prog.Hash()
	lookback := prog.MaxLookback()

	unlock := l.lockFactor(factorId)
	defer unlock()

	prior, found, err := l.store.Load(factorId)
	if err != nil {
		return nil, fmt.Errorf("load prior result of %s: %w", factorId, err)
	}

	if found && prior.Hash == hash {
		if c, ok, err := l.extend(factorId, prog, prior, panel); err != nil {
			return nil, err
		} else if ok {
			return c, nil
		}
		common.LogNormal(logPrefix, "factor %s: prior result not extendable, full recompute", factorId)
	} else if found {
		common.LogNormal(logPrefix, "factor %s: formula changed, full recompute", factorId)
	}

	vals, err := formula.Evaluate(prog, panel)
	if err != nil {
		return nil, err
	}
	c := &factor.Computed{Values: vals, Source: text, Hash: hash, Lookback: lookback}
	if err := l.store.Save(factorId, c); err != nil {
		return nil, fmt.Errorf("save factor %s: %w", factorId, err)
	}
	common.LogNormal(logPrefix, "factor %s: full compute, %d dates", factorId, vals.NumDates())
	return c, nil
}

// 尝试增量扩展。ok=false表示无法增量（日期对不上等），调用方回退全量
func (l *Lib) extend(factorId string, prog *formula.Program, prior *factor.Computed, panel *common.Panel) (*factor.Computed, bool, error) {
	ei, ok := panel.DateIndex(prior.EndDate())
	if !ok {
		return nil, false, nil
	}
	if ei == panel.NumDates()-1 {
		// 没有新日期
		return prior, true, nil
	}

	start := restartIndex(panel, ei, prior.Lookback, prog.Fields())
	sub := panel.SubRange(start, panel.NumDates())
	vals, err := formula.Evaluate(prog, sub)
	if err != nil {
		return nil, false, err
	}

	// 丢弃重叠重算的前缀，只保留真正的新日期
	ext := vals.SubRange(ei+1-start, vals.NumDates())
	merged, err := prior.Extend(ext)
	if err != nil {
		return nil, false, err
	}

	if err := l.store.Save(factorId, merged); err != nil {
		return nil, false, err
	}
	common.LogNormal(logPrefix, "factor %s: incremental compute, %d new dates", factorId, ext.NumDates())
	return merged, true, nil
}

// 计算过程式因子。过程内部逻辑不透明，无法做窗口推断，每次全量计算
func (l *Lib) ComputeProc(factorId, name string, f factor.Factor, panel *common.Panel) (*factor.Computed, error) {
	unlock := l.lockFactor(factorId)
	defer unlock()

	c, err := factor.Run(f, name, panel)
	if err != nil {
		return nil, err
	}
	if err := l.store.Save(factorId, c); err != nil {
		return nil, fmt.Errorf("save factor %s: %w", factorId, err)
	}
	return c, nil
}

// 增量重算的起始日期索引
// 滚动算子按品种自身的观测计数，观测=在场且公式引用的基础字段均有值
// 在场但字段为NaN的日期不算观测，回数时必须跳过，否则重算窗口不足，增量结果会多出缺失
// 对每个品种从尾部回数lookback个观测，取最早者；观测不足的品种从头开始
func restartIndex(panel *common.Panel, endIdx, lookback int, fields []string) int {
	if lookback <= 0 {
		return endIdx + 1
	}

	cols := make([][]float64, 0, len(fields))
	for _, f := range fields {
		if col, ok := panel.Raw(f); ok {
			cols = append(cols, col)
		}
	}

	observed := func(di, ii int) bool {
		if !panel.Present(di, ii) {
			return false
		}
		for _, col := range cols {
			if math.IsNaN(col[panel.Idx(di, ii)]) {
				return false
			}
		}
		return true
	}

	start := endIdx + 1
	for ii := 0; ii < panel.NumInsts(); ii++ {
		counted := 0
		candidate := 0
		for di := endIdx; di >= 0; di-- {
			if observed(di, ii) {
				counted++
				if counted == lookback {
					candidate = di
					break
				}
			}
		}
		if candidate < start {
			start = candidate
		}
	}
	return start
}
