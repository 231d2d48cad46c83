package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecqt/qfactor/factor/evaluate"
)

func makePrepResult(groups int, secs ...evaluate.PrepSection) *evaluate.PrepResult {
	return &evaluate.PrepResult{Groups: groups, Sections: secs}
}

func groupedSection(day int, details []evaluate.PrepDetail, groupReturns []float64) evaluate.PrepSection {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return evaluate.PrepSection{
		Time:         t0.AddDate(0, 0, day),
		Details:      details,
		Grouped:      true,
		GroupReturns: groupReturns,
	}
}

func TestExecutorRun(t *testing.T) {
	details := []evaluate.PrepDetail{
		{InstId: "a", Group: 0},
		{InstId: "b", Group: 0},
		{InstId: "c", Group: 1},
		{InstId: "d", Group: 1},
	}

	t.Run("nav without fee", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{FeeMaker: decimal.Zero})
		rst, err := e.Run(makePrepResult(2,
			groupedSection(0, details, []float64{0.1, 0.2}),
			groupedSection(1, details, []float64{0.1, 0.2}),
		))
		require.NoError(t, err)

		require.Len(t, rst.Times, 2)
		assert.InDelta(t, 1.1, rst.GroupNavs[0][0], 1e-9)
		assert.InDelta(t, 1.2, rst.GroupNavs[0][1], 1e-9)
		assert.InDelta(t, 1.1*1.1, rst.GroupNavs[1][0], 1e-9)
		assert.InDelta(t, 1.2*1.2, rst.GroupNavs[1][1], 1e-9)

		// 多空：做多高组、做空低组，各半仓
		assert.InDelta(t, 1.05, rst.LongShortNav[0], 1e-9)
		assert.InDelta(t, 1.05*1.05, rst.LongShortNav[1], 1e-9)
	})

	t.Run("fee charged on turnover", func(t *testing.T) {
		fee := 0.001
		e := NewExecutor(ExecutorConfig{FeeMaker: decimal.NewFromFloat(fee)})
		rst, err := e.Run(makePrepResult(2,
			groupedSection(0, details, []float64{0.1, 0.2}),
			groupedSection(1, details, []float64{0.1, 0.2}),
		))
		require.NoError(t, err)

		// 首期建仓成交额为净值的100%
		assert.InDelta(t, 1+0.1-fee, rst.GroupNavs[0][0], 1e-9)
		// 第二期持仓不变，没有成交
		assert.InDelta(t, (1+0.1-fee)*1.1, rst.GroupNavs[1][0], 1e-9)
	})

	t.Run("rebalance deals", func(t *testing.T) {
		swapped := []evaluate.PrepDetail{
			{InstId: "a", Group: 1},
			{InstId: "b", Group: 0},
			{InstId: "c", Group: 0},
			{InstId: "d", Group: 1},
		}
		e := NewExecutor(ExecutorConfig{FeeMaker: decimal.Zero})
		rst, err := e.Run(makePrepResult(2,
			groupedSection(0, details, []float64{0.1, 0.2}),
			groupedSection(1, swapped, []float64{0.1, 0.2}),
		))
		require.NoError(t, err)

		// 首期每组买入2个品种，第二期每组换掉1个（一卖一买）
		assert.Len(t, rst.Deals, 4+4)
	})

	t.Run("ungrouped sections skipped", func(t *testing.T) {
		e := NewExecutor(ExecutorConfigDefault())
		plain := evaluate.PrepSection{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
		rst, err := e.Run(makePrepResult(2,
			groupedSection(0, details, []float64{0.1, 0.2}),
			plain,
		))
		require.NoError(t, err)
		assert.Len(t, rst.Times, 1)
	})

	t.Run("invalid input", func(t *testing.T) {
		e := NewExecutor(ExecutorConfigDefault())
		_, err := e.Run(nil)
		assert.Error(t, err)

		_, err = e.Run(makePrepResult(2))
		assert.Error(t, err)
	})
}
