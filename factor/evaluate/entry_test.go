package evaluate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecqt/qfactor/common"
)

func makePanel(t *testing.T, field string, instIds []string, vs [][]float64) *common.Panel {
	t.Helper()
	dates := make([]time.Time, len(vs))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = t0.AddDate(0, 0, i)
	}
	pn, err := common.NewPanel(dates, instIds)
	require.NoError(t, err)
	require.NoError(t, pn.AddField(field))
	for di := range vs {
		for ii := range vs[di] {
			pn.Set(field, di, ii, vs[di][ii])
		}
	}
	return pn
}

var nan = math.NaN()

func TestForwardReturns(t *testing.T) {
	pn := makePanel(t, "close", []string{"a"}, [][]float64{{100}, {110}, {121}, {133.1}})

	fwd, err := ForwardReturns(pn, "close", 1)
	require.NoError(t, err)
	col, _ := fwd.Raw(common.ValueField)

	assert.InDelta(t, 0.1, col[0], 1e-9)
	assert.InDelta(t, 0.1, col[1], 1e-9)
	assert.InDelta(t, 0.1, col[2], 1e-9)
	// 尾部不足period个观测
	assert.True(t, math.IsNaN(col[3]))

	t.Run("period over observations not dates", func(t *testing.T) {
		gp := makePanel(t, "close", []string{"a"}, [][]float64{{100}, {nan}, {120}})
		fwd, err := ForwardReturns(gp, "close", 1)
		require.NoError(t, err)
		col, _ := fwd.Raw(common.ValueField)
		// 中间缺失，下一个观测是第3个日期
		assert.InDelta(t, 0.2, col[0], 1e-9)
		assert.True(t, math.IsNaN(col[1]))
		assert.True(t, math.IsNaN(col[2]))
	})

	t.Run("bad args", func(t *testing.T) {
		_, err := ForwardReturns(pn, "close", 0)
		assert.Error(t, err)
		_, err = ForwardReturns(pn, "nope", 1)
		assert.Error(t, err)
	})
}

func TestPreprocess(t *testing.T) {
	t.Run("inner join per date", func(t *testing.T) {
		factors := makePanel(t, common.ValueField, []string{"a", "b", "c"}, [][]float64{
			{1, 2, 3},
			{1, nan, 3},
		})
		fwd := makePanel(t, common.ValueField, []string{"a", "b", "c"}, [][]float64{
			{0.1, 0.2, nan},
			{0.1, 0.2, 0.3},
		})

		cfg := PrepConfig{Groups: 2}
		pr, err := Preprocess(factors, fwd, cfg)
		require.NoError(t, err)
		require.Len(t, pr.Sections, 2)

		// 日期0：c的收益缺失，只剩a、b
		require.Len(t, pr.Sections[0].Details, 2)
		assert.Equal(t, "a", pr.Sections[0].Details[0].InstId)
		assert.Equal(t, "b", pr.Sections[0].Details[1].InstId)

		// 日期1：b的因子缺失，只剩a、c
		require.Len(t, pr.Sections[1].Details, 2)
		assert.Equal(t, "c", pr.Sections[1].Details[1].InstId)
	})

	t.Run("groups need enough instruments", func(t *testing.T) {
		// 3个品种、5个分组：达不到入组门槛，该日期不分组但保留明细
		factors := makePanel(t, common.ValueField, []string{"a", "b", "c"}, [][]float64{{1, 2, 3}})
		fwd := makePanel(t, common.ValueField, []string{"a", "b", "c"}, [][]float64{{0.1, 0.2, 0.3}})

		pr, err := Preprocess(factors, fwd, PrepConfig{Groups: 5})
		require.NoError(t, err)
		require.Len(t, pr.Sections, 1)
		assert.False(t, pr.Sections[0].Grouped)
		assert.Len(t, pr.Sections[0].Details, 3)
		for _, d := range pr.Sections[0].Details {
			assert.Equal(t, -1, d.Group)
		}
	})

	t.Run("grouping by factor value", func(t *testing.T) {
		factors := makePanel(t, common.ValueField, []string{"a", "b", "c", "d"}, [][]float64{{4, 1, 3, 2}})
		fwd := makePanel(t, common.ValueField, []string{"a", "b", "c", "d"}, [][]float64{{0.4, 0.1, 0.3, 0.2}})

		pr, err := Preprocess(factors, fwd, PrepConfig{Groups: 2})
		require.NoError(t, err)
		sec := pr.Sections[0]
		require.True(t, sec.Grouped)

		// 因子值最低的一半进组0，最高的一半进组1
		byInst := map[string]int{}
		for _, d := range sec.Details {
			byInst[d.InstId] = d.Group
		}
		assert.Equal(t, 0, byInst["b"])
		assert.Equal(t, 0, byInst["d"])
		assert.Equal(t, 1, byInst["c"])
		assert.Equal(t, 1, byInst["a"])

		// 分组收益为组内均值
		assert.InDelta(t, 0.15, sec.GroupReturns[0], 1e-9)
		assert.InDelta(t, 0.35, sec.GroupReturns[1], 1e-9)
	})

	t.Run("group count below 2 rejected", func(t *testing.T) {
		factors := makePanel(t, common.ValueField, []string{"a"}, [][]float64{{1}})
		_, err := Preprocess(factors, factors, PrepConfig{Groups: 1})
		assert.Error(t, err)
	})

	t.Run("no usable date", func(t *testing.T) {
		factors := makePanel(t, common.ValueField, []string{"a", "b"}, [][]float64{{1, nan}})
		fwd := makePanel(t, common.ValueField, []string{"a", "b"}, [][]float64{{0.1, 0.2}})
		_, err := Preprocess(factors, fwd, PrepConfig{Groups: 2})
		require.Error(t, err)
		var ae *AnalysisError
		assert.ErrorAs(t, err, &ae)
	})
}

func TestAnalysis(t *testing.T) {
	mk := func(fvs, rvs [][]float64) *PrepResult {
		t.Helper()
		factors := makePanel(t, common.ValueField, []string{"a", "b", "c", "d"}, fvs)
		fwd := makePanel(t, common.ValueField, []string{"a", "b", "c", "d"}, rvs)
		pr, err := Preprocess(factors, fwd, PrepConfig{Groups: 2})
		require.NoError(t, err)
		return pr
	}

	t.Run("perfect ic", func(t *testing.T) {
		pr := mk(
			[][]float64{{1, 2, 3, 4}, {4, 3, 2, 1}},
			[][]float64{{0.1, 0.2, 0.3, 0.4}, {0.4, 0.3, 0.2, 0.1}},
		)
		rst := Analysis(pr)
		require.Len(t, rst.IC, 2)
		assert.InDelta(t, 1.0, rst.IC[0], 1e-9)
		assert.InDelta(t, 1.0, rst.RankIC[0], 1e-9)
		assert.InDelta(t, 1.0, rst.MeanIC, 1e-9)
	})

	t.Run("turnover", func(t *testing.T) {
		// 日期0：低组{a,b} 高组{c,d}；日期1：a、c换组，换手率0.5
		pr := mk(
			[][]float64{{1, 2, 3, 4}, {3, 2, 1, 4}},
			[][]float64{{0.1, 0.1, 0.1, 0.2}, {0.1, 0.1, 0.1, 0.2}},
		)
		rst := Analysis(pr)
		require.Len(t, rst.Turnover, 2)
		// 第一个入组日期没有前一期
		assert.True(t, math.IsNaN(rst.Turnover[0]))
		assert.InDelta(t, 0.5, rst.Turnover[1], 1e-9)
		assert.InDelta(t, 0.5, rst.MeanTurnover, 1e-9)
	})

	t.Run("cumulative group returns", func(t *testing.T) {
		pr := mk(
			[][]float64{{1, 2, 3, 4}, {1, 2, 3, 4}},
			[][]float64{{0.1, 0.1, 0.2, 0.2}, {0.1, 0.1, 0.2, 0.2}},
		)
		rst := Analysis(pr)
		require.Len(t, rst.CumGroupReturns, 2)
		assert.InDelta(t, 0.1, rst.CumGroupReturns[0][0], 1e-9)
		assert.InDelta(t, 1.1*1.1-1, rst.CumGroupReturns[0][1], 1e-9)
		assert.InDelta(t, 1.2*1.2-1, rst.CumGroupReturns[1][1], 1e-9)
	})

	t.Run("ic needs 2 pairs", func(t *testing.T) {
		factors := makePanel(t, common.ValueField, []string{"a", "b"}, [][]float64{
			{1, 2},
			{1, nan},
		})
		fwd := makePanel(t, common.ValueField, []string{"a", "b"}, [][]float64{
			{0.1, 0.2},
			{0.1, 0.2},
		})
		pr, err := Preprocess(factors, fwd, PrepConfig{Groups: 2})
		require.NoError(t, err)
		rst := Analysis(pr)
		require.Len(t, rst.IC, 2)
		assert.False(t, math.IsNaN(rst.IC[0]))
		assert.True(t, math.IsNaN(rst.IC[1]))
	})
}
