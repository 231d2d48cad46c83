package common

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDates(n int) []time.Time {
	dates := make([]time.Time, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = t0.AddDate(0, 0, i)
	}
	return dates
}

func TestNewPanel(t *testing.T) {
	t.Run("dates must be strictly increasing", func(t *testing.T) {
		dates := testDates(3)
		dates[2] = dates[1]
		_, err := NewPanel(dates, []string{"btc_usdt"})
		assert.Error(t, err)
	})

	t.Run("instIds must be unique", func(t *testing.T) {
		_, err := NewPanel(testDates(3), []string{"btc_usdt", "btc_usdt"})
		assert.Error(t, err)
	})

	t.Run("new field starts as missing", func(t *testing.T) {
		pn, err := NewPanel(testDates(2), []string{"btc_usdt", "eth_usdt"})
		require.NoError(t, err)
		require.NoError(t, pn.AddField("close"))

		_, ok := pn.Get("close", 0, 0)
		assert.False(t, ok)
	})
}

func TestPanelGetSet(t *testing.T) {
	pn, err := NewPanel(testDates(3), []string{"btc_usdt", "eth_usdt"})
	require.NoError(t, err)
	require.NoError(t, pn.AddField("close"))

	pn.Set("close", 1, 0, 42000)

	// 字段名大小写不敏感
	v, ok := pn.Get("CLOSE", 1, 0)
	assert.True(t, ok)
	assert.Equal(t, 42000.0, v)

	// 不在场的品种取不到值
	pn.SetAbsent(1, 0)
	_, ok = pn.Get("close", 1, 0)
	assert.False(t, ok)

	// 缺失值是NaN而不是0
	col, ok := pn.Raw("close")
	require.True(t, ok)
	assert.True(t, math.IsNaN(col[pn.Idx(0, 0)]))
}

func TestPanelSubRange(t *testing.T) {
	pn, _ := NewPanel(testDates(5), []string{"btc_usdt"})
	pn.AddField("close")
	for di := 0; di < 5; di++ {
		pn.Set("close", di, 0, float64(di))
	}

	sub := pn.SubRange(2, 4)
	require.Equal(t, 2, sub.NumDates())
	assert.True(t, sub.DateAt(0).Equal(pn.DateAt(2)))

	v, ok := sub.Get("close", 0, 0)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	// 深拷贝，修改子面板不影响原面板
	sub.Set("close", 0, 0, 99)
	v, _ = pn.Get("close", 2, 0)
	assert.Equal(t, 2.0, v)
}

func TestPanelAppend(t *testing.T) {
	dates := testDates(5)
	pn, _ := NewPanel(dates[:3], []string{"btc_usdt", "eth_usdt"})
	pn.AddField("value")
	pn.Set("value", 0, 0, 1)

	t.Run("extension must start after last date", func(t *testing.T) {
		bad, _ := NewPanel(dates[2:4], []string{"btc_usdt"})
		bad.AddField("value")
		_, err := pn.AppendPanel(bad)
		assert.Error(t, err)
	})

	t.Run("field sets must match", func(t *testing.T) {
		bad, _ := NewPanel(dates[3:], []string{"btc_usdt"})
		bad.AddField("other")
		_, err := pn.AppendPanel(bad)
		assert.Error(t, err)
	})

	t.Run("instId union with absent backfill", func(t *testing.T) {
		ext, _ := NewPanel(dates[3:], []string{"btc_usdt", "sol_usdt"})
		ext.AddField("value")
		ext.Set("value", 0, 1, 7)

		merged, err := pn.AppendPanel(ext)
		require.NoError(t, err)
		require.Equal(t, 5, merged.NumDates())
		require.Equal(t, 3, merged.NumInsts())

		// 原面板数据保留
		v, ok := merged.Get("value", 0, 0)
		assert.True(t, ok)
		assert.Equal(t, 1.0, v)

		// 新品种在历史日期不在场
		ii, _ := merged.InstIndex("sol_usdt")
		assert.False(t, merged.Present(0, ii))

		// 老品种在扩展日期里若扩展面板未覆盖则不在场
		ei, _ := merged.InstIndex("eth_usdt")
		assert.False(t, merged.Present(3, ei))
		v, ok = merged.Get("value", 3, ii)
		assert.True(t, ok)
		assert.Equal(t, 7.0, v)

		// 原面板不变
		assert.Equal(t, 3, pn.NumDates())
	})
}

func TestPanelEqual(t *testing.T) {
	mk := func() *Panel {
		pn, _ := NewPanel(testDates(3), []string{"btc_usdt", "eth_usdt"})
		pn.AddField("value")
		pn.Set("value", 0, 0, 1.5)
		pn.SetAbsent(2, 1)
		return pn
	}

	a, b := mk(), mk()
	assert.True(t, PanelEqual(a, b, 1e-9))

	// 数值不同
	b.Set("value", 0, 0, 1.5000001)
	assert.False(t, PanelEqual(a, b, 1e-9))
	assert.True(t, PanelEqual(a, b, 1e-3))

	// 缺失状态不同
	c := mk()
	c.Set("value", 1, 0, 2)
	assert.False(t, PanelEqual(a, c, 1e-9))
}
