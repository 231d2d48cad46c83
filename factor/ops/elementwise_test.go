package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryOps(t *testing.T) {
	a := makeValuePanel(t, []string{"x", "y"}, [][]float64{{4, 10}})
	b := makeValuePanel(t, []string{"x", "y"}, [][]float64{{2, 0}})

	rst := col(t, evalOp(t, "+", PanelValue(a), PanelValue(b)))
	assert.Equal(t, []float64{6, 10}, rst)

	// 除0输出缺失
	rst = col(t, evalOp(t, "/", PanelValue(a), PanelValue(b)))
	assert.Equal(t, 2.0, rst[0])
	assert.True(t, math.IsNaN(rst[1]))

	// 标量广播
	rst = col(t, evalOp(t, "*", PanelValue(a), ScalarValue(3)))
	assert.Equal(t, []float64{12, 30}, rst)

	// 缺失传播
	c := makeValuePanel(t, []string{"x", "y"}, [][]float64{{nan, 1}})
	rst = col(t, evalOp(t, "+", PanelValue(a), PanelValue(c)))
	assert.True(t, math.IsNaN(rst[0]))
	assert.Equal(t, 11.0, rst[1])
}

func TestCompareOps(t *testing.T) {
	a := makeValuePanel(t, []string{"x", "y"}, [][]float64{{4, 1}})
	b := makeValuePanel(t, []string{"x", "y"}, [][]float64{{2, 2}})

	rst := col(t, evalOp(t, ">", PanelValue(a), PanelValue(b)))
	assert.Equal(t, []float64{1, 0}, rst)

	rst = col(t, evalOp(t, "<=", PanelValue(a), PanelValue(b)))
	assert.Equal(t, []float64{0, 1}, rst)
}

func TestUnaryOps(t *testing.T) {
	a := makeValuePanel(t, []string{"x", "y", "z"}, [][]float64{{-3, 0, 2}})

	rst := col(t, evalOp(t, "ABS", PanelValue(a)))
	assert.Equal(t, []float64{3, 0, 2}, rst)

	rst = col(t, evalOp(t, "SIGN", PanelValue(a)))
	assert.Equal(t, []float64{-1, 0, 1}, rst)

	// LOG对非正数输出缺失
	rst = col(t, evalOp(t, "LOG", PanelValue(a)))
	assert.True(t, math.IsNaN(rst[0]))
	assert.True(t, math.IsNaN(rst[1]))
	assert.InDelta(t, math.Log(2), rst[2], 1e-12)
}

func TestIf(t *testing.T) {
	cond := makeValuePanel(t, []string{"x", "y", "z"}, [][]float64{{1, 0, nan}})
	a := makeValuePanel(t, []string{"x", "y", "z"}, [][]float64{{10, 10, 10}})
	b := makeValuePanel(t, []string{"x", "y", "z"}, [][]float64{{20, 20, 20}})

	rst := col(t, evalOp(t, "IF", PanelValue(cond), PanelValue(a), PanelValue(b)))
	assert.Equal(t, 10.0, rst[0])
	assert.Equal(t, 20.0, rst[1])
	// 条件缺失时结果缺失，不取默认分支
	assert.True(t, math.IsNaN(rst[2]))

	// 被选中分支缺失同样输出缺失
	a2 := makeValuePanel(t, []string{"x", "y", "z"}, [][]float64{{nan, 10, 10}})
	rst = col(t, evalOp(t, "IF", PanelValue(cond), PanelValue(a2), PanelValue(b)))
	assert.True(t, math.IsNaN(rst[0]))
	assert.Equal(t, 20.0, rst[1])

	// 标量分支
	rst = col(t, evalOp(t, "IF", PanelValue(cond), ScalarValue(1), ScalarValue(-1)))
	assert.Equal(t, 1.0, rst[0])
	assert.Equal(t, -1.0, rst[1])
}
