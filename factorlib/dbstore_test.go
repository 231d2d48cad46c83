package factorlib

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecqt/qfactor/common"
)

// 缺席单元经meta编解码后能完整标回重建的面板
func TestAbsentCellsRoundtrip(t *testing.T) {
	pn := makeClosePanel(t, 5, []string{"a", "b"})
	pn.SetAbsent(1, 0)
	pn.SetAbsent(3, 1)

	meta := factorMeta{Absent: absentCells(pn)}
	assert.Equal(t, [][2]int{{1, 0}, {3, 1}}, meta.Absent)

	b, err := jsoniter.Marshal(meta)
	require.NoError(t, err)
	decoded := factorMeta{}
	require.NoError(t, jsoniter.Unmarshal(b, &decoded))

	rebuilt, err := common.NewPanel(pn.Dates(), pn.InstIds())
	require.NoError(t, err)
	require.NoError(t, rebuilt.AddField(common.ValueField))
	markAbsentCells(rebuilt, decoded.Absent)

	for di := 0; di < pn.NumDates(); di++ {
		for ii := 0; ii < pn.NumInsts(); ii++ {
			assert.Equal(t, pn.Present(di, ii), rebuilt.Present(di, ii))
		}
	}
}

func TestMarkAbsentCellsOutOfRange(t *testing.T) {
	pn := makeClosePanel(t, 3, []string{"a"})

	// 越界索引忽略，面板不受影响
	markAbsentCells(pn, [][2]int{{5, 0}, {0, 9}, {-1, 0}})
	for di := 0; di < pn.NumDates(); di++ {
		assert.True(t, pn.Present(di, 0))
	}
}
