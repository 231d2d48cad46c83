package common

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKlineUnitDeserialize(t *testing.T) {
	tm := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	// 序列化顺序：时间戳(ms)、开、收、低、高、量
	bf := &bytes.Buffer{}
	binary.Write(bf, binary.LittleEndian, tm.UnixMilli())
	binary.Write(bf, binary.LittleEndian, 100.0)
	binary.Write(bf, binary.LittleEndian, 102.0)
	binary.Write(bf, binary.LittleEndian, 99.0)
	binary.Write(bf, binary.LittleEndian, 103.0)
	binary.Write(bf, binary.LittleEndian, 12345.0)

	ku := KlineUnit{}
	require.True(t, ku.Deserialize(bf))
	assert.True(t, ku.Time.Equal(tm))
	assert.Equal(t, 100.0, ku.OpenPrice)
	assert.Equal(t, 102.0, ku.ClosePrice)
	assert.Equal(t, 99.0, ku.LowPrice)
	assert.Equal(t, 103.0, ku.HighPrice)
	assert.Equal(t, 12345.0, ku.Volume)

	// 数据耗尽
	assert.False(t, ku.Deserialize(bf))
}

func TestBarInterval(t *testing.T) {
	itvl, ok := Bar2Interval(Bar_1h)
	assert.True(t, ok)
	assert.Equal(t, 3600, itvl)

	bar, ok := Interval2Bar(86400)
	assert.True(t, ok)
	assert.Equal(t, Bar_1d, bar)

	_, ok = Bar2Interval(Bar("7m"))
	assert.False(t, ok)
	_, ok = Interval2Bar(123)
	assert.False(t, ok)
}
