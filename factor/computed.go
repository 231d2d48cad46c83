/*
- @Author: aztec
- @Date: 2024-02-22 09:30:17
- @Description: 已计算因子。单字段结果面板+产出公式标识+最大回看量
- @只追加新日期，从不原地修改。扩展返回新对象，旧对象保持不变
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factor

import (
	"fmt"
	"time"

	"github.com/aztecqt/qfactor/common"
)

type Computed struct {
	// 单字段（value）结果面板
	Values *common.Panel

	// 产出来源。公式因子为公式文本，过程式因子为过程名
	Source string

	// 公式标识。公式语义相同则标识相同，增量计算靠它判断能否复用历史结果
	Hash string

	// 公式所需最大回看观测数
	Lookback int
}

func (c *Computed) StartDate() time.Time {
	if c.Values.NumDates() == 0 {
		return time.Time{}
	}
	return c.Values.DateAt(0)
}

func (c *Computed) EndDate() time.Time {
	if c.Values.NumDates() == 0 {
		return time.Time{}
	}
	return c.Values.DateAt(c.Values.NumDates() - 1)
}

// 在尾部追加新日期的结果，返回新对象
func (c *Computed) Extend(ext *common.Panel) (*Computed, error) {
	merged, err := c.Values.AppendPanel(ext)
	if err != nil {
		return nil, fmt.Errorf("extend computed factor: %w", err)
	}
	return &Computed{
		Values:   merged,
		Source:   c.Source,
		Hash:     c.Hash,
		Lookback: c.Lookback,
	}, nil
}
