/*
- @Author: aztec
- @Date: 2024-01-31 17:54:50
- @Description: 调仓成交记录
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

type deal struct {
	time   time.Time
	group  int
	instId string

	// 成交权重（占该组净值比例）
	weight decimal.Decimal
	isSell bool
}
