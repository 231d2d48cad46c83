/*
- @Author: aztec
- @Date: 2024-01-17 11:53:54
- @Description: 因子的定义
- @因子是对(日期,品种)的派生数值信号。任何能从基础面板算出单字段结果面板的实现都是因子，
- @包括公式因子和用户自写的过程式因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factor

import "github.com/aztecqt/qfactor/common"

type Factor interface {
	// 从基础面板计算因子值。返回单字段（value）面板，键必须是输入面板键的子集
	Calculate(panel *common.Panel) (*common.Panel, error)
}

// 函数式适配
type CalcFunc func(panel *common.Panel) (*common.Panel, error)

func (f CalcFunc) Calculate(panel *common.Panel) (*common.Panel, error) {
	return f(panel)
}
