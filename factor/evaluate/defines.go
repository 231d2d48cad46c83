/*
- @Author: aztec
- @Date: 2024-01-15 11:44:19
- @Description: 因子分析的数据定义
- @Prep=PreProcessing
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import "time"

// 因子预处理配置参数
type PrepConfig struct {
	Groups int // 分多少个分组（等数量法）
}

// 默认参数
func NewPrepConfig() PrepConfig {
	return PrepConfig{Groups: 10}
}

// 预处理结果(单品种)
type PrepDetail struct {
	InstId        string  // 品种
	FactorValue   float64 // 因子值
	ForwardReturn float64 // 未来收益
	Group         int     // 所属分组[0~n)。当日未入组时为-1
}

// 预处理结果(单截面)
// 只保留因子值和未来收益都有效的品种（内连接）
type PrepSection struct {
	Time    time.Time
	Details []PrepDetail

	// 当日有效品种数>=分组数时才入组。未入组的日期不参与分组统计，但仍可参与IC
	Grouped bool

	// 每组的平均未来收益，长度=分组数。未入组时为nil
	GroupReturns []float64
}

// 预处理结果序列
type PrepResult struct {
	Groups   int
	Sections []PrepSection
}

// 分析失败：没有任何日期满足最低样本要求
type AnalysisError struct {
	Msg string
}

func (e *AnalysisError) Error() string {
	return "factor analysis failed: " + e.Msg
}

// 分析结果。供报表/上层展示消费，产出后只读
type Result struct {
	// 逐日期序列。IC样本不足（有效对<2）的日期为NaN，不计入汇总
	Times  []time.Time
	IC     []float64 // 因子值与未来收益的Pearson相关
	RankIC []float64 // Spearman相关

	// 入组日期序列
	GroupedTimes     []time.Time
	GroupMeanReturns [][]float64 // [入组日期][组]
	Turnover         []float64   // 相邻入组日期间换组品种占比，首个入组日期为NaN
	CumGroupReturns  [][]float64 // [组][入组日期]，累计收益

	// 汇总
	MeanIC       float64
	ICStd        float64
	ICIR         float64
	MeanRankIC   float64
	RankICIR     float64
	MeanTurnover float64
}
