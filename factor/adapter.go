/*
- @Author: aztec
- @Date: 2024-02-22 10:02:54
- @Description: 过程式因子适配。用户过程的内部逻辑不透明，这里只校验输出契约：
- @单字段value、键为输入面板键的子集。违反契约报错，不做任何静默修正
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aztecqt/qfactor/common"
)

// 过程式因子的输出形状违反契约
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "factor output validation failed: " + e.Msg
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// 执行过程式因子并校验输出，包装为与公式因子形状一致的已计算因子
func Run(f Factor, name string, panel *common.Panel) (*Computed, error) {
	rst, err := f.Calculate(panel)
	if err != nil {
		return nil, fmt.Errorf("factor %s: %w", name, err)
	}
	if err := ValidateShape(rst, panel); err != nil {
		return nil, fmt.Errorf("factor %s: %w", name, err)
	}

	h := sha256.Sum256([]byte("proc:" + name))
	return &Computed{
		Values: rst,
		Source: name,
		Hash:   hex.EncodeToString(h[:]),
	}, nil
}

// 校验结果面板的形状
func ValidateShape(rst, base *common.Panel) error {
	if rst == nil {
		return validationErrorf("result panel is nil")
	}

	fields := rst.Fields()
	if len(fields) != 1 || fields[0] != common.ValueField {
		return validationErrorf("result must have the single field %q, got %v", common.ValueField, fields)
	}

	for di := 0; di < rst.NumDates(); di++ {
		d := rst.DateAt(di)
		bdi, ok := base.DateIndex(d)
		if !ok {
			return validationErrorf("result date %s not in base panel", d.Format(time.DateOnly))
		}
		for ii := 0; ii < rst.NumInsts(); ii++ {
			if !rst.Present(di, ii) {
				continue
			}
			bii, ok := base.InstIndex(rst.InstAt(ii))
			if !ok {
				return validationErrorf("result instId %s not in base panel", rst.InstAt(ii))
			}
			if !base.Present(bdi, bii) {
				return validationErrorf("result key (%s,%s) not present in base panel",
					d.Format(time.DateOnly), rst.InstAt(ii))
			}
		}
	}

	return nil
}
