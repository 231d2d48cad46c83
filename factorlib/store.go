/*
- @Author: aztec
- @Date: 2024-02-24 09:15:42
- @Description: 因子结果存储。load/save契约，追加友好：新日期写入不重写历史
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"sync"

	"github.com/aztecqt/qfactor/factor"
)

type Store interface {
	// 加载已计算因子。不存在时found=false，不算错误
	Load(factorId string) (c *factor.Computed, found bool, err error)

	// 保存已计算因子
	Save(factorId string, c *factor.Computed) error
}

// 内存存储。测试与单进程场景使用
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*factor.Computed
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]*factor.Computed{}}
}

func (s *MemoryStore) Load(factorId string) (*factor.Computed, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data[factorId]
	return c, ok, nil
}

func (s *MemoryStore) Save(factorId string, c *factor.Computed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[factorId] = c
	return nil
}
