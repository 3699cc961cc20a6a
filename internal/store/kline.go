package store

import (
	"context"
	"errors"
	"sync"

	"riptide/internal/market"
)

// KlineStore 抽象：按 symbol+timeframe 读写收盘序列，供扫描器做快照输入。
type KlineStore interface {
	Replace(ctx context.Context, symbol, label string, ks []market.Candle) error
	Append(ctx context.Context, symbol, label string, ks []market.Candle, max int) error
	Window(ctx context.Context, symbol, label string, limit int) ([]market.Candle, error)
}

// MemoryKlineStore 内存实现，读写均返回拷贝。
type MemoryKlineStore struct {
	mu   sync.RWMutex
	data map[string][]market.Candle
}

func NewMemoryKlineStore() *MemoryKlineStore {
	return &MemoryKlineStore{data: make(map[string][]market.Candle)}
}

func key(symbol, label string) string { return symbol + "@" + label }

// Replace 全量替换指定序列。
func (s *MemoryKlineStore) Replace(ctx context.Context, symbol, label string, ks []market.Candle) error {
	if symbol == "" || label == "" {
		return errors.New("symbol/label 不能为空")
	}
	dst := make([]market.Candle, len(ks))
	copy(dst, ks)
	s.mu.Lock()
	s.data[key(symbol, label)] = dst
	s.mu.Unlock()
	return nil
}

// Append 追加并裁剪到 max 根；同一 OpenTime 视为增量更新，覆盖末尾。
func (s *MemoryKlineStore) Append(ctx context.Context, symbol, label string, ks []market.Candle, max int) error {
	if symbol == "" || label == "" {
		return errors.New("symbol/label 不能为空")
	}
	if len(ks) == 0 {
		return nil
	}
	if max <= 0 {
		max = 500
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(symbol, label)
	cur := s.data[k]
	for _, candle := range ks {
		if n := len(cur); n > 0 && cur[n-1].OpenTime == candle.OpenTime {
			cur[n-1] = candle
			continue
		}
		cur = append(cur, candle)
	}
	if len(cur) > max {
		cur = cur[len(cur)-max:]
	}
	s.data[k] = cur
	return nil
}

// Window 返回最近 limit 根 K 线（时间升序）。
func (s *MemoryKlineStore) Window(ctx context.Context, symbol, label string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.data[key(symbol, label)]
	if len(cur) == 0 {
		return nil, nil
	}
	if limit > len(cur) {
		limit = len(cur)
	}
	out := make([]market.Candle, limit)
	copy(out, cur[len(cur)-limit:])
	return out, nil
}
