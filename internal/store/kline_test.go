package store

import (
	"context"
	"testing"

	"riptide/internal/market"
)

func seedCandles(t *testing.T, n int, startOpen int64) []market.Candle {
	t.Helper()
	out := make([]market.Candle, n)
	for i := range out {
		open := startOpen + int64(i)*60_000
		out[i] = market.Candle{
			OpenTime:  open,
			CloseTime: open + 59_999,
			Close:     100 + float64(i),
		}
	}
	return out
}

func TestReplaceAndWindow(t *testing.T) {
	s := NewMemoryKlineStore()
	ctx := context.Background()
	if err := s.Replace(ctx, "BTCUSDT", "1m", seedCandles(t, 10, 0)); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := s.Window(ctx, "BTCUSDT", "1m", 3)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("应返回最近 3 根, 实际=%d", len(got))
	}
	if got[2].Close != 109 {
		t.Fatalf("末根收盘应为 109, 实际=%.1f", got[2].Close)
	}
	if got[0].Close != 107 {
		t.Fatalf("窗口应保持时间升序, 首根=%.1f", got[0].Close)
	}
}

func TestWindowLimits(t *testing.T) {
	s := NewMemoryKlineStore()
	ctx := context.Background()
	_ = s.Replace(ctx, "BTCUSDT", "1m", seedCandles(t, 5, 0))
	if got, _ := s.Window(ctx, "BTCUSDT", "1m", 100); len(got) != 5 {
		t.Fatalf("limit 超出存量时应全量返回, 实际=%d", len(got))
	}
	if got, _ := s.Window(ctx, "BTCUSDT", "1m", 0); got != nil {
		t.Fatalf("非法 limit 应返回 nil")
	}
	if got, _ := s.Window(ctx, "ETHUSDT", "1m", 10); got != nil {
		t.Fatalf("未知序列应返回 nil")
	}
}

func TestAppendIncrementalUpdate(t *testing.T) {
	s := NewMemoryKlineStore()
	ctx := context.Background()
	base := seedCandles(t, 3, 0)
	if err := s.Append(ctx, "BTCUSDT", "1m", base, 500); err != nil {
		t.Fatalf("追加失败: %v", err)
	}
	// 同一 OpenTime 视为未收盘 K 线的增量更新。
	patch := base[2]
	patch.Close = 999
	_ = s.Append(ctx, "BTCUSDT", "1m", []market.Candle{patch}, 500)
	got, _ := s.Window(ctx, "BTCUSDT", "1m", 10)
	if len(got) != 3 {
		t.Fatalf("增量更新不应增加根数, 实际=%d", len(got))
	}
	if got[2].Close != 999 {
		t.Fatalf("末根应被覆盖为 999, 实际=%.1f", got[2].Close)
	}
}

func TestAppendTrimsToMax(t *testing.T) {
	s := NewMemoryKlineStore()
	ctx := context.Background()
	_ = s.Append(ctx, "BTCUSDT", "1m", seedCandles(t, 10, 0), 4)
	got, _ := s.Window(ctx, "BTCUSDT", "1m", 100)
	if len(got) != 4 {
		t.Fatalf("应裁剪到 4 根, 实际=%d", len(got))
	}
	if got[0].Close != 106 {
		t.Fatalf("裁剪应保留最新段, 首根=%.1f", got[0].Close)
	}
}

func TestReplaceCopiesInput(t *testing.T) {
	s := NewMemoryKlineStore()
	ctx := context.Background()
	src := seedCandles(t, 3, 0)
	_ = s.Replace(ctx, "BTCUSDT", "1m", src)
	src[0].Close = -1
	got, _ := s.Window(ctx, "BTCUSDT", "1m", 3)
	if got[0].Close == -1 {
		t.Fatalf("存储不应与调用方共享底层数组")
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	s := NewMemoryKlineStore()
	if err := s.Replace(context.Background(), "", "1m", nil); err == nil {
		t.Fatalf("空 symbol 应报错")
	}
	if err := s.Append(context.Background(), "BTCUSDT", "", nil, 10); err == nil {
		t.Fatalf("空 label 应报错")
	}
}
