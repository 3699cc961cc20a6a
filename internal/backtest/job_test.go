package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"riptide/internal/market"
)

type stubSource struct {
	err     error
	fetched int
	limit   int
}

func (s *stubSource) FetchHistory(_ context.Context, _, _ string, limit int) ([]market.Candle, error) {
	s.fetched++
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	return fallingCandles(300), nil
}

func (s *stubSource) FundingRate(_ context.Context, symbol string) (market.FundingInfo, error) {
	return market.FundingInfo{Symbol: symbol}, nil
}

func (s *stubSource) Close() error { return nil }

type stubCache struct {
	candles []market.Candle
}

func (c *stubCache) Window(_ context.Context, _, _ string, limit int) ([]market.Candle, error) {
	if len(c.candles) > limit {
		return c.candles[len(c.candles)-limit:], nil
	}
	return c.candles, nil
}

func fallingCandles(n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		open := int64(i) * 3_600_000
		out[i] = market.Candle{OpenTime: open, CloseTime: open + 3_599_999, Close: float64(1000 - i)}
	}
	return out
}

func waitForJob(t *testing.T, svc *Service, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := svc.Snapshot(id)
		if !ok {
			t.Fatalf("任务 %s 丢失", id)
		}
		if job.Status == JobStatusDone || job.Status == JobStatusFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("任务 %s 未在限时内结束", id)
	return Job{}
}

func TestSubmitPrefersCachedWindow(t *testing.T) {
	src := &stubSource{err: errors.New("rate limited")}
	svc := NewService(ServiceConfig{
		Source: src,
		Cache:  &stubCache{candles: fallingCandles(250)},
	})
	job, err := svc.Submit("BTCUSDT", "1h", Params{})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	done := waitForJob(t, svc, job.ID)
	if done.Status != JobStatusDone {
		t.Fatalf("缓存充足时不应回源, 实际 status=%s msg=%s", done.Status, done.Message)
	}
	if src.fetched != 0 {
		t.Fatalf("命中缓存后不应调用行情源, 实际调用 %d 次", src.fetched)
	}
	if done.Result == nil || done.Result.Candles != 250 {
		t.Fatalf("应基于 250 根缓存 K 线回测, 实际=%+v", done.Result)
	}
}

func TestSubmitFallsBackToFetch(t *testing.T) {
	src := &stubSource{}
	svc := NewService(ServiceConfig{
		Source: src,
		Cache:  &stubCache{candles: fallingCandles(50)}, // 不满足最低缓存量
	})
	job, err := svc.Submit("BTCUSDT", "1h", Params{})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	done := waitForJob(t, svc, job.ID)
	if done.Status != JobStatusDone {
		t.Fatalf("回源拉取应成功, 实际 status=%s msg=%s", done.Status, done.Message)
	}
	if src.fetched != 1 {
		t.Fatalf("缓存不足应回源一次, 实际=%d", src.fetched)
	}
}

func TestSubmitAppliesServiceDefaults(t *testing.T) {
	svc := NewService(ServiceConfig{
		Source:   &stubSource{},
		Defaults: Params{Period: 9, Oversold: 25, Overbought: 75},
	})
	job, err := svc.Submit("BTCUSDT", "1h", Params{Oversold: 20})
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	if job.Params.Period != 9 || job.Params.Overbought != 75 {
		t.Fatalf("未指定字段应取服务默认, 实际=%+v", job.Params)
	}
	if job.Params.Oversold != 20 {
		t.Fatalf("显式字段不应被默认覆盖, 实际=%.1f", job.Params.Oversold)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(ServiceConfig{Source: &stubSource{}})
	if _, err := svc.Submit("", "1h", Params{}); err == nil {
		t.Fatalf("空 symbol 应报错")
	}
	if _, err := svc.Submit("BTCUSDT", "6h", Params{}); err == nil {
		t.Fatalf("未知 timeframe 应报错")
	}
}
