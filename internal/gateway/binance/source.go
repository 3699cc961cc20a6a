package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2/futures"

	"riptide/internal/logger"
	"riptide/internal/market"
)

// Source 实现 market.Source，基于 Binance 合约 REST 接口。
type Source struct {
	cfg    Config
	client *futures.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	client := futures.NewClient(final.APIKey, final.APISecret)
	client.HTTPClient.Timeout = final.HTTPTimeout
	return &Source{cfg: final, client: client}
}

// FetchHistory 拉取最近 limit 根 K 线并按时间升序返回。
func (s *Source) FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	logger.Debugf("[binance] klines %s %s limit=%d", symbol, interval, limit)
	raw, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, interval, err)
	}
	out := make([]market.Candle, 0, len(raw))
	for _, k := range raw {
		out = append(out, market.Candle{
			OpenTime:  k.OpenTime,
			CloseTime: k.CloseTime,
			Open:      toFloat(k.Open),
			High:      toFloat(k.High),
			Low:       toFloat(k.Low),
			Close:     toFloat(k.Close),
			Volume:    toFloat(k.Volume),
		})
	}
	return out, nil
}

// FundingRate 返回最近一期资金费率与标记价格。
func (s *Source) FundingRate(ctx context.Context, symbol string) (market.FundingInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.FundingInfo{}, fmt.Errorf("symbol is required")
	}
	idx, err := s.client.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return market.FundingInfo{}, fmt.Errorf("binance premium index %s: %w", symbol, err)
	}
	if len(idx) == 0 {
		return market.FundingInfo{}, fmt.Errorf("binance premium index %s: empty response", symbol)
	}
	p := idx[0]
	return market.FundingInfo{
		Symbol:      symbol,
		Rate:        toFloat(p.LastFundingRate),
		NextFunding: p.NextFundingTime,
		MarkPrice:   toFloat(p.MarkPrice),
	}, nil
}

func (s *Source) Close() error { return nil }

func toFloat(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
