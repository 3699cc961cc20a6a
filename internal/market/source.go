package market

import "context"

// FundingInfo 最近一期资金费率快照。
type FundingInfo struct {
	Symbol      string  `json:"symbol"`
	Rate        float64 `json:"rate"`
	NextFunding int64   `json:"next_funding"`
	MarkPrice   float64 `json:"mark_price"`
}

// Source 统一对接外部行情供应商。
type Source interface {
	// FetchHistory 拉取最近 limit 根 K 线并按时间升序返回。
	FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	// FundingRate 返回指定合约的最近资金费率。
	FundingRate(ctx context.Context, symbol string) (FundingInfo, error)
	// Close 释放底层资源。
	Close() error
}
