package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"riptide/internal/analysis/confluence"
	"riptide/internal/analysis/indicator"
	"riptide/internal/config"
	"riptide/internal/decision"
	"riptide/internal/gateway/sentiment"
	"riptide/internal/logger"
	"riptide/internal/market"
	"riptide/internal/store"
)

// divergenceTimeframes 按优先级参与背离检测的周期，首个命中者进入最终判定。
var divergenceTimeframes = []string{decision.Label4h, decision.Label1h}

// SignalSink 落库接口，扫描器只依赖写入能力。
type SignalSink interface {
	InsertSignal(ctx context.Context, v decision.Verdict) error
}

// PairReport 单个交易对一轮扫描的完整产出。
type PairReport struct {
	Symbol      string                          `json:"symbol"`
	Verdict     decision.Verdict                `json:"verdict"`
	Readings    map[string]map[int]float64      `json:"readings"`
	Confluence  confluence.Result               `json:"confluence"`
	Divergences map[string]indicator.Divergence `json:"divergences"`
	Funding     *market.FundingInfo             `json:"funding,omitempty"`
	FearGreed   *sentiment.FearGreed            `json:"fear_greed,omitempty"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

type Scanner struct {
	source    market.Source
	klines    store.KlineStore
	sink      SignalSink
	sentiment *sentiment.Provider

	pairs       []string
	timeframes  []config.TimeframeConfig
	periods     []int
	confPeriod  int
	divLookback int
	oversold    float64
	overbought  float64
	concurrency int
	interval    time.Duration

	mu      sync.RWMutex
	reports map[string]*PairReport
	dedup   *dedupTracker
}

func New(cfg config.Config, source market.Source, klines store.KlineStore, sink SignalSink, fg *sentiment.Provider) *Scanner {
	return &Scanner{
		source:      source,
		klines:      klines,
		sink:        sink,
		sentiment:   fg,
		pairs:       append([]string(nil), cfg.Scan.Pairs...),
		timeframes:  append([]config.TimeframeConfig(nil), cfg.Timeframes...),
		periods:     append([]int(nil), cfg.Engine.Periods...),
		confPeriod:  cfg.Engine.ConfluencePeriod,
		divLookback: cfg.Engine.DivergenceLookback,
		oversold:    cfg.Engine.Oversold,
		overbought:  cfg.Engine.Overbought,
		concurrency: cfg.Scan.Concurrency,
		interval:    time.Duration(cfg.Scan.IntervalSeconds) * time.Second,
		reports:     make(map[string]*PairReport),
		dedup:       newDedupTracker(),
	}
}

// Start 周期性扫描直到 ctx 结束。首轮立即执行。
func (s *Scanner) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("扫描器已停止")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// RunOnce 执行一轮完整扫描，供手动触发与测试使用。
func (s *Scanner) RunOnce(ctx context.Context) error {
	return s.runCycle(ctx)
}

func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()
	var fg *sentiment.FearGreed
	if s.sentiment != nil {
		if v, ok := s.sentiment.Latest(ctx); ok {
			fg = &v
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, pair := range s.pairs {
		pair := pair
		g.Go(func() error {
			report, err := s.scanPair(gctx, pair)
			if err != nil {
				logger.Warnf("扫描 %s 失败: %v", pair, err)
				return nil
			}
			report.FearGreed = fg
			s.publish(report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.renderTable()
	logger.Debugf("本轮扫描完成：%d 对，耗时 %s", len(s.pairs), time.Since(start).Truncate(time.Millisecond))
	return nil
}

func (s *Scanner) scanPair(ctx context.Context, symbol string) (*PairReport, error) {
	set := make(decision.SnapshotSet, len(s.timeframes))
	closesByLabel := make(map[string][]float64, len(s.timeframes))
	for _, tf := range s.timeframes {
		candles, err := s.source.FetchHistory(ctx, symbol, tf.SourceInterval, tf.CandleLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch %s %s: %w", symbol, tf.Label, err)
		}
		if s.klines != nil {
			if err := s.klines.Replace(ctx, symbol, tf.Label, candles); err != nil {
				logger.Warnf("缓存 %s %s K 线失败: %v", symbol, tf.Label, err)
			}
		}
		closes := market.Closes(candles)
		closesByLabel[tf.Label] = closes
		if snap := decision.BuildSnapshot(symbol, tf.Label, closes, s.periods); snap != nil {
			set[tf.Label] = snap
		}
	}

	readings := set.Readings()
	conf := confluence.Score(readings, s.confPeriod, labelsOf(s.timeframes), s.oversold, s.overbought)

	divs := make(map[string]indicator.Divergence, len(divergenceTimeframes))
	primary := indicator.Divergence{Type: indicator.DivergenceNone}
	for _, label := range divergenceTimeframes {
		div := s.detectDivergence(closesByLabel[label])
		divs[label] = div
		if primary.Type == indicator.DivergenceNone && div.Type != indicator.DivergenceNone {
			primary = div
		}
	}

	verdict := decision.Evaluate(symbol, set, primary)

	report := &PairReport{
		Symbol:      symbol,
		Verdict:     verdict,
		Readings:    readings,
		Confluence:  conf,
		Divergences: divs,
		UpdatedAt:   time.Now().UTC(),
	}
	if funding, err := s.source.FundingRate(ctx, symbol); err == nil {
		report.Funding = &funding
	} else {
		logger.Debugf("获取 %s 资金费率失败: %v", symbol, err)
	}

	s.emit(ctx, verdict)
	return report, nil
}

// detectDivergence 对齐价格与 RSI 序列后执行背离检测。
// RSI 序列丢弃了前 period 根暖机数据，价格序列按相同偏移截断。
func (s *Scanner) detectDivergence(closes []float64) indicator.Divergence {
	none := indicator.Divergence{Type: indicator.DivergenceNone}
	period := s.confPeriod
	rsi := indicator.RSISeries(closes, period)
	if rsi == nil || len(closes) <= period {
		return none
	}
	prices := closes[period:]
	if len(prices) > len(rsi) {
		prices = prices[len(prices)-len(rsi):]
	}
	return indicator.DetectDivergence(prices, rsi, s.divLookback)
}

// emit 经去重状态机后持久化新触发的活跃信号。
func (s *Scanner) emit(ctx context.Context, v decision.Verdict) {
	transition := s.dedup.observe(v.Symbol, v)
	switch transition {
	case transitionTriggered:
		logger.Infof("信号触发 %s %s 置信度=%d", v.Symbol, v.Signal, v.Confidence)
		if s.sink != nil {
			if err := s.sink.InsertSignal(ctx, v); err != nil {
				logger.Errorf("信号落库失败 %s: %v", v.Symbol, err)
			}
		}
	case transitionRearmed:
		logger.Debugf("信号解除 %s，重新武装", v.Symbol)
	}
}

func (s *Scanner) publish(report *PairReport) {
	s.mu.Lock()
	s.reports[report.Symbol] = report
	s.mu.Unlock()
}

// Latest 返回按 symbol 排序的最近一轮报告副本。
func (s *Scanner) Latest() []PairReport {
	s.mu.RLock()
	out := make([]PairReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, *r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Report 返回单个交易对的最新报告。
func (s *Scanner) Report(symbol string) (PairReport, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	s.mu.RLock()
	r, ok := s.reports[symbol]
	s.mu.RUnlock()
	if !ok {
		return PairReport{}, false
	}
	return *r, true
}

func labelsOf(tfs []config.TimeframeConfig) []string {
	out := make([]string, 0, len(tfs))
	for _, tf := range tfs {
		out = append(out, tf.Label)
	}
	return out
}
