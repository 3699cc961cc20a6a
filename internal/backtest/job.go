package backtest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"riptide/internal/logger"
	"riptide/internal/market"
)

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"

	defaultFetchLimit = 1000
	jobTimeout        = 2 * time.Minute

	// 缓存窗口至少要有这么多根 K 线才值得跳过重新拉取。
	cacheMinCandles = 200
)

// Job 用于在内存中跟踪一次回测任务的进度与结果。
type Job struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Symbol      string    `json:"symbol"`
	Timeframe   string    `json:"timeframe"`
	Params      Params    `json:"params"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Message     string    `json:"message,omitempty"`
	ReportPath  string    `json:"report_path,omitempty"`
	Result      *Result   `json:"result,omitempty"`
}

// ResultStore 持久化回测结果的抽象，由 sqlite 信号库实现。
type ResultStore interface {
	SaveBacktest(ctx context.Context, res Result) error
}

// CandleCache 提供扫描器维护的 K 线窗口，命中时免去重新拉取。
type CandleCache interface {
	Window(ctx context.Context, symbol, label string, limit int) ([]market.Candle, error)
}

// Service 接收回测请求，异步准备历史数据并执行模拟。
type Service struct {
	source     market.Source
	cache      CandleCache
	store      ResultStore
	reportDir  string
	fetchLimit int
	defaults   Params

	mu   sync.Mutex
	jobs map[string]*Job
}

type ServiceConfig struct {
	Source     market.Source
	Cache      CandleCache
	Store      ResultStore
	ReportDir  string
	FetchLimit int
	// Defaults 填补请求未指定的回测参数（周期与阈值）。
	Defaults Params
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	return &Service{
		source:     cfg.Source,
		cache:      cfg.Cache,
		store:      cfg.Store,
		reportDir:  cfg.ReportDir,
		fetchLimit: cfg.FetchLimit,
		defaults:   cfg.Defaults,
		jobs:       make(map[string]*Job),
	}
}

// Submit 校验参数并登记任务，然后在后台执行。
func (s *Service) Submit(symbol, label string, params Params) (Job, error) {
	if s.source == nil {
		return Job{}, errors.New("backtest service has no market source")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Job{}, errors.New("symbol is required")
	}
	if _, err := ParseTimeframe(label); err != nil {
		return Job{}, err
	}
	now := time.Now()
	job := &Job{
		ID:          uuid.NewString(),
		Status:      JobStatusPending,
		Symbol:      symbol,
		Timeframe:   label,
		Params:      params.merged(s.defaults).withDefaults(),
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runJob(job.ID)
	return job.snapshot(), nil
}

// Snapshot 返回任务当前状态的拷贝。
func (s *Service) Snapshot(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.snapshot(), true
}

// Jobs 返回全部任务的拷贝。
func (s *Service) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.snapshot())
	}
	return out
}

func (s *Service) runJob(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.update(id, func(j *Job) { j.Status = JobStatusRunning })
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return
	}

	candles, err := s.loadHistory(ctx, job.Symbol, job.Timeframe)
	if err != nil {
		logger.Errorf("[backtest] fetch %s %s failed: %v", job.Symbol, job.Timeframe, err)
		s.update(id, func(j *Job) { j.Status = JobStatusFailed; j.Message = err.Error() })
		return
	}
	if tf, terr := ParseTimeframe(job.Timeframe); terr == nil {
		if gap := tf.MissingCandles(candles); gap > 0 {
			logger.Warnf("[backtest] %s %s history has gaps: %d candles missing", job.Symbol, job.Timeframe, gap)
		}
	}
	res, err := Run(job.Symbol, job.Timeframe, market.Closes(candles), job.Params)
	if err != nil {
		s.update(id, func(j *Job) { j.Status = JobStatusFailed; j.Message = err.Error() })
		return
	}

	var reportPath string
	if s.reportDir != "" {
		if path, rerr := WriteReport(s.reportDir, res); rerr != nil {
			logger.Warnf("[backtest] report for %s failed: %v", job.Symbol, rerr)
		} else {
			reportPath = path
		}
	}
	if s.store != nil {
		if serr := s.store.SaveBacktest(ctx, res); serr != nil {
			logger.Warnf("[backtest] persist result for %s failed: %v", job.Symbol, serr)
		}
	}

	s.update(id, func(j *Job) {
		j.Status = JobStatusDone
		j.Result = &res
		j.ReportPath = reportPath
	})
	logger.Infof("[backtest] %s %s done: %d signals over %d candles",
		job.Symbol, job.Timeframe, len(res.Signals), res.Candles)
}

// loadHistory 优先消费扫描器缓存的窗口，不足时回源拉取。
func (s *Service) loadHistory(ctx context.Context, symbol, label string) ([]market.Candle, error) {
	if s.cache != nil {
		cached, err := s.cache.Window(ctx, symbol, label, s.fetchLimit)
		if err == nil && len(cached) >= cacheMinCandles {
			logger.Debugf("[backtest] %s %s served from cache: %d candles", symbol, label, len(cached))
			return cached, nil
		}
	}
	return s.source.FetchHistory(ctx, symbol, label, s.fetchLimit)
}

func (s *Service) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}

func (j *Job) snapshot() Job {
	out := *j
	if j.Result != nil {
		res := *j.Result
		out.Result = &res
	}
	return out
}
