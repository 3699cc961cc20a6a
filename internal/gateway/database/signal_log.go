package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"riptide/internal/backtest"
	"riptide/internal/decision"
)

// SignalLogStore 持久化扫描产出的信号与回测结果（sqlite）。
type SignalLogStore struct {
	mu sync.Mutex
	db *sql.DB
}

// Open 打开（必要时创建）数据库并初始化表结构。
func Open(path string) (*SignalLogStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path 不能为空")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SignalLogStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SignalLogStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS signals (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            symbol TEXT NOT NULL,
            signal TEXT NOT NULL,
            confidence INTEGER NOT NULL,
            swing_bias TEXT NOT NULL,
            scalp_bias TEXT NOT NULL,
            regime TEXT NOT NULL,
            reasons TEXT,
            created_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_time ON signals(symbol, created_at)`,
		`CREATE TABLE IF NOT EXISTS backtests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            symbol TEXT NOT NULL,
            timeframe TEXT NOT NULL,
            period INTEGER NOT NULL,
            oversold REAL NOT NULL,
            overbought REAL NOT NULL,
            candles INTEGER NOT NULL,
            oversold_signals INTEGER NOT NULL,
            overbought_signals INTEGER NOT NULL,
            stats TEXT,
            created_at INTEGER NOT NULL
        )`,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("migrate signal log: %w", err)
		}
	}
	return nil
}

// SignalRecord 读取用的信号行。
type SignalRecord struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Signal     string    `json:"signal"`
	Confidence int       `json:"confidence"`
	SwingBias  string    `json:"swing_bias"`
	ScalpBias  string    `json:"scalp_bias"`
	Regime     string    `json:"regime"`
	Reasons    []string  `json:"reasons,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// InsertSignal 记录一条生效信号。
func (s *SignalLogStore) InsertSignal(ctx context.Context, v decision.Verdict) error {
	reasons, err := json.Marshal(v.Reasons)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("signal log store 未初始化")
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO signals (symbol, signal, confidence, swing_bias, scalp_bias, regime, reasons, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(v.Symbol), string(v.Signal), v.Confidence,
		string(v.SwingBias), string(v.ScalpBias), string(v.Regime),
		string(reasons), time.Now().UnixMilli())
	return err
}

// RecentSignals 返回最近 limit 条信号，按时间倒序。symbol 为空则不过滤。
func (s *SignalLogStore) RecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, symbol, signal, confidence, swing_bias, scalp_bias, regime, reasons, created_at
        FROM signals`
	args := []any{}
	if sym := strings.ToUpper(strings.TrimSpace(symbol)); sym != "" {
		query += ` WHERE symbol = ?`
		args = append(args, sym)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("signal log store 未初始化")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		var reasons sql.NullString
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Symbol, &rec.Signal, &rec.Confidence,
			&rec.SwingBias, &rec.ScalpBias, &rec.Regime, &reasons, &createdAt); err != nil {
			return nil, err
		}
		if reasons.Valid && reasons.String != "" {
			_ = json.Unmarshal([]byte(reasons.String), &rec.Reasons)
		}
		rec.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveBacktest 落库一次回测的聚合结果，明细以 JSON 形式存放。
func (s *SignalLogStore) SaveBacktest(ctx context.Context, res backtest.Result) error {
	stats, err := json.Marshal(map[string]backtest.DirectionStats{
		backtest.SignalOversold:   res.Oversold,
		backtest.SignalOverbought: res.Overbought,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("signal log store 未初始化")
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO backtests (symbol, timeframe, period, oversold, overbought, candles,
            oversold_signals, overbought_signals, stats, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(res.Symbol), res.Timeframe, res.Params.Period,
		res.Params.Oversold, res.Params.Overbought, res.Candles,
		res.Oversold.Signals, res.Overbought.Signals, string(stats), time.Now().UnixMilli())
	return err
}

// Close 关闭底层连接。
func (s *SignalLogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
