package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config 启动时一次性加载并校验的全量配置。
type Config struct {
	Scan       ScanConfig        `toml:"scan"`
	Engine     EngineConfig      `toml:"engine"`
	Timeframes []TimeframeConfig `toml:"timeframes"`
	Server     ServerConfig      `toml:"server"`
	Database   DatabaseConfig    `toml:"database"`
	Binance    BinanceConfig     `toml:"binance"`
	Log        LogConfig         `toml:"log"`
}

type ScanConfig struct {
	Pairs           []string `toml:"pairs"`
	IntervalSeconds int      `toml:"interval_seconds"`
	Concurrency     int      `toml:"concurrency"`
}

type EngineConfig struct {
	Periods            []int   `toml:"periods"`
	ConfluencePeriod   int     `toml:"confluence_period"`
	DivergenceLookback int     `toml:"divergence_lookback"`
	Oversold           float64 `toml:"oversold"`
	Overbought         float64 `toml:"overbought"`
}

// TimeframeConfig 固定枚举的 timeframe 配置：展示标签、上游拉取间隔、K 线根数。
type TimeframeConfig struct {
	Label          string `toml:"label"`
	SourceInterval string `toml:"source_interval"`
	CandleLimit    int    `toml:"candle_limit"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	Path      string `toml:"path"`
	ReportDir string `toml:"report_dir"`
}

type BinanceConfig struct {
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load 读取 TOML 配置文件，填充默认值并校验。path 为空时返回纯默认配置。
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default 返回内置默认配置：标准周期与 1m→1w 的 timeframe 阶梯。
func Default() Config {
	return Config{
		Scan: ScanConfig{
			Pairs:           []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
			IntervalSeconds: 60,
			Concurrency:     4,
		},
		Engine: EngineConfig{
			Periods:            []int{5, 9, 14, 50, 75, 100, 200},
			ConfluencePeriod:   14,
			DivergenceLookback: 30,
			Oversold:           30,
			Overbought:         70,
		},
		Timeframes: []TimeframeConfig{
			{Label: "1m", SourceInterval: "1m", CandleLimit: 300},
			{Label: "5m", SourceInterval: "5m", CandleLimit: 300},
			{Label: "15m", SourceInterval: "15m", CandleLimit: 300},
			{Label: "1h", SourceInterval: "1h", CandleLimit: 300},
			{Label: "4h", SourceInterval: "4h", CandleLimit: 300},
			{Label: "1d", SourceInterval: "1d", CandleLimit: 300},
			{Label: "1w", SourceInterval: "1w", CandleLimit: 300},
		},
		Server:   ServerConfig{Addr: ":9991"},
		Database: DatabaseConfig{Path: "riptide.db", ReportDir: "reports"},
		Log:      LogConfig{Level: "info"},
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if len(c.Scan.Pairs) == 0 {
		c.Scan.Pairs = def.Scan.Pairs
	}
	if c.Scan.IntervalSeconds <= 0 {
		c.Scan.IntervalSeconds = def.Scan.IntervalSeconds
	}
	if c.Scan.Concurrency <= 0 {
		c.Scan.Concurrency = def.Scan.Concurrency
	}
	if len(c.Engine.Periods) == 0 {
		c.Engine.Periods = def.Engine.Periods
	}
	if c.Engine.ConfluencePeriod <= 0 {
		c.Engine.ConfluencePeriod = def.Engine.ConfluencePeriod
	}
	if c.Engine.DivergenceLookback <= 0 {
		c.Engine.DivergenceLookback = def.Engine.DivergenceLookback
	}
	if c.Engine.Oversold <= 0 {
		c.Engine.Oversold = def.Engine.Oversold
	}
	if c.Engine.Overbought <= 0 {
		c.Engine.Overbought = def.Engine.Overbought
	}
	if len(c.Timeframes) == 0 {
		c.Timeframes = def.Timeframes
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	for i := range c.Timeframes {
		if c.Timeframes[i].SourceInterval == "" {
			c.Timeframes[i].SourceInterval = c.Timeframes[i].Label
		}
		if c.Timeframes[i].CandleLimit <= 0 {
			c.Timeframes[i].CandleLimit = 300
		}
	}
	normalized := make([]string, 0, len(c.Scan.Pairs))
	for _, p := range c.Scan.Pairs {
		if sym := strings.ToUpper(strings.TrimSpace(p)); sym != "" {
			normalized = append(normalized, sym)
		}
	}
	c.Scan.Pairs = normalized
}

// Validate 拒绝明显非法的配置：非正周期、重复 timeframe 标签、空交易对列表。
func (c *Config) Validate() error {
	if len(c.Scan.Pairs) == 0 {
		return fmt.Errorf("config: scan.pairs is empty")
	}
	for _, p := range c.Engine.Periods {
		if p <= 0 {
			return fmt.Errorf("config: engine period %d must be positive", p)
		}
	}
	if c.Engine.Oversold >= c.Engine.Overbought {
		return fmt.Errorf("config: oversold %.1f must be below overbought %.1f",
			c.Engine.Oversold, c.Engine.Overbought)
	}
	seen := make(map[string]struct{}, len(c.Timeframes))
	for _, tf := range c.Timeframes {
		label := strings.TrimSpace(tf.Label)
		if label == "" {
			return fmt.Errorf("config: timeframe with empty label")
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("config: duplicate timeframe label %q", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}
