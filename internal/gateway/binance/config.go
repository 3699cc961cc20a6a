package binance

import "time"

// Config 描述 Binance Source 运行所需的参数。
type Config struct {
	APIKey      string
	APISecret   string
	HTTPTimeout time.Duration
	MaxLimit    int
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	if out.MaxLimit <= 0 {
		out.MaxLimit = 1500
	}
	return out
}
