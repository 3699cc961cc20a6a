package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"riptide/internal/logger"
)

const (
	defaultEndpoint = "https://api.alternative.me/fng/"
	defaultTimeout  = 10 * time.Second
	defaultTTL      = 10 * time.Minute
)

// FearGreed 恐惧贪婪指数读数，Value ∈ [0,100]。
type FearGreed struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Provider 拉取并缓存市场情绪指数；上游失败时继续沿用最近一次读数。
type Provider struct {
	endpoint string
	client   *http.Client
	ttl      time.Duration

	mu   sync.Mutex
	last *FearGreed
}

func NewProvider() *Provider {
	return &Provider{
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		ttl:      defaultTTL,
	}
}

// Latest 返回缓存内的最新读数，过期则重新拉取。ok 为 false 表示从未成功。
func (p *Provider) Latest(ctx context.Context) (FearGreed, bool) {
	p.mu.Lock()
	cached := p.last
	p.mu.Unlock()
	if cached != nil && time.Since(cached.FetchedAt) < p.ttl {
		return *cached, true
	}

	fg, err := p.fetch(ctx)
	if err != nil {
		logger.Warnf("[sentiment] fear&greed fetch failed: %v", err)
		if cached != nil {
			return *cached, true
		}
		return FearGreed{}, false
	}
	p.mu.Lock()
	p.last = &fg
	p.mu.Unlock()
	return fg, true
}

func (p *Provider) fetch(ctx context.Context) (FearGreed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return FearGreed{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return FearGreed{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return FearGreed{}, fmt.Errorf("fear&greed endpoint: %s", resp.Status)
	}
	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return FearGreed{}, err
	}
	if len(payload.Data) == 0 {
		return FearGreed{}, fmt.Errorf("fear&greed endpoint: empty payload")
	}
	val, err := strconv.Atoi(payload.Data[0].Value)
	if err != nil {
		return FearGreed{}, fmt.Errorf("fear&greed value %q: %w", payload.Data[0].Value, err)
	}
	return FearGreed{
		Value:          val,
		Classification: payload.Data[0].Classification,
		FetchedAt:      time.Now(),
	}, nil
}
