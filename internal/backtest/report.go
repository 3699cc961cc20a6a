package backtest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteReport 将回测聚合结果渲染为独立 HTML 图表，返回文件路径。
func WriteReport(dir string, res Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	names := make([]string, 0, len(res.Horizons))
	osData := make([]opts.BarData, 0, len(res.Horizons))
	obData := make([]opts.BarData, 0, len(res.Horizons))
	for _, h := range res.Horizons {
		names = append(names, h.Name)
		osData = append(osData, opts.BarData{Value: round2(res.Oversold.AvgReturns[h.Name])})
		obData = append(obData, opts.BarData{Value: round2(res.Overbought.AvgReturns[h.Name])})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s %s RSI%d backtest", res.Symbol, res.Timeframe, res.Params.Period),
			Subtitle: fmt.Sprintf("oversold: %d signals, win %s | overbought: %d signals, win %s",
				res.Oversold.Signals, winSummary(res.Oversold),
				res.Overbought.Signals, winSummary(res.Overbought)),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("oversold avg return %", osData).
		AddSeries("overbought avg return %", obData)

	name := fmt.Sprintf("backtest_%s_%s.html", strings.ToLower(res.Symbol), res.Timeframe)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := bar.Render(f); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, nil
}

func winSummary(stats DirectionStats) string {
	parts := make([]string, 0, len(stats.WinRates))
	for _, name := range []string{"1h", "4h", "24h"} {
		if rate, ok := stats.WinRates[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%.0f%%", name, rate))
		}
	}
	if len(parts) == 0 {
		return "n/a"
	}
	return strings.Join(parts, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
