package scanner

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"riptide/internal/decision"
)

// renderTable 把最近一轮扫描结果以表格形式输出到终端。
func (s *Scanner) renderTable() {
	reports := s.Latest()
	if len(reports) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"交易对", "信号", "状态", "置信度", "共振", "摆动偏向", "短线偏向", "大盘", "资金费率"})
	for _, r := range reports {
		t.AppendRow(table.Row{
			r.Symbol,
			signalCell(r.Verdict),
			statusCell(r.Verdict),
			r.Verdict.Confidence,
			fmt.Sprintf("%s (%+.0f)", r.Confluence.Signal, r.Confluence.Score),
			r.Verdict.SwingBias,
			r.Verdict.ScalpBias,
			r.Verdict.Regime,
			fundingCell(r),
		})
	}
	t.Render()
}

func signalCell(v decision.Verdict) string {
	if !v.Valid {
		return "-"
	}
	return string(v.Signal)
}

func statusCell(v decision.Verdict) string {
	switch {
	case v.Active:
		return "ACTIVE"
	case v.Watching:
		return "WATCH"
	default:
		return "idle"
	}
}

func fundingCell(r PairReport) string {
	if r.Funding == nil {
		return "-"
	}
	return strings.TrimSpace(fmt.Sprintf("%.4f%%", r.Funding.Rate*100))
}
