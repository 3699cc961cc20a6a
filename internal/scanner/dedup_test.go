package scanner

import (
	"testing"

	"riptide/internal/decision"
)

func verdictOf(sig decision.SignalType, active bool) decision.Verdict {
	return decision.Verdict{Symbol: "BTCUSDT", Signal: sig, Valid: active, Active: active}
}

func TestDedupTriggerOnce(t *testing.T) {
	d := newDedupTracker()
	if got := d.observe("BTCUSDT", verdictOf(decision.SignalSwingLong, true)); got != transitionTriggered {
		t.Fatalf("首个活跃信号应触发, 实际=%d", got)
	}
	if got := d.observe("BTCUSDT", verdictOf(decision.SignalSwingLong, true)); got != transitionNone {
		t.Fatalf("持续活跃应抑制重复触发, 实际=%d", got)
	}
}

func TestDedupRearmsAfterClear(t *testing.T) {
	d := newDedupTracker()
	d.observe("BTCUSDT", verdictOf(decision.SignalSwingLong, true))
	if got := d.observe("BTCUSDT", verdictOf(decision.SignalNone, false)); got != transitionRearmed {
		t.Fatalf("信号消失应重新武装, 实际=%d", got)
	}
	if got := d.observe("BTCUSDT", verdictOf(decision.SignalSwingLong, true)); got != transitionTriggered {
		t.Fatalf("武装后再次活跃应重新触发, 实际=%d", got)
	}
}

func TestDedupDirectionSwitchRetriggers(t *testing.T) {
	d := newDedupTracker()
	d.observe("BTCUSDT", verdictOf(decision.SignalScalpLong, true))
	if got := d.observe("BTCUSDT", verdictOf(decision.SignalScalpShort, true)); got != transitionTriggered {
		t.Fatalf("方向切换应视为新信号, 实际=%d", got)
	}
}

func TestDedupInactiveNoop(t *testing.T) {
	d := newDedupTracker()
	if got := d.observe("BTCUSDT", verdictOf(decision.SignalNone, false)); got != transitionNone {
		t.Fatalf("武装态下无信号应为 no-op, 实际=%d", got)
	}
}
