package scanner

import (
	"sync"

	"riptide/internal/decision"
)

type transition int

const (
	transitionNone transition = iota
	transitionTriggered
	transitionRearmed
)

type dedupState int

const (
	stateArmed dedupState = iota
	stateTriggered
)

type dedupEntry struct {
	state  dedupState
	signal decision.SignalType
}

// dedupTracker 每个交易对的信号去重状态机。
// 新出现的活跃信号触发一次；持续活跃期间抑制重复；
// 信号消失或方向切换后回到武装态，可再次触发。
type dedupTracker struct {
	mu      sync.Mutex
	entries map[string]dedupEntry
}

func newDedupTracker() *dedupTracker {
	return &dedupTracker{entries: make(map[string]dedupEntry)}
}

func (d *dedupTracker) observe(symbol string, v decision.Verdict) transition {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry := d.entries[symbol]

	if !v.Active {
		if entry.state == stateTriggered {
			d.entries[symbol] = dedupEntry{state: stateArmed}
			return transitionRearmed
		}
		return transitionNone
	}

	if entry.state == stateTriggered && entry.signal == v.Signal {
		return transitionNone
	}
	d.entries[symbol] = dedupEntry{state: stateTriggered, signal: v.Signal}
	return transitionTriggered
}
