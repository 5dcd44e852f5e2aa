// Package monitor periodically samples process load and logs it,
// adapted from framework/game/monitor.go's Monitor. The teacher's
// Monitor reports load to an etcd service registry for its
// multi-process matchmaking mesh; a single-process game core has no
// registry to report to, so this keeps the sampling and logging half
// and drops the discovery.Registry.UpdateLoad call (see DESIGN.md).
package monitor

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	mlog "mahjongcore/common/log"
)

// StatsSource reports the live game/player counts, implemented by
// session.Controller.
type StatsSource interface {
	Stats() (gameCount, playerCount int)
}

type LoadInfo struct {
	GameCount   int
	PlayerCount int
	CPUPercent  float64
	MemPercent  float64
}

type Monitor struct {
	stats    StatsSource
	interval time.Duration
	stopCh   chan struct{}
}

func New(stats StatsSource, interval time.Duration) *Monitor {
	return &Monitor{stats: stats, interval: interval, stopCh: make(chan struct{})}
}

// Run samples load on a ticker until ctx is cancelled or Stop is called.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.report()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.report()
		}
	}
}

func (m *Monitor) Stop() { close(m.stopCh) }

func (m *Monitor) report() {
	info := m.collect()
	mlog.Debug("load sample: games=%d players=%d cpu=%.2f%% mem=%.2f%%",
		info.GameCount, info.PlayerCount, info.CPUPercent, info.MemPercent)
}

func (m *Monitor) collect() LoadInfo {
	gameCount, playerCount := m.stats.Stats()

	var cpuPct float64
	if percentages, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(percentages) > 0 {
		cpuPct = clampPercent(percentages[0])
	} else if err != nil {
		mlog.Error("monitor: cpu sample failed: %v", err)
	}

	var memPct float64
	if vm, err := mem.VirtualMemory(); err == nil {
		memPct = clampPercent(vm.UsedPercent)
	} else {
		mlog.Error("monitor: memory sample failed: %v", err)
	}

	return LoadInfo{GameCount: gameCount, PlayerCount: playerCount, CPUPercent: cpuPct, MemPercent: memPct}
}

func clampPercent(v float64) float64 {
	if v > 100.0 {
		return 100.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}
