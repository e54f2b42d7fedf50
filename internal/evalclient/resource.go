package evalclient

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

const (
	cpuThresholdPercent = 75.0
	memThresholdPercent = 80.0
	resourceWait        = 2 * time.Second
)

// swappable for tests
var (
	cpuPercent    = cpu.PercentWithContext
	virtualMemory = mem.VirtualMemoryWithContext
)

// resourceGate delays outbound calls while the local host is under pressure
// instead of failing them. Probe errors are ignored: an unreadable gauge
// must never block an evaluation.
type resourceGate struct {
	logger *zap.Logger
}

func (g *resourceGate) wait(ctx context.Context) error {
	overloaded, cpuLoad, memLoad := g.pressure(ctx)
	if !overloaded {
		return nil
	}

	g.logger.Warn("local resource pressure, delaying backend call",
		zap.Float64("cpu_percent", cpuLoad),
		zap.Float64("mem_percent", memLoad),
		zap.Duration("wait", resourceWait),
	)

	return sleep(ctx, resourceWait)
}

func (g *resourceGate) pressure(ctx context.Context) (bool, float64, float64) {
	cpuLoad := 0.0
	if loads, err := cpuPercent(ctx, 0, false); err == nil && len(loads) > 0 {
		cpuLoad = loads[0]
	}

	memLoad := 0.0
	if vm, err := virtualMemory(ctx); err == nil && vm != nil {
		memLoad = vm.UsedPercent
	}

	return cpuLoad > cpuThresholdPercent || memLoad > memThresholdPercent, cpuLoad, memLoad
}
