package main

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/peragwin/vuzicshader/render/scheduler"
)

// logStats logs system load next to the governor's view of the frame rate.
func logStats(ctx context.Context, sch *scheduler.Scheduler, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		load := 0.0
		if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
			load = pct[0]
		}
		used := 0.0
		if vm, err := mem.VirtualMemory(); err == nil {
			used = vm.UsedPercent
		}
		p := sch.Pipeline()
		fps := 0.0
		if ft := sch.AverageFrameTime(); ft > 0 {
			fps = 1 / ft
		}
		glog.Infof("stats: %s %s, %.1f fps, quality %.2f, frames %d skipped %d, cpu %.1f%%, mem %.1f%%",
			sch.State(), p.Effect.Name(), fps, sch.Quality(), p.Frames, p.Skipped, load, used)
	}
}
