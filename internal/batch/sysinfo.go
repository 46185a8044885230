package batch

import (
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// SystemInfo describes the machine a batch ran on.
type SystemInfo struct {
	Platform string `json:"platform"`
	CPU      string `json:"cpu"`
	Memory   string `json:"memory"`
}

// CollectSystemInfo queries the host. Fields that cannot be read are left
// empty.
func CollectSystemInfo() SystemInfo {
	var info SystemInfo

	if hostStat, err := host.Info(); err == nil {
		info.Platform = hostStat.Platform
	} else {
		slog.Debug("Failed to read host info", "error", err)
	}

	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	} else if err != nil {
		slog.Debug("Failed to read cpu info", "error", err)
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.Memory = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	} else {
		slog.Debug("Failed to read memory info", "error", err)
	}

	return info
}
