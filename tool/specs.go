package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// SpecsTool reports system specifications and resource usage. It accepts
// info_type=cpu|ram|disk|os|all and an optional detailed flag.
type SpecsTool struct {
	Base
}

// SpecsToolOptions configures a SpecsTool.
type SpecsToolOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewSpecsTool constructs a SpecsTool.
func NewSpecsTool(optFns ...func(o *SpecsToolOptions)) *SpecsTool {
	opts := SpecsToolOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	t := &SpecsTool{}
	t.Base = NewBase(core.Metadata{
		Name:        "specs",
		Description: "Provides system information and resource usage",
		Version:     "1.0.0",
		Parameters: map[string]core.Parameter{
			"info_type": {Type: "string", Required: true, Description: "Type of information to retrieve (cpu, ram, disk, os, all)"},
			"detailed":  {Type: "boolean", Required: false, Description: "Whether to include detailed information"},
		},
		Tags: []string{"system", "diagnostics", "monitoring"},
	}, t.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return t
}

func (t *SpecsTool) execute(ctx context.Context, args map[string]string) (any, error) {
	infoType := strings.ToLower(args["info_type"])
	detailed := args["detailed"] == "true"

	switch infoType {
	case "cpu":
		return cpuInfo(ctx, detailed)
	case "ram":
		return ramInfo(ctx, detailed)
	case "disk":
		return diskInfo(ctx, detailed)
	case "os":
		return osInfo(ctx, detailed)
	case "all":
		return allInfo(ctx, detailed)
	default:
		return "Invalid info_type. Try: cpu, ram, disk, os, all", nil
	}
}

func cpuInfo(ctx context.Context, detailed bool) (string, error) {
	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return "", NewToolError("specs", fmt.Sprintf("cpu info: %v", err), CodeExecutionError)
	}
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return "", NewToolError("specs", fmt.Sprintf("cpu usage: %v", err), CodeExecutionError)
	}
	usage := 0.0
	if len(percents) > 0 {
		usage = percents[0]
	}
	out := fmt.Sprintf("CPU: %d logical cores, %.1f%% used", counts, usage)
	if detailed {
		if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
			out += fmt.Sprintf("\nModel: %s @ %.0f MHz", infos[0].ModelName, infos[0].Mhz)
		}
	}
	return out, nil
}

func ramInfo(ctx context.Context, detailed bool) (string, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return "", NewToolError("specs", fmt.Sprintf("ram info: %v", err), CodeExecutionError)
	}
	out := fmt.Sprintf("RAM: %s total, %s available, %.1f%% used",
		formatBytes(vm.Total), formatBytes(vm.Available), vm.UsedPercent)
	if detailed {
		out += fmt.Sprintf("\nUsed: %s, Free: %s", formatBytes(vm.Used), formatBytes(vm.Free))
	}
	return out, nil
}

func diskInfo(ctx context.Context, detailed bool) (string, error) {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return "", NewToolError("specs", fmt.Sprintf("disk info: %v", err), CodeExecutionError)
	}
	out := fmt.Sprintf("Disk (/): %s total, %s free, %.1f%% used",
		formatBytes(usage.Total), formatBytes(usage.Free), usage.UsedPercent)
	if detailed {
		if parts, err := disk.PartitionsWithContext(ctx, false); err == nil {
			for _, p := range parts {
				out += fmt.Sprintf("\n%s on %s (%s)", p.Device, p.Mountpoint, p.Fstype)
			}
		}
	}
	return out, nil
}

func osInfo(ctx context.Context, detailed bool) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", NewToolError("specs", fmt.Sprintf("os info: %v", err), CodeExecutionError)
	}
	out := fmt.Sprintf("OS: %s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	if detailed {
		out += fmt.Sprintf("\nHostname: %s, Kernel: %s, Uptime: %ds",
			info.Hostname, info.KernelVersion, info.Uptime)
	}
	return out, nil
}

func allInfo(ctx context.Context, detailed bool) (string, error) {
	sections := make([]string, 0, 4)
	for _, fn := range []func(context.Context, bool) (string, error){cpuInfo, ramInfo, diskInfo, osInfo} {
		section, err := fn(ctx, detailed)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}
	return strings.Join(sections, "\n"), nil
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
